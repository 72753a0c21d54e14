// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Thermoquad/scopereader/pkg/logbook"
	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Take measurements and combine them",
	Long: `Repeatedly read measurements from the instrument display.

Each measurement is either a single reading or two readings combined by
addition, subtraction, multiplication or division. Sums and differences
need matching units; a quotient of matching units is given in percent.
Precisions are propagated from the reading resolutions.

Give a measurement a title to keep it; an empty title discards it. The kept
measurements are printed as a table when you quit, and stored in the
logbook when --logbook names a database file.`,
	Args: cobra.NoArgs,
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)
	measureCmd.Flags().String("logbook", "", "SQLite database to store kept measurements in")
	viper.BindPFlag("logbook", measureCmd.Flags().Lookup("logbook"))
}

var operandNames = []string{"first", "second"}

func chooseOperator() (scopemeter.Operator, error) {
	ops := scopemeter.Operators()
	items := make([]menuItem, len(ops))
	for i, op := range ops {
		items[i] = menuItem{title: op.String()}
	}
	index, err := chooseOne("What type of measurement will this be?", items)
	if err != nil {
		return 0, err
	}
	return ops[index], nil
}

func chooseReading(readings []scopemeter.Reading) (scopemeter.Reading, error) {
	items := make([]menuItem, len(readings))
	for i, r := range readings {
		desc := ""
		for j, pair := range scopemeter.FormatReading(r) {
			if j > 0 {
				desc += ", "
			}
			desc += pair[0] + ": " + pair[1]
		}
		items[i] = menuItem{title: r.Name(), desc: desc}
	}
	index, err := chooseOne("Select the desired reading", items)
	if err != nil {
		return scopemeter.Reading{}, err
	}
	return scopemeter.SelectReading(readings, menuLetter(index))
}

// measureOperand reads one result the user selects from the display
func measureOperand(ctx context.Context, session *scopemeter.Session, out io.Writer, name string) (scopemeter.Result, error) {
	prompt := "Setup your measurement and press enter when ready"
	if name != "" {
		prompt = "Setup your " + name + " measurement and press enter when ready"
	}
	if err := waitForEnter(prompt); err != nil {
		return scopemeter.Result{}, err
	}

	logger.Info("Downloading measurement metadata")
	readings, err := session.Readings(ctx)
	if err != nil {
		return scopemeter.Result{}, fmt.Errorf("reading metadata failed: %w", err)
	}
	if len(readings) == 0 {
		return scopemeter.Result{}, fmt.Errorf("the instrument shows no valid readings")
	}

	reading, err := chooseReading(readings)
	if err != nil {
		return scopemeter.Result{}, err
	}

	logger.WithField("reading", reading.Name()).Info("Fetching reading")
	value, err := session.ReadValue(ctx, reading.ID)
	if err != nil {
		return scopemeter.Result{}, fmt.Errorf("reading value failed: %w", err)
	}

	result := scopemeter.ResultFromReading(reading, value)
	fmt.Fprintf(out, "Result: %s\n", result)
	return result, nil
}

// measureOnce runs one measurement. It returns false when the user quits.
func measureOnce(ctx context.Context, session *scopemeter.Session, out io.Writer) (scopemeter.Operator, scopemeter.Result, bool, error) {
	op, err := chooseOperator()
	if errors.Is(err, errCancelled) {
		return op, scopemeter.Result{}, false, nil
	}
	if err != nil {
		return op, scopemeter.Result{}, false, err
	}

	acc := scopemeter.NewAccumulator(op)
	for acc.Need() > 0 {
		name := ""
		if op.Operands() > 1 {
			name = operandNames[op.Operands()-acc.Need()]
		}
		r, err := measureOperand(ctx, session, out, name)
		if err != nil {
			return op, scopemeter.Result{}, false, err
		}
		if err := acc.Push(r); err != nil {
			return op, scopemeter.Result{}, false, err
		}
	}

	result, err := acc.Result()
	if err != nil {
		return op, scopemeter.Result{}, false, err
	}
	if op != scopemeter.OpSingle {
		fmt.Fprintf(out, "Final Result: %s\n", result)
	}

	title, err := promptText("Enter title (empty to discard):", "")
	if err != nil && !errors.Is(err, errCancelled) {
		return op, scopemeter.Result{}, false, err
	}
	result.Title = title
	return op, result, true, nil
}

func runMeasure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	inst, err := openInstrument(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	var book *logbook.Store
	if inst.cfg.Logbook != "" {
		book = logbook.New(inst.cfg.Logbook)
		defer book.Close()
	}

	var kept []scopemeter.Result
	for n := 1; ; n++ {
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Measurement #%d", n)))

		op, result, more, err := measureOnce(ctx, inst.session, out)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if result.Title == "" {
			continue
		}

		kept = append(kept, result)
		if book != nil {
			id, err := book.Record(ctx, op, result)
			if err != nil {
				return fmt.Errorf("logbook: %w", err)
			}
			logger.WithFields(logrus.Fields{"id": id, "title": result.Title}).Debug("Measurement recorded")
		}
	}

	if len(kept) > 0 {
		fmt.Fprintln(out, "Done measurements. Here they are:")
		fmt.Fprintln(out, renderResults(kept))
	}
	return nil
}
