// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

var (
	waveformMode    string
	waveformNoTitle bool
)

var waveformCmd = &cobra.Command{
	Use:   "waveform",
	Short: "Download waveforms and derived traces",
	Long: `Download one or both input waveforms and write them as text data files.

Acquisition modes:
  single-trace, single-psd, single-envelope, single-trend,
  dual-trace, dual-psd, dual-envelope, dual-trend, dual-power

Trace records are classified as average or glitch captures. The power modes
multiply input A (volts) by input B (amperes); the psd modes estimate the
power spectral density of input A, or of the power trace in dual mode.

Without --mode the acquisition is chosen from a menu. Each data file holds
one line per sample: the x value followed by every sample slot.`,
	Args: cobra.NoArgs,
	RunE: runWaveform,
}

func init() {
	rootCmd.AddCommand(waveformCmd)
	waveformCmd.Flags().StringVarP(&waveformMode, "mode", "m", "", "Acquisition mode (see above)")
	waveformCmd.Flags().BoolVar(&waveformNoTitle, "no-title", false, "Do not prompt for waveform titles")
	waveformCmd.Flags().Bool("archive", false, "Also write the captured waveforms as a CBOR archive")
	viper.BindPFlag("archive", waveformCmd.Flags().Lookup("archive"))
}

func acquisitionFlagName(a scopemeter.Acquisition) string {
	return strings.ReplaceAll(a.String(), " ", "-")
}

// parseAcquisition looks up a mode by its flag name
func parseAcquisition(name string) (scopemeter.Acquisition, error) {
	for _, a := range scopemeter.Acquisitions() {
		if acquisitionFlagName(a) == strings.ToLower(name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown acquisition mode %q", name)
}

func chooseAcquisition() (scopemeter.Acquisition, error) {
	modes := scopemeter.Acquisitions()
	items := make([]menuItem, len(modes))
	for i, a := range modes {
		items[i] = menuItem{title: a.String()}
	}
	index, err := chooseOne("What type of waveform will this be?", items)
	if err != nil {
		return 0, err
	}
	return modes[index], nil
}

func runWaveform(cmd *cobra.Command, args []string) error {
	var mode scopemeter.Acquisition
	var err error
	if waveformMode != "" {
		mode, err = parseAcquisition(waveformMode)
	} else {
		mode, err = chooseAcquisition()
	}
	if err == errCancelled {
		return nil
	}
	if err != nil {
		return err
	}

	inst, err := openInstrument(cmd.Context())
	if err != nil {
		return err
	}
	defer inst.Close()

	logger.WithField("mode", mode.String()).Info("Downloading waveform")
	waveforms, err := inst.session.Capture(cmd.Context(), mode)
	if err != nil {
		return fmt.Errorf("waveform capture failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, w := range waveforms {
		path := filepath.Join(inst.cfg.OutputDir, scopemeter.FileName(w))
		if err := writeDataFile(path, w); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"file":    path,
			"samples": w.Samples.Rows(),
		}).Debug("Data file written")

		details := append(scopemeter.FormatWaveformDetails(w), [2]string{"Filename", path})
		fmt.Fprintln(out, renderDetails("Waveform Details", details))

		if !waveformNoTitle {
			title, err := promptText("Enter desired title:", "")
			if err != nil && err != errCancelled {
				return err
			}
			w.Title = title
		}
	}

	if inst.cfg.Archive {
		name := fmt.Sprintf("%s_%s.cbor",
			waveforms[0].Timestamp.Format("2006-01-02-15-04-05"), acquisitionFlagName(mode))
		path := filepath.Join(inst.cfg.OutputDir, name)
		if err := writeArchive(path, waveforms); err != nil {
			return err
		}
		logger.WithField("file", path).Info("Archive written")
	}
	return nil
}

func writeDataFile(path string, w *scopemeter.Waveform) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	if err := scopemeter.WriteData(f, w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeArchive(path string, waveforms []*scopemeter.Waveform) error {
	data, err := scopemeter.EncodeArchive(waveforms)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
