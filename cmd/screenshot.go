// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Download the screen as a PNG image",
	Long: `Download the instrument screen as a PNG image.

The image is transferred in checksummed segments; a segment that fails its
checksum is requested again up to three times before the download is
abandoned. The file is named after the local time of the download.`,
	Args: cobra.NoArgs,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	inst, err := openInstrument(cmd.Context())
	if err != nil {
		return err
	}
	defer inst.Close()

	logger.Info("Downloading screenshot")
	start := time.Now()
	image, err := inst.session.Screenshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	path := filepath.Join(inst.cfg.OutputDir, start.Format("2006-01-02-15-04-05")+".png")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"file": path,
		"size": humanize.Bytes(uint64(len(image))),
		"took": time.Since(start).Round(time.Millisecond),
	}).Info("Screenshot saved")
	return nil
}
