package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/confstatus/configrender"
	"github.com/hazyhaar/confstatus/printer"
)

func newDumpCmd(f *rootFlags) *cobra.Command {
	var (
		modeName string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the txt or zip configuration document",
		Long: `Write the txt or zip configuration document.

The text document goes to stdout unless --out is given. The archive is
written to --out, or to configuration-status-<timestamp>.zip.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, ok := printer.ParseMode(modeName)
			if !ok || mode == printer.ModeWeb {
				return fmt.Errorf("dump: mode must be txt or zip, got %q", modeName)
			}
			cfg, logger, err := f.load(os.Stderr)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if out == "" && mode == printer.ModeZip {
				out = configrender.FileBaseName(time.Now()) + ".zip"
			}
			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := a.plugin.Render(cmd.Context(), w, mode); err != nil {
				return err
			}
			if file, ok := w.(*os.File); ok && out != "" && out != "-" {
				if err := file.Close(); err != nil {
					return err
				}
				logger.Info("dump written", "path", out, "mode", mode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "txt", "txt or zip")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}
