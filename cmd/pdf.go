package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <submission-id>",
	Short: "Render the blueprint PDF for a stored submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, st, err := openService(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		data, filename, err := svc.RenderPDF(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "render pdf")
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filename
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

func init() {
	pdfCmd.Flags().String("out", "", "output path (default: generated blueprint filename)")
	rootCmd.AddCommand(pdfCmd)
}
