package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"voxtrack"
)

func newSniffCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sniff <file...>",
		Short: "Check whether files are logger track files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureLogger(); err != nil {
				return err
			}

			rejected := 0
			rows := make([][2]string, 0, len(args))
			for _, arg := range args {
				verdict := "yes"
				ok, err := voxtrack.DetectFile(arg)
				switch {
				case err != nil:
					verdict = fmt.Sprintf("error: %v", err)
					rejected++
				case !ok:
					verdict = "no"
					rejected++
				}
				rows = append(rows, [2]string{filepath.Base(arg), verdict})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderPairs("File", "Track log", rows, false))
			if rejected > 0 {
				return fmt.Errorf("%d of %d files were not recognized", rejected, len(args))
			}
			return nil
		},
	}
}
