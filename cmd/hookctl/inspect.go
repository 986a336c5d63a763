package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nyxar/pltgot/elfhook"
	"github.com/nyxar/pltgot/internal/hookdump"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Dump an image's dynamic section and relocation tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := args[0]

			base, err := resolveBase(pathname)
			if err != nil {
				return err
			}

			var img elfhook.Image
			if err := img.Init(base, pathname); err != nil {
				return err
			}

			return hookdump.Write(os.Stdout, &img)
		},
	}
}
