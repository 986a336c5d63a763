package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyxar/pltgot/elfhook"
	"github.com/nyxar/pltgot/internal/ui/colorize"
)

func newHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook <image> <symbol> <new_func_addr>",
		Short: "Redirect every PLT/GOT reference to symbol in image to new_func_addr",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname, symbol, newFuncStr := args[0], args[1], args[2]

			newFunc, err := parseAddr(newFuncStr)
			if err != nil {
				return err
			}

			base, err := resolveBase(pathname)
			if err != nil {
				return err
			}

			var img elfhook.Image
			if err := img.Init(base, pathname); err != nil {
				return err
			}

			old, err := img.Hook(symbol, newFunc)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s %s -> %s\n",
				colorize.Header(pathname),
				colorize.FuncName(symbol),
				colorize.Address(uint64(old)),
				colorize.Address(uint64(newFunc)),
			)
			if old != 0 {
				fmt.Println(colorize.Detail("previously: " + previewInstruction(old)))
			}
			return nil
		},
	}
}
