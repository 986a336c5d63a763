package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyxar/pltgot/elfhook"
	"github.com/nyxar/pltgot/internal/hookconfig"
	"github.com/nyxar/pltgot/internal/ui/colorize"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <plan.yaml>",
		Short: "Apply every hook listed in a YAML batch plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := hookconfig.Load(args[0])
			if err != nil {
				return err
			}

			if plan.PID != 0 {
				pidFlag = plan.PID
			}

			base, err := resolveBase(plan.Image)
			if err != nil {
				return err
			}

			var img elfhook.Image
			if err := img.Init(base, plan.Image); err != nil {
				return err
			}

			for _, h := range plan.Hooks {
				newFunc, err := parseAddr(h.NewFunc)
				if err != nil {
					return fmt.Errorf("hook %s: %w", h.Symbol, err)
				}

				old, err := img.Hook(h.Symbol, newFunc)
				if err != nil {
					fmt.Println(colorize.Error(fmt.Sprintf("%s: %v", h.Symbol, err)))
					continue
				}
				fmt.Printf("%s: %s -> %s\n",
					colorize.FuncName(h.Symbol),
					colorize.Address(uint64(old)),
					colorize.Address(uint64(newFunc)),
				)
			}
			return nil
		},
	}
}
