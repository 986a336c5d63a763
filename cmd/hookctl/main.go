// Command hookctl inspects and patches PLT/GOT relocations in a loaded
// ELF shared object or executable on 32-bit ARM or 64-bit AArch64 Linux.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyxar/pltgot/internal/hooklog"
)

var (
	debug   bool
	pidFlag int
	baseHex string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hookctl",
		Short: "Inspect and redirect PLT/GOT references in a loaded ELF image",
		Long: `hookctl resolves a symbol's PLT/GOT slots inside an already-mapped
32-bit ARM or 64-bit AArch64 shared object or executable and redirects them
to a replacement function address.

It locates the target image either by scanning a running process's
/proc/<pid>/maps (--pid) or by a caller-supplied base address (--base),
since hookctl itself never enumerates or loads images on its own — that is
the one piece of context the caller always has to supply.

Examples:
  hookctl inspect libtarget.so --pid 1234
  hookctl hook libtarget.so malloc 0x7f0012340000 --pid 1234
  hookctl batch plan.yaml --pid 1234`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			hooklog.Init(debug)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose structured logging")
	rootCmd.PersistentFlags().IntVar(&pidFlag, "pid", 0, "pid whose /proc/<pid>/maps locates the image (0 = this process)")
	rootCmd.PersistentFlags().StringVar(&baseHex, "base", "", "image base address in hex, overriding --pid lookup")

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newHookCmd())
	rootCmd.AddCommand(newBatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
