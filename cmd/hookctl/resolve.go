package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nyxar/pltgot/internal/memmap"
)

// resolveBase determines the image's load base address, either from the
// explicit --base flag or by scanning /proc/<pid>/maps for a mapping of
// pathname at file offset 0.
func resolveBase(pathname string) (uintptr, error) {
	if baseHex != "" {
		v, err := strconv.ParseUint(baseHex, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("--base %q: %w", baseHex, err)
		}
		return uintptr(v), nil
	}

	pid := pidFlag
	if pid == 0 {
		pid = os.Getpid()
	}
	base, _, err := memmap.FindLoadBase(pid, pathname)
	if err != nil {
		return 0, err
	}
	return base, nil
}

// parseAddr parses a replacement-function address given as a hex (or
// decimal) string, the same format hookconfig.HookSpec.NewFunc uses.
func parseAddr(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uintptr(v), nil
}
