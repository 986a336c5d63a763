// Package hookdump renders an elfhook.Image's structure for hookctl's
// inspect subcommand: a syntax-highlighted, readelf-style listing of the
// dynamic section and every relocation table. The parsing and formatting
// logic itself lives on elfhook.Image.Dump (it needs the Image's
// unexported fields); this package only adds terminal color and a session
// banner.
package hookdump

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nyxar/pltgot/elfhook"
	"github.com/nyxar/pltgot/internal/ui/colorize"
)

// Write renders a colorized dump of img to w.
func Write(w io.Writer, img *elfhook.Image) error {
	fmt.Fprintln(w, colorize.Header(fmt.Sprintf("== %s (session %s) ==", img.Pathname, img.SessionID)))

	var plain strings.Builder
	if err := img.Dump(&plain); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for _, line := range strings.Split(plain.String(), "\n") {
		switch {
		case line == "":
			fmt.Fprintln(bw)
		case strings.HasPrefix(line, "Dynamic section") || strings.HasPrefix(line, "Relocation section"):
			fmt.Fprintln(bw, colorize.Header(line))
		case strings.HasPrefix(line, "  Tag") || strings.HasPrefix(line, "  Offset"):
			fmt.Fprintln(bw, colorize.Detail(line))
		default:
			fmt.Fprintln(bw, colorize.HexBytes(line))
		}
	}
	return nil
}
