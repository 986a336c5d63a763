package memmap

import (
	"debug/elf"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Region
	}{
		{
			name: "executable segment with pathname",
			line: "7f1234560000-7f1234580000 r-xp 00000000 08:01 1234 /data/app/lib/libtarget.so",
			want: Region{
				Start:    0x7f1234560000,
				End:      0x7f1234580000,
				Flags:    elf.PF_R | elf.PF_X,
				Offset:   0,
				Pathname: "/data/app/lib/libtarget.so",
			},
		},
		{
			name: "writable data segment, nonzero offset",
			line: "7f1234590000-7f12345a0000 rw-p 00010000 08:01 1234 /data/app/lib/libtarget.so",
			want: Region{
				Start:    0x7f1234590000,
				End:      0x7f12345a0000,
				Flags:    elf.PF_R | elf.PF_W,
				Offset:   0x10000,
				Pathname: "/data/app/lib/libtarget.so",
			},
		},
		{
			name: "anonymous mapping, no pathname",
			line: "7f12345b0000-7f12345c0000 rw-p 00000000 00:00 0",
			want: Region{
				Start: 0x7f12345b0000,
				End:   0x7f12345c0000,
				Flags: elf.PF_R | elf.PF_W,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok, err := parseLine(c.line)
			if err != nil {
				t.Fatalf("parseLine: %v", err)
			}
			if !ok {
				t.Fatal("parseLine returned ok=false for a well-formed line")
			}
			if got != c.want {
				t.Errorf("parseLine(%q) = %+v, want %+v", c.line, got, c.want)
			}
		})
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	if _, ok, _ := parseLine(""); ok {
		t.Fatal("expected ok=false for an empty line")
	}
	if _, _, err := parseLine("deadbeef rwxp 00000000 08:01 1234"); err == nil {
		t.Fatal("expected an error for a malformed address range")
	}
}

func TestRegionPermissionHelpers(t *testing.T) {
	r := Region{Flags: elf.PF_R | elf.PF_X}
	if !r.IsReadable() || !r.IsExecutable() || r.IsWritable() {
		t.Fatalf("permission helpers mismatch for flags %v", r.Flags)
	}
}
