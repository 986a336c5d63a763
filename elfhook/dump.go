package elfhook

import (
	"debug/elf"
	"fmt"
	"io"
)

// Dump writes a readelf-style summary of img to w: the parsed dynamic
// section, then every entry of the PLT and dynamic relocation tables,
// resolved against the symbol table. It is a diagnostic aid, grounded on
// xh_elf_dump_dynamic/xh_elf_dump_rel in xh_elf.c, and has no bearing on
// hooking itself — it never mutates img.
func (img *Image) Dump(w io.Writer) error {
	if img.Pathname == "" {
		return ErrElfInit
	}

	if err := img.dumpDynamic(w); err != nil {
		return err
	}
	if img.relplt != 0 {
		if err := img.dumpRelocTable(w, ".plt", img.relplt, uint64(img.relpltSz)); err != nil {
			return err
		}
	}
	if img.reldyn != 0 {
		if err := img.dumpRelocTable(w, ".dyn", img.reldyn, uint64(img.reldynSz)); err != nil {
			return err
		}
	}
	if img.relandroid != 0 {
		if err := img.dumpPackedRelocTable(w, img.relandroid, uint64(img.relandroidSz)); err != nil {
			return err
		}
	}
	return nil
}

func (img *Image) dumpDynamic(w io.Writer) error {
	count := int(img.dynSz / uint64(dynSize))
	if _, err := fmt.Fprintf(w, "Dynamic section contains %d entries:\n", count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %-20s %s\n", "Tag", "Val"); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		d := img.dyn + uintptr(i)*uintptr(dynSize)
		tag := elf.DynTag(readWord(d + offDynTag))
		val := readWord(d + offDynVal)
		if _, err := fmt.Fprintf(w, "  %-20s 0x%x\n", dynTagString(tag), val); err != nil {
			return err
		}
	}
	return nil
}

func dynTagString(tag elf.DynTag) string {
	switch tag {
	case dtGNUHash:
		return "GNU_HASH"
	case dtAndroidRel:
		return "ANDROID_REL"
	case dtAndroidRelSz:
		return "ANDROID_RELSZ"
	case dtAndroidRela:
		return "ANDROID_RELA"
	case dtAndroidRelaSz:
		return "ANDROID_RELASZ"
	default:
		return tag.String()
	}
}

func (img *Image) dumpRelocTable(w io.Writer, section string, addr uintptr, size uint64) error {
	kind := "rel"
	if img.isUseRela {
		kind = "rela"
	}
	it := newPlainRelocIterator(addr, size, img.isUseRela)

	var rows []string
	for {
		e, ok := it.next()
		if !ok {
			break
		}
		sym, relType := e.symAndType()
		rows = append(rows, img.formatRelocRow(e.offset, e.info, relType, sym))
	}

	if _, err := fmt.Fprintf(w, "\nRelocation section '.%s%s' contains %d entries:\n", kind, section, len(rows)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %-16s %-16s %-8s %-8s %-8s %s\n", "Offset", "Info", "Type", "Sym.Idx", "Sym.Val", "Sym.Name"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

func (img *Image) dumpPackedRelocTable(w io.Writer, addr uintptr, size uint64) error {
	it, err := newPackedRelocIterator(addr, size, img.isUseRela)
	if err != nil {
		return err
	}

	var rows []string
	for {
		e, ok, err := it.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		sym, relType := e.symAndType()
		rows = append(rows, img.formatRelocRow(e.offset, e.info, relType, sym))
	}

	if _, err := fmt.Fprintf(w, "\nRelocation section '.android.rel' contains %d entries:\n", len(rows)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %-16s %-16s %-8s %-8s %-8s %s\n", "Offset", "Info", "Type", "Sym.Idx", "Sym.Val", "Sym.Name"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

func (img *Image) formatRelocRow(offset, info uint64, relType, sym uint32) string {
	return fmt.Sprintf("  %016x %016x %08x %8d %08x %s",
		offset, info, relType, sym, img.symbolValue(sym), img.symbolName(sym))
}
