package elfhook

// relocEntry is a logical relocation record, decoded from either a plain
// REL/RELA array or the packed Android APS2 stream.
type relocEntry struct {
	offset  uint64
	info    uint64
	addend  int64
	hasAddr bool // true iff addend is meaningful (RELA)
}

func (e relocEntry) symAndType() (sym uint32, relType uint32) {
	return splitRInfo(e.info)
}

// plainRelocIterator walks a dense array of fixed-width REL or RELA records.
//
// The entry size depends on is_use_rela. cur is biased one entry behind addr
// at construction so that next()'s pre-increment-then-read convention (the
// same one the original C iterator uses) lands exactly on the first record,
// per spec.md §4.4's boundary note.
type plainRelocIterator struct {
	cur       uintptr
	end       uintptr
	entrySize uintptr
	isRela    bool
}

func newPlainRelocIterator(addr uintptr, size uint64, isRela bool) plainRelocIterator {
	entrySize := uintptr(relSize)
	if isRela {
		entrySize = uintptr(relaSize)
	}
	return plainRelocIterator{
		cur:       addr - entrySize,
		end:       addr + uintptr(size),
		entrySize: entrySize,
		isRela:    isRela,
	}
}

// next returns the next entry and true, or the zero value and false once
// the window is exhausted.
func (it *plainRelocIterator) next() (relocEntry, bool) {
	next := it.cur + it.entrySize
	if next >= it.end {
		return relocEntry{}, false
	}
	it.cur = next

	var e relocEntry
	e.offset = readWord(it.cur + offRelOffset)
	e.info = readWord(it.cur + offRelInfo)
	if it.isRela {
		e.hasAddr = true
		if wordSize == 8 {
			e.addend = int64(readU64(it.cur + offRelaAddend))
		} else {
			e.addend = int64(int32(readU32(it.cur + offRelaAddend)))
		}
	}
	return e, true
}
