package elfhook

// resolveSymbol maps a symbol name to its index in the dynamic symbol
// table, dispatching to the GNU-hash or ELF-hash backend the image was
// initialized with (spec.md §4.6).
func (img *Image) resolveSymbol(name string) (uint32, error) {
	if img.isUseGNUHash {
		return img.gnuHashLookup(name)
	}
	return img.elfHashLookup(name)
}

// elfHashLookup walks the classic SysV hash chain.
func (img *Image) elfHashLookup(name string) (uint32, error) {
	h := elfHash(name)
	for i := img.bucket.at(h % img.bucketCnt); i != 0; i = img.chain.at(i) {
		if img.symbolName(i) == name {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// gnuHashLookup tries the defined-symbol hash chain first, then falls back
// to a linear scan of the undefined symbols GNU hash tables omit from the
// chain but which PLT relocations still reference.
func (img *Image) gnuHashLookup(name string) (uint32, error) {
	if idx, err := img.gnuHashLookupDef(name); err == nil {
		return idx, nil
	}
	return img.gnuHashLookupUndef(name)
}

func (img *Image) gnuHashLookupDef(name string) (uint32, error) {
	h := gnuHash(name)

	bits := uint32(wordSize * 8)
	word := img.bloom.at(uint32((uint64(h) / uint64(bits)) % uint64(img.bloomSz)))
	mask := (uint64(1) << (h % bits)) | (uint64(1) << ((h >> img.bloomShift) % bits))
	if word&mask != mask {
		return 0, ErrNotFound
	}

	i := img.bucket.at(h % img.bucketCnt)
	if i < img.symoffset {
		return 0, ErrNotFound
	}

	for {
		symHash := img.chain.at(i - img.symoffset)
		if (h|1) == (symHash|1) && img.symbolName(i) == name {
			return i, nil
		}
		if symHash&1 != 0 {
			break
		}
		i++
	}
	return 0, ErrNotFound
}

func (img *Image) gnuHashLookupUndef(name string) (uint32, error) {
	for i := uint32(0); i < img.symoffset; i++ {
		if img.symbolName(i) == name {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// symbolName reads the name of dynamic symbol index i through strtab.
func (img *Image) symbolName(i uint32) string {
	nameOff := readU32(img.symtab + uintptr(i)*uintptr(symSize) + offSymName)
	return readCString(img.strtab + uintptr(nameOff))
}

// symbolValue reads st_value for dynamic symbol index i.
func (img *Image) symbolValue(i uint32) uint64 {
	return readWord(img.symtab + uintptr(i)*uintptr(symSize) + offSymValue)
}
