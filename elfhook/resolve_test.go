package elfhook

import (
	"encoding/binary"
	"errors"
	"testing"
	"unsafe"
)

// buildElfHashSymbols lays out a minimal strtab + symtab + SysV .hash
// section by hand, with a single real symbol ("malloc") at index 1 (index
// 0 is always the reserved null symbol), and returns an Image whose hash
// fields point into it. No mmap is needed here: resolveSymbol only reads,
// it never calls mprotect.
func buildElfHashSymbols(t *testing.T) *Image {
	t.Helper()

	// strtab: "\0malloc\0"
	strtab := []byte("\x00malloc\x00")

	// symtab: 2 entries (null symbol, then "malloc").
	symtab := make([]byte, 2*symSize)
	binary.LittleEndian.PutUint32(symtab[symSize+offSymName:], 1) // "malloc" at strtab offset 1
	if wordSize == 8 {
		binary.LittleEndian.PutUint64(symtab[symSize+offSymValue:], 0x4000)
	} else {
		binary.LittleEndian.PutUint32(symtab[symSize+offSymValue:], 0x4000)
	}

	// .hash: nbucket=1, nchain=2, bucket=[1], chain=[0, 0]
	hash := make([]byte, 4+4+4+4*2)
	binary.LittleEndian.PutUint32(hash[0:], 1)  // nbucket
	binary.LittleEndian.PutUint32(hash[4:], 2)  // nchain
	binary.LittleEndian.PutUint32(hash[8:], 1)  // bucket[0] = symbol index 1
	binary.LittleEndian.PutUint32(hash[12:], 0) // chain[0] (null symbol, unused)
	binary.LittleEndian.PutUint32(hash[16:], 0) // chain[1] = end of chain

	img := &Image{
		strtab:    uintptr(unsafe.Pointer(&strtab[0])),
		symtab:    uintptr(unsafe.Pointer(&symtab[0])),
		bucketCnt: 1,
		chainCnt:  2,
		bucket:    u32Array{uintptr(unsafe.Pointer(&hash[8]))},
		chain:     u32Array{uintptr(unsafe.Pointer(&hash[12]))},
	}
	// Keep the backing arrays alive for the lifetime of the test by
	// stashing them somewhere the garbage collector can still see.
	t.Cleanup(func() {
		_ = strtab
		_ = symtab
		_ = hash
	})
	return img
}

func TestResolveSymbolElfHashFound(t *testing.T) {
	img := buildElfHashSymbols(t)
	idx, err := img.resolveSymbol("malloc")
	if err != nil {
		t.Fatalf("resolveSymbol(malloc): %v", err)
	}
	if idx != 1 {
		t.Fatalf("resolveSymbol(malloc) = %d, want 1", idx)
	}
	if v := img.symbolValue(idx); v != 0x4000 {
		t.Fatalf("symbolValue(1) = %#x, want 0x4000", v)
	}
}

func TestResolveSymbolElfHashNotFound(t *testing.T) {
	img := buildElfHashSymbols(t)
	if _, err := img.resolveSymbol("free"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("resolveSymbol(free) error = %v, want ErrNotFound", err)
	}
}
