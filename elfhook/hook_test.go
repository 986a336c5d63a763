package elfhook

import (
	"encoding/binary"
	"errors"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

// elfHookFixture lays out a complete, minimal, self-consistent ARM64/ARM
// shared-object image inside a real anonymous mmap mapping: an Ehdr, two
// Phdrs (one PT_LOAD spanning the whole mapping, one PT_DYNAMIC), a dynamic
// section using the classic SysV .hash, a one-entry dynamic symbol table
// ("malloc"), and a one-entry .rel(a).plt pointing a JUMP_SLOT relocation
// at a GOT word living on its own page. Building the fixture on a real
// mmap (rather than Go heap memory) lets the PLT-patch tests exercise the
// genuine mprotect/reprotect path instead of poking at memory the Go
// runtime's allocator also owns.
type elfHookFixture struct {
	mem        []byte
	base       uintptr
	gotPageOff int // offset of the GOT slot within mem
}

func newElfHookFixture(t *testing.T) *elfHookFixture {
	t.Helper()

	pageSize := unix.Getpagesize()
	size := pageSize * 2
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		t.Fatalf("mmap fixture: %v", err)
	}
	t.Cleanup(func() {
		if err := unix.Munmap(mem); err != nil {
			t.Errorf("munmap fixture: %v", err)
		}
	})

	const (
		phdrArrOff = 64
		dynOff     = 176
		strtabOff  = 288
		symtabOff  = 296
		hashOff    = 344
		relpltOff  = 368
	)
	gotOff := pageSize

	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(mem[off:], v) }
	put32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(mem[off:], v) }
	put64 := func(off int, v uint64) { binary.LittleEndian.PutUint64(mem[off:], v) }

	// Ehdr
	mem[0], mem[1], mem[2], mem[3] = 0x7f, 'E', 'L', 'F'
	mem[4] = byte(hostClass)
	mem[5] = 1 // ELFDATA2LSB
	mem[6] = 1 // EV_CURRENT
	put16(offEhdrType, 3) // ET_DYN
	put16(offEhdrMachine, uint16(hostMachine))
	put32(offEhdrVersion, 1)
	if wordSize == 8 {
		put64(offEhdrPhoff, phdrArrOff)
	} else {
		put32(offEhdrPhoff, phdrArrOff)
	}
	put16(offEhdrPhnum, 2)

	// Phdr[0] = PT_LOAD, covering the whole mapping, read-only (patchGOT
	// widens this to read+write when it hooks the GOT slot on page 2).
	writePhdr(mem, phdrArrOff, 1 /* PT_LOAD */, 4 /* PF_R */, 0, 0, size)
	// Phdr[1] = PT_DYNAMIC
	writePhdr(mem, phdrArrOff+phdrSize, 2 /* PT_DYNAMIC */, 6 /* PF_R|PF_W */, dynOff, dynOff, 7*dynSize)

	// Dynamic section: STRTAB, SYMTAB, HASH, PLTREL=RELA/REL, JMPREL,
	// PLTRELSZ, NULL.
	writeDyn(mem, dynOff+0*dynSize, 5 /* DT_STRTAB */, strtabOff)
	writeDyn(mem, dynOff+1*dynSize, 6 /* DT_SYMTAB */, symtabOff)
	writeDyn(mem, dynOff+2*dynSize, 4 /* DT_HASH */, hashOff)
	pltrelVal := uint64(17) // DT_REL
	if dynIsRela() {
		pltrelVal = 7 // DT_RELA
	}
	writeDyn(mem, dynOff+3*dynSize, 20 /* DT_PLTREL */, pltrelVal)
	writeDyn(mem, dynOff+4*dynSize, 23 /* DT_JMPREL */, uint64(relpltOff))
	entrySize := relSize
	if dynIsRela() {
		entrySize = relaSize
	}
	writeDyn(mem, dynOff+5*dynSize, 2 /* DT_PLTRELSZ */, uint64(entrySize))
	writeDyn(mem, dynOff+6*dynSize, 0 /* DT_NULL */, 0)

	// strtab: "\0malloc\0"
	copy(mem[strtabOff:], "\x00malloc\x00")

	// symtab: index 0 reserved null symbol (all zero), index 1 "malloc".
	put32(symtabOff+symSize+offSymName, 1)
	if wordSize == 8 {
		put64(symtabOff+symSize+offSymValue, 0x4000)
	} else {
		put32(symtabOff+symSize+offSymValue, 0x4000)
	}

	// .hash: nbucket=1, nchain=2, bucket=[1], chain=[0, 0].
	put32(hashOff+0, 1)
	put32(hashOff+4, 2)
	put32(hashOff+8, 1)
	put32(hashOff+12, 0)
	put32(hashOff+16, 0)

	// .rel(a).plt: one JUMP_SLOT entry targeting dynamic symbol 1, whose
	// r_offset is the (identity-mapped) vaddr of the GOT slot on page 2.
	put64OrWord := func(off int, v uint64) {
		if wordSize == 8 {
			put64(off, v)
		} else {
			put32(off, uint32(v))
		}
	}
	put64OrWord(relpltOff+offRelOffset, uint64(gotOff))
	info := makeRInfo(1, relJumpSlot)
	if wordSize == 8 {
		put64(relpltOff+offRelInfo, info)
	} else {
		put32(relpltOff+offRelInfo, uint32(info))
	}
	if dynIsRela() {
		put64OrWord(relpltOff+offRelaAddend, 0)
	}

	// GOT slot: placeholder "original" function pointer.
	storeWordAtomic(uintptr(unsafe.Pointer(&mem[gotOff])), 0x1111)

	return &elfHookFixture{
		mem:        mem,
		base:       uintptr(unsafe.Pointer(&mem[0])),
		gotPageOff: gotOff,
	}
}

// dynIsRela reports whether this architecture's plain relocations carry an
// explicit addend (RELA) or not (REL); AArch64 uses RELA, ARM uses REL.
func dynIsRela() bool { return wordSize == 8 }

func writePhdr(mem []byte, off int, typ, flags uint32, fileOff, vaddr uint64, memsz int) {
	binary.LittleEndian.PutUint32(mem[off+offPhdrType:], typ)
	binary.LittleEndian.PutUint32(mem[off+offPhdrFlags:], flags)
	if wordSize == 8 {
		binary.LittleEndian.PutUint64(mem[off+offPhdrOffset:], fileOff)
		binary.LittleEndian.PutUint64(mem[off+offPhdrVaddr:], vaddr)
		binary.LittleEndian.PutUint64(mem[off+offPhdrMemsz:], uint64(memsz))
	} else {
		binary.LittleEndian.PutUint32(mem[off+offPhdrOffset:], uint32(fileOff))
		binary.LittleEndian.PutUint32(mem[off+offPhdrVaddr:], uint32(vaddr))
		binary.LittleEndian.PutUint32(mem[off+offPhdrMemsz:], uint32(memsz))
	}
}

func writeDyn(mem []byte, off int, tag int64, val uint64) {
	if wordSize == 8 {
		binary.LittleEndian.PutUint64(mem[off+offDynTag:], uint64(tag))
		binary.LittleEndian.PutUint64(mem[off+offDynVal:], val)
	} else {
		binary.LittleEndian.PutUint32(mem[off+offDynTag:], uint32(tag))
		binary.LittleEndian.PutUint32(mem[off+offDynVal:], uint32(val))
	}
}

func TestImageInitThenHookPLT(t *testing.T) {
	fx := newElfHookFixture(t)

	var img Image
	if err := img.Init(fx.base, "libfixture.so"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if img.isUseGNUHash {
		t.Fatal("fixture uses SysV .hash, isUseGNUHash should be false")
	}

	old, err := img.Hook("malloc", 0x2222)
	if err != nil {
		t.Fatalf("Hook(malloc): %v", err)
	}
	if old != 0x1111 {
		t.Fatalf("Hook(malloc) old = %#x, want 0x1111", old)
	}

	got := binary.LittleEndian.Uint64(fx.mem[fx.gotPageOff:])
	if wordSize == 4 {
		got = uint64(binary.LittleEndian.Uint32(fx.mem[fx.gotPageOff:]))
	}
	if got != 0x2222 {
		t.Fatalf("GOT slot after Hook = %#x, want 0x2222", got)
	}
}

func TestImageHookIdempotent(t *testing.T) {
	fx := newElfHookFixture(t)

	var img Image
	if err := img.Init(fx.base, "libfixture.so"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := img.Hook("malloc", 0x2222); err != nil {
		t.Fatalf("first Hook: %v", err)
	}

	old, err := img.Hook("malloc", 0x2222)
	if err != nil {
		t.Fatalf("second Hook: %v", err)
	}
	if old != 0x2222 {
		t.Fatalf("idempotent Hook old = %#x, want 0x2222 (already-installed value)", old)
	}
}

func TestImageHookUnknownSymbol(t *testing.T) {
	fx := newElfHookFixture(t)

	var img Image
	if err := img.Init(fx.base, "libfixture.so"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := img.Hook("this_symbol_does_not_exist", 0x2222); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Hook(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestImageHookRejectsInvalidArgs(t *testing.T) {
	fx := newElfHookFixture(t)

	var uninit Image
	if _, err := uninit.Hook("malloc", 0x2222); !errors.Is(err, ErrElfInit) {
		t.Fatalf("Hook on uninitialized image error = %v, want ErrElfInit", err)
	}

	var img Image
	if err := img.Init(fx.base, "libfixture.so"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := img.Hook("", 0x2222); !errors.Is(err, ErrInval) {
		t.Fatalf("Hook(\"\") error = %v, want ErrInval", err)
	}
	if _, err := img.Hook("malloc", 0); !errors.Is(err, ErrInval) {
		t.Fatalf("Hook(malloc, 0) error = %v, want ErrInval", err)
	}
}

func TestImageInitIsIdempotent(t *testing.T) {
	fx := newElfHookFixture(t)

	var img Image
	if err := img.Init(fx.base, "libfixture.so"); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	sid := img.SessionID
	if err := img.Init(0xdead, "something-else.so"); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if img.SessionID != sid || img.Pathname != "libfixture.so" {
		t.Fatal("second Init should be a no-op on an already-initialized image")
	}
}

func TestImageReset(t *testing.T) {
	fx := newElfHookFixture(t)

	var img Image
	if err := img.Init(fx.base, "libfixture.so"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	img.Reset()
	if img.Pathname != "" {
		t.Fatal("Reset should clear Pathname")
	}
	if _, err := img.Hook("malloc", 0x2222); !errors.Is(err, ErrElfInit) {
		t.Fatalf("Hook after Reset error = %v, want ErrElfInit", err)
	}
}
