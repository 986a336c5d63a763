package elfhook

import (
	"debug/elf"
	"fmt"

	"github.com/google/uuid"

	"github.com/nyxar/pltgot/internal/hooklog"
)

// u32Array is a borrowed, unowned view of a uint32 array inside a mapped
// image. A zero value (addr 0) is a valid "absent" array.
type u32Array struct{ addr uintptr }

func (a u32Array) at(i uint32) uint32 { return readU32(a.addr + uintptr(i)*4) }

// wordArray is a borrowed view of a pointer-sized array (GNU-hash bloom
// words, which are ElfW(Addr)-sized).
type wordArray struct{ addr uintptr }

func (a wordArray) at(i uint32) uint64 { return readWord(a.addr + uintptr(i)*uintptr(wordSize)) }

// Image is the descriptor spec.md §3 calls "created once per image via
// init, read-only thereafter; owned by the caller." It holds borrowed
// pointers into a mapping it does not own: the mapping must outlive the
// Image, and nothing here ever copies the image's bytes.
type Image struct {
	// SessionID is a random id assigned by Init; hookctl's inspect dump
	// prints it in its banner. Log lines do not include it, and it has no
	// bearing on the hooking algorithm itself.
	SessionID uuid.UUID

	Pathname string

	baseAddr uintptr
	biasAddr uintptr
	ehdr     uintptr
	phdr     uintptr
	phnum    int

	dyn   uintptr
	dynSz uint64

	strtab uintptr
	symtab uintptr

	relplt, relpltSz         uintptr
	reldyn, reldynSz         uintptr
	relandroid, relandroidSz uintptr

	isUseRela    bool
	isUseGNUHash bool

	// ELF-hash fields
	bucketCnt uint32
	chainCnt  uint32
	bucket    u32Array
	chain     u32Array

	// GNU-hash fields
	symoffset  uint32
	bloomSz    uint32
	bloomShift uint32
	bloom      wordArray

	log *hooklog.Logger
}

// SetLogger attaches a diagnostics sink; a nil logger is treated as a no-op
// sink. Logging is a collaborator interface, not part of the contract
// (spec.md §7).
func (img *Image) SetLogger(l *hooklog.Logger) { img.log = l }

func (img *Image) logger() *hooklog.Logger {
	if img.log == nil {
		return hooklog.NewNop()
	}
	return img.log
}

// Init populates img from the already-mapped image at baseAddr. It is
// idempotent: calling Init again on an already-initialized descriptor
// returns success without doing any work (spec.md §4.7).
func (img *Image) Init(baseAddr uintptr, pathname string) error {
	if img.Pathname != "" {
		return nil
	}
	if pathname == "" {
		return fmt.Errorf("%w: empty pathname", ErrInval)
	}
	if baseAddr == 0 {
		return fmt.Errorf("%w: nil base address", ErrInval)
	}

	if err := CheckELFHeader(baseAddr); err != nil {
		return err
	}

	img.baseAddr = baseAddr
	img.ehdr = baseAddr
	img.phdr = baseAddr + uintptr(readU32OrU64Offset(baseAddr))
	img.phnum = int(readU16(baseAddr + offEhdrPhnum))

	loadPhdr, ok := img.firstSegment(elf.PT_LOAD)
	if !ok {
		return fmt.Errorf("%w: no PT_LOAD segment", ErrFormat)
	}
	loadOffset := readWord(loadPhdr + offPhdrOffset)
	if loadOffset != 0 {
		return fmt.Errorf("%w: first PT_LOAD offset not 0 (image not mapped from file offset 0)", ErrFormat)
	}
	loadVaddr := readWord(loadPhdr + offPhdrVaddr)
	img.biasAddr = baseAddr - uintptr(loadVaddr)

	dynPhdr, ok := img.firstSegment(elf.PT_DYNAMIC)
	if !ok {
		return fmt.Errorf("%w: no PT_DYNAMIC segment", ErrFormat)
	}
	dynVaddr := readWord(dynPhdr + offPhdrVaddr)
	img.dyn = img.biasAddr + uintptr(dynVaddr)
	img.dynSz = readWord(dynPhdr + offPhdrMemsz)

	img.parseDynamic()

	img.Pathname = pathname

	if img.relandroid != 0 {
		magic := bytesAt(img.relandroid, 4)
		if img.relandroidSz < 4 || string(magic) != "APS2" {
			return fmt.Errorf("%w: android packed relocation magic mismatch", ErrFormat)
		}
		img.relandroid += 4
		img.relandroidSz -= 4
	}

	if err := img.check(); err != nil {
		*img = Image{}
		return err
	}

	img.SessionID = uuid.New()

	img.logger().Info("image initialized",
		hooklog.Fn(img.Pathname),
		hooklog.String("reloc", relocKindString(img.isUseRela)),
		hooklog.String("hash", hashKindString(img.isUseGNUHash)),
		hooklog.NamedSize("relplt_sz", uint64(img.relpltSz)),
		hooklog.NamedSize("reldyn_sz", uint64(img.reldynSz)),
		hooklog.NamedSize("relandroid_sz", uint64(img.relandroidSz)),
	)

	return nil
}

// readU32OrU64Offset returns e_phoff, widened to uint64/uintptr regardless
// of host word size.
func readU32OrU64Offset(baseAddr uintptr) uint64 {
	return readWord(baseAddr + offEhdrPhoff)
}

func (img *Image) firstSegment(t elf.ProgType) (uintptr, bool) {
	for i := 0; i < img.phnum; i++ {
		p := img.phdr + uintptr(i)*uintptr(phdrSize)
		if elf.ProgType(readU32(p+offPhdrType)) == t {
			return p, true
		}
	}
	return 0, false
}

func (img *Image) parseDynamic() {
	count := int(img.dynSz / uint64(dynSize))
	for i := 0; i < count; i++ {
		d := img.dyn + uintptr(i)*uintptr(dynSize)
		tag := elf.DynTag(readWord(d + offDynTag))
		val := readWord(d + offDynVal)

		switch tag {
		case elf.DT_STRTAB:
			img.strtab = img.biasAddr + uintptr(val)
		case elf.DT_SYMTAB:
			img.symtab = img.biasAddr + uintptr(val)
		case elf.DT_PLTREL:
			img.isUseRela = val == uint64(elf.DT_RELA)
		case elf.DT_JMPREL:
			img.relplt = img.biasAddr + uintptr(val)
		case elf.DT_PLTRELSZ:
			img.relpltSz = uintptr(val)
		case elf.DT_REL, elf.DT_RELA:
			img.reldyn = img.biasAddr + uintptr(val)
		case elf.DT_RELSZ, elf.DT_RELASZ:
			img.reldynSz = uintptr(val)
		case dtAndroidRel, dtAndroidRela:
			img.relandroid = img.biasAddr + uintptr(val)
		case dtAndroidRelSz, dtAndroidRelaSz:
			img.relandroidSz = uintptr(val)
		case elf.DT_HASH:
			raw := img.biasAddr + uintptr(val)
			img.bucketCnt = readU32(raw)
			img.chainCnt = readU32(raw + 4)
			img.bucket = u32Array{raw + 8}
			img.chain = u32Array{raw + 8 + uintptr(img.bucketCnt)*4}
		case dtGNUHash:
			raw := img.biasAddr + uintptr(val)
			img.bucketCnt = readU32(raw)
			img.symoffset = readU32(raw + 4)
			img.bloomSz = readU32(raw + 8)
			img.bloomShift = readU32(raw + 12)
			bloomAddr := raw + 16
			img.bloom = wordArray{bloomAddr}
			bucketAddr := bloomAddr + uintptr(img.bloomSz)*uintptr(wordSize)
			img.bucket = u32Array{bucketAddr}
			img.chain = u32Array{bucketAddr + uintptr(img.bucketCnt)*4}
			img.isUseGNUHash = true
		}
	}
}

// Android-specific and GNU-hash dynamic tags debug/elf does not name.
const (
	dtGNUHash       = elf.DynTag(0x6ffffef5)
	dtAndroidRel    = elf.DynTag(0x6000000f)
	dtAndroidRelSz  = elf.DynTag(0x60000010)
	dtAndroidRela   = elf.DynTag(0x60000011)
	dtAndroidRelaSz = elf.DynTag(0x60000012)
)

// check validates that every field the engine depends on for traversal was
// actually populated; any violation zeroes the descriptor (the caller sees
// a plain ErrFormat, and must call Init again after fixing the image).
func (img *Image) check() error {
	switch {
	case img.baseAddr == 0:
		return fmt.Errorf("%w: base_addr == 0", ErrFormat)
	case img.biasAddr == 0:
		return fmt.Errorf("%w: bias_addr == 0", ErrFormat)
	case img.ehdr == 0:
		return fmt.Errorf("%w: ehdr == nil", ErrFormat)
	case img.phdr == 0:
		return fmt.Errorf("%w: phdr == nil", ErrFormat)
	case img.strtab == 0:
		return fmt.Errorf("%w: strtab == nil", ErrFormat)
	case img.symtab == 0:
		return fmt.Errorf("%w: symtab == nil", ErrFormat)
	case img.bucket.addr == 0:
		return fmt.Errorf("%w: bucket == nil", ErrFormat)
	case img.chain.addr == 0:
		return fmt.Errorf("%w: chain == nil", ErrFormat)
	case img.isUseGNUHash && img.bloom.addr == 0:
		return fmt.Errorf("%w: bloom == nil", ErrFormat)
	}
	return nil
}

// Reset zeros the descriptor. No mutation occurs during hooking; Reset is
// the only way to clear an initialized Image (spec.md §3 Lifecycle).
func (img *Image) Reset() {
	*img = Image{}
}

func relocKindString(isRela bool) string {
	if isRela {
		return "RELA"
	}
	return "REL"
}

func hashKindString(isGNU bool) string {
	if isGNU {
		return "GNU_HASH"
	}
	return "ELF_HASH"
}
