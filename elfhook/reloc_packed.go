package elfhook

import "fmt"

// Android packed-relocation group flags (spec.md §4.5).
const (
	groupedByInfo         = 1
	groupedByOffsetDelta  = 2
	groupedByAddend       = 4
	groupHasAddend        = 8
)

// packedRelocIterator decodes the Android APS2 group-compressed SLEB128
// relocation stream. It behaves like a coroutine (spec.md §9): state lives
// entirely in the struct, and next() re-enters deterministically.
type packedRelocIterator struct {
	dec    sleb128Decoder
	isRela bool

	relocationCount int64
	relocationIndex int64

	groupSize         int64
	groupFlags        int64
	groupOffsetDelta  int64
	groupIndex        int64

	rOffset uint64
	rInfo   uint64
	rAddend int64
}

// newPackedRelocIterator reads the two-value header (relocation_count, then
// the initial r_offset) and returns an iterator ready for next().
func newPackedRelocIterator(addr uintptr, size uint64, isRela bool) (packedRelocIterator, error) {
	it := packedRelocIterator{
		dec:    newSLEB128Decoder(addr, size),
		isRela: isRela,
		// groupIndex == groupSize (both zero) forces a group-header read
		// on the very first next() call.
	}

	count, err := it.dec.next()
	if err != nil {
		return packedRelocIterator{}, err
	}
	it.relocationCount = count

	offset, err := it.dec.next()
	if err != nil {
		return packedRelocIterator{}, err
	}
	it.rOffset = uint64(offset)

	return it, nil
}

func (it *packedRelocIterator) readGroupFields() error {
	size, err := it.dec.next()
	if err != nil {
		return err
	}
	it.groupSize = size

	flags, err := it.dec.next()
	if err != nil {
		return err
	}
	it.groupFlags = flags

	if it.groupFlags&groupedByOffsetDelta != 0 {
		d, err := it.dec.next()
		if err != nil {
			return err
		}
		it.groupOffsetDelta = d
	}

	if it.groupFlags&groupedByInfo != 0 {
		info, err := it.dec.next()
		if err != nil {
			return err
		}
		it.rInfo = uint64(info)
	}

	switch {
	case it.groupFlags&groupHasAddend != 0 && it.groupFlags&groupedByAddend != 0:
		if !it.isRela {
			return fmt.Errorf("%w: unexpected r_addend in packed REL section", ErrFormat)
		}
		delta, err := it.dec.next()
		if err != nil {
			return err
		}
		it.rAddend += delta
	case it.groupFlags&groupHasAddend == 0:
		it.rAddend = 0
	}

	it.groupIndex = 0
	return nil
}

// next decodes the next logical relocation entry, or returns ok=false once
// relocation_count entries have been produced.
func (it *packedRelocIterator) next() (relocEntry, bool, error) {
	if it.relocationIndex >= it.relocationCount {
		return relocEntry{}, false, nil
	}

	if it.groupIndex == it.groupSize {
		if err := it.readGroupFields(); err != nil {
			return relocEntry{}, false, err
		}
	}

	if it.groupFlags&groupedByOffsetDelta != 0 {
		it.rOffset += uint64(it.groupOffsetDelta)
	} else {
		delta, err := it.dec.next()
		if err != nil {
			return relocEntry{}, false, err
		}
		it.rOffset += uint64(delta)
	}

	if it.groupFlags&groupedByInfo == 0 {
		info, err := it.dec.next()
		if err != nil {
			return relocEntry{}, false, err
		}
		it.rInfo = uint64(info)
	}

	if it.isRela && it.groupFlags&groupHasAddend != 0 && it.groupFlags&groupedByAddend == 0 {
		delta, err := it.dec.next()
		if err != nil {
			return relocEntry{}, false, err
		}
		it.rAddend += delta
	}

	it.relocationIndex++
	it.groupIndex++

	e := relocEntry{offset: it.rOffset, info: it.rInfo}
	if it.isRela {
		e.hasAddr = true
		e.addend = it.rAddend
	}
	return e, true, nil
}
