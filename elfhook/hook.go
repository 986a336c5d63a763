package elfhook

import (
	"fmt"

	"github.com/nyxar/pltgot/internal/hooklog"
)

// Hook redirects every PLT/GOT reference to symbol inside img to point at
// newFunc, returning the address that was previously installed there
// (spec.md §4.10, §6 op 3).
//
// The walk order is strict: resolve, then plain .rel(a).plt (stopping at
// the first match — PLT slots are unique per symbol), then plain
// .rel(a).dyn (to completion — several data/GOT slots may reference the
// same symbol), then the packed Android .rel(a).android table (also to
// completion). A failure may leave zero, some, or all matching slots
// patched; callers must treat a failed Hook as best-effort, not
// transactional.
func (img *Image) Hook(symbol string, newFunc uintptr) (oldFunc uintptr, err error) {
	if img.Pathname == "" {
		return 0, ErrElfInit
	}
	if symbol == "" || newFunc == 0 {
		return 0, fmt.Errorf("%w: empty symbol or nil replacement", ErrInval)
	}

	img.logger().Info("hooking", hooklog.Fn(symbol), hooklog.String("image", img.Pathname))

	symidx, err := img.resolveSymbol(symbol)
	if err != nil {
		return 0, err
	}

	var gotOld bool

	apply := func(e relocEntry) (matched bool, err error) {
		sym, relType := e.symAndType()
		if sym != symidx {
			return false, nil
		}
		if relType != relJumpSlot && relType != relGlobDat && relType != relAbs {
			return false, nil
		}

		slot := img.biasAddr + uintptr(e.offset)
		old, perr := img.patchGOT(symbol, slot, newFunc)
		if perr != nil {
			return false, perr
		}
		if !gotOld {
			oldFunc, gotOld = old, true
		}
		return true, nil
	}

	if img.relplt != 0 {
		it := newPlainRelocIterator(img.relplt, uint64(img.relpltSz), img.isUseRela)
		for {
			e, ok := it.next()
			if !ok {
				break
			}
			matched, perr := apply(e)
			if perr != nil {
				return oldFunc, perr
			}
			// PLT slots are unique per symbol: stop as soon as this table
			// yields a match.
			if matched {
				break
			}
		}
	}

	if img.reldyn != 0 {
		it := newPlainRelocIterator(img.reldyn, uint64(img.reldynSz), img.isUseRela)
		for {
			e, ok := it.next()
			if !ok {
				break
			}
			if _, perr := apply(e); perr != nil {
				return oldFunc, perr
			}
		}
	}

	if img.relandroid != 0 {
		it, perr := newPackedRelocIterator(img.relandroid, uint64(img.relandroidSz), img.isUseRela)
		if perr != nil {
			return oldFunc, perr
		}
		for {
			e, ok, perr := it.next()
			if perr != nil {
				return oldFunc, perr
			}
			if !ok {
				break
			}
			if _, perr := apply(e); perr != nil {
				return oldFunc, perr
			}
		}
	}

	return oldFunc, nil
}
