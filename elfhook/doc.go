// Package elfhook redirects PLT/GOT references to a symbol inside an
// already-mapped ELF image to a caller-supplied replacement function.
//
// It operates on 32-bit ARM and 64-bit AArch64 shared objects and
// executables, little-endian only. The caller is responsible for locating
// the image (base address and pathname) and for serializing concurrent
// calls against the same Image; elfhook does no internal locking and does
// not enumerate loaded images itself.
package elfhook
