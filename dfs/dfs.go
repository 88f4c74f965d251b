// Package dfs decodes and encodes Acorn DFS disc catalog images.
package dfs

import (
	"errors"
	"fmt"
	"strings"
)

// Sector size in all known DFS implementations.
const SECTOR_SIZE = 256

// The catalog occupies sectors 0 and 1; file data starts at sector 2.
const CATALOG_SECTORS = 2

// A DFS catalog holds at most 31 entries.
const MAX_FILES = 31

// 80 tracks of 10 sectors is the largest disc DFS can address.
const MAX_SECTORS = 800

// Upper bound on a plausible disc image file.
const MAX_DISC_SIZE = 0x80000

// File lengths are stored as 16 bits plus a 2-bit overflow.
const MAX_FILE_LEN = 0x3ffff

// InvalidValueError reports a field whose value has no valid mapping.
type InvalidValueError struct{}

func (e InvalidValueError) Error() string {
	return "value has no valid mapping"
}

// InputTooSmallError reports a source buffer below the minimum image size.
type InputTooSmallError struct {
	Min int
}

func (e InputTooSmallError) Error() string {
	return fmt.Sprintf("input too small, need at least %d bytes", e.Min)
}

// InputTooLargeError reports encode-time content or sector arithmetic
// exceeding the representable limits.
type InputTooLargeError struct {
	Size int
}

func (e InputTooLargeError) Error() string {
	return fmt.Sprintf("input too large at %d bytes", e.Size)
}

// InvalidDiscDataError reports a validation failure at a specific byte
// offset into the source image. Disc-name failures report the position
// within the logical 12-byte name buffer (0-11) rather than the raw
// image offset, as the name is split across both catalog sectors.
type InvalidDiscDataError struct {
	Offset int
}

func (e InvalidDiscDataError) Error() string {
	return fmt.Sprintf("invalid disc data at offset 0x%x", e.Offset)
}

// DuplicateFileNameError reports two catalog entries sharing the same
// directory and file name.
type DuplicateFileNameError struct {
	Name string
}

func (e DuplicateFileNameError) Error() string {
	return fmt.Sprintf("duplicate file name %s", e.Name)
}

// ErrCatalogFull is returned by AddFile when the catalog already holds
// MAX_FILES entries under distinct keys.
var ErrCatalogFull = errors.New("catalog is full")

// BootOption is what a DFS-supporting machine does with the disc on a
// Shift-BREAK; the *OPT 4 value.
type BootOption byte

const (
	BootNone BootOption = iota
	BootLoad
	BootRun
	BootExec
)

func (b BootOption) String() string {
	switch b {
	case BootNone:
		return "none"
	case BootLoad:
		return "load"
	case BootRun:
		return "run"
	case BootExec:
		return "exec"
	}
	return "none"
}

func bootOptionFromByte(v byte) (BootOption, error) {
	switch v {
	case 0:
		return BootNone, nil
	case 1:
		return BootLoad, nil
	case 2:
		return BootRun, nil
	case 3:
		return BootExec, nil
	}
	return BootNone, InvalidValueError{}
}

// ParseBootOption maps a *OPT 4 name (none/load/run/exec, any case) to
// its BootOption.
func ParseBootOption(s string) (BootOption, error) {
	switch strings.ToLower(s) {
	case "none", "0":
		return BootNone, nil
	case "load", "1":
		return BootLoad, nil
	case "run", "2":
		return BootRun, nil
	case "exec", "3":
		return BootExec, nil
	}
	return BootNone, InvalidValueError{}
}
