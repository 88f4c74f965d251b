package dfs

import (
	"errors"
	"fmt"
)

// ErrNotAscii rejects bytes with the top bit set.
var ErrNotAscii = errors.New("byte is not ASCII")

// ErrNotPrinting rejects ASCII bytes outside the printing range.
var ErrNotPrinting = errors.New("byte is not printing ASCII")

// PrintingChar is a byte guaranteed to be printing ASCII (0x20-0x7e).
// Construction is the only validation point.
type PrintingChar byte

// PrintingCharFromByte validates a raw byte as printing ASCII. The two
// failure modes are distinguished: ErrNotAscii for bytes 0x80 and up,
// ErrNotPrinting for control bytes and DEL.
func PrintingCharFromByte(b byte) (PrintingChar, error) {
	if b >= 0x80 {
		return 0, ErrNotAscii
	}
	if b < 0x20 || b == 0x7f {
		return 0, ErrNotPrinting
	}
	return PrintingChar(b), nil
}

func (c PrintingChar) Byte() byte {
	return byte(c)
}

func (c PrintingChar) String() string {
	return string(rune(c))
}

// ErrBCDRange rejects decimal values above 99.
var ErrBCDRange = errors.New("value exceeds two BCD digits")

// ErrBCDDigits rejects a packed byte with a nibble above 9.
var ErrBCDDigits = errors.New("byte is not packed BCD")

// BCD is a byte holding two packed decimal digits, as used by the disc
// write-cycle counter.
type BCD byte

// NewBCD packs a decimal value 0-99.
func NewBCD(n uint8) (BCD, error) {
	if n > 99 {
		return 0, ErrBCDRange
	}
	return BCD((n/10)<<4 | n%10), nil
}

// BCDFromHex validates a raw byte already believed to be BCD-packed.
func BCDFromHex(raw byte) (BCD, error) {
	if raw>>4 > 9 || raw&15 > 9 {
		return 0, ErrBCDDigits
	}
	return BCD(raw), nil
}

// Value unpacks back to decimal.
func (b BCD) Value() uint8 {
	return uint8(b>>4)*10 + uint8(b&15)
}

// Hex returns the packed byte as stored on disc.
func (b BCD) Hex() byte {
	return byte(b)
}

// Inc advances by one decimal step, wrapping from 99 back to 0.
func (b BCD) Inc() BCD {
	n := (b.Value() + 1) % 100
	next, _ := NewBCD(n)
	return next
}

func (b BCD) String() string {
	return fmt.Sprintf("%d", b.Value())
}

// scanName measures a name field and validates it. The name's length is
// the count of leading bytes before the terminator: a space always
// terminates, and with controlTerminates set (disc names) so does any
// control byte. Every byte before the terminator must be printing
// ASCII; on a violation the returned index is the offending position,
// otherwise -1.
func scanName(buf []byte, controlTerminates bool) (string, int) {
	n := 0
	for _, b := range buf {
		if b == 0x20 || (controlTerminates && b < 0x20) {
			break
		}
		n++
	}
	for i := 0; i < n; i++ {
		if buf[i] < 0x20 || buf[i] > 0x7e {
			return "", i
		}
	}
	return string(buf[:n]), -1
}

// validName checks a name for use in a catalog: no more than max bytes,
// every byte printing ASCII, no embedded space (space is the on-disc
// terminator).
func validName(s string, max int) bool {
	if len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func leU16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func putLeU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// padCopy copies src into dst, filling the remainder with spaces. src
// must not be longer than dst.
func padCopy(dst []byte, src []byte) {
	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = 0x20
	}
}
