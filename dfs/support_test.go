package dfs

import "testing"

func TestBCDPack(t *testing.T) {
	inputs := []uint8{5, 9, 10, 25, 99}
	packed := []byte{0x05, 0x09, 0x10, 0x25, 0x99}

	for i, in := range inputs {
		b, err := NewBCD(in)
		if err != nil {
			t.Fatalf("NewBCD(%d): %v", in, err)
		}
		if b.Hex() != packed[i] {
			t.Errorf("NewBCD(%d) packed 0x%02x, want 0x%02x", in, b.Hex(), packed[i])
		}
		if b.Value() != in {
			t.Errorf("NewBCD(%d) round-trips to %d", in, b.Value())
		}
	}
}

func TestBCDRange(t *testing.T) {
	for _, in := range []uint8{100, 255} {
		if _, err := NewBCD(in); err != ErrBCDRange {
			t.Errorf("NewBCD(%d) err %v, want ErrBCDRange", in, err)
		}
	}
}

func TestBCDFromHex(t *testing.T) {
	b, err := BCDFromHex(0x42)
	if err != nil {
		t.Fatalf("BCDFromHex(0x42): %v", err)
	}
	if b.Value() != 42 {
		t.Errorf("BCDFromHex(0x42) = %d, want 42", b.Value())
	}

	for _, raw := range []byte{0x9a, 0xa0, 0x0f, 0xff} {
		if _, err := BCDFromHex(raw); err != ErrBCDDigits {
			t.Errorf("BCDFromHex(0x%02x) err %v, want ErrBCDDigits", raw, err)
		}
	}
}

func TestBCDInc(t *testing.T) {
	b, _ := NewBCD(9)
	b = b.Inc()
	if b.Hex() != 0x10 || b.Value() != 10 {
		t.Errorf("9.Inc() = 0x%02x (%d)", b.Hex(), b.Value())
	}

	b, _ = NewBCD(99)
	b = b.Inc()
	if b.Value() != 0 {
		t.Errorf("99.Inc() = %d, want wrap to 0", b.Value())
	}
}

func TestPrintingChar(t *testing.T) {
	for _, b := range []byte{0x20, 0x21, '$', 'A', 'z', 0x7e} {
		c, err := PrintingCharFromByte(b)
		if err != nil {
			t.Fatalf("PrintingCharFromByte(0x%02x): %v", b, err)
		}
		if c.Byte() != b {
			t.Errorf("PrintingCharFromByte(0x%02x) = 0x%02x", b, c.Byte())
		}
	}

	for _, b := range []byte{0x00, 0x1f, 0x7f} {
		if _, err := PrintingCharFromByte(b); err != ErrNotPrinting {
			t.Errorf("PrintingCharFromByte(0x%02x) err %v, want ErrNotPrinting", b, err)
		}
	}
	for _, b := range []byte{0x80, 0xa0, 0xff} {
		if _, err := PrintingCharFromByte(b); err != ErrNotAscii {
			t.Errorf("PrintingCharFromByte(0x%02x) err %v, want ErrNotAscii", b, err)
		}
	}
}

func TestScanName(t *testing.T) {
	// Space terminates both flavours
	name, bad := scanName([]byte("Small  "), false)
	if bad != -1 || name != "Small" {
		t.Errorf("got %q bad=%d", name, bad)
	}

	// Control byte terminates a disc name but violates a file name
	buf := []byte{'A', 'B', 0x01, 'C', 'D', 'E', 'F'}
	name, bad = scanName(buf, true)
	if bad != -1 || name != "AB" {
		t.Errorf("disc-name scan got %q bad=%d", name, bad)
	}
	_, bad = scanName(buf, false)
	if bad != 2 {
		t.Errorf("file-name scan bad=%d, want 2", bad)
	}

	// High bit set is a violation either way
	_, bad = scanName([]byte{'A', 0xc1, ' ', ' ', ' ', ' ', ' '}, true)
	if bad != 1 {
		t.Errorf("high-bit scan bad=%d, want 1", bad)
	}

	// Bytes after the terminator are never inspected
	name, bad = scanName([]byte{'O', 'K', ' ', 0xff, 0xff, 0xff, 0xff}, false)
	if bad != -1 || name != "OK" {
		t.Errorf("got %q bad=%d", name, bad)
	}
}

func TestBusyBytePair(t *testing.T) {
	// unpack and pack must be exact mirrors for every possible byte
	for b := 0; b < 256; b++ {
		load, exec, length, sector := unpackBusy(byte(b))
		if got := packBusy(load, exec, length, sector); got != byte(b) {
			t.Fatalf("busy byte 0x%02x repacked as 0x%02x", b, got)
		}
	}
}

func TestBusyByteMasks(t *testing.T) {
	load, exec, length, sector := unpackBusy(0xff)
	if load != 0x30000 || exec != 0x30000 || length != 0x30000 || sector != 0x300 {
		t.Fatalf("unpackBusy(0xff) = %x %x %x %x", load, exec, length, sector)
	}
	if packBusy(0x30000, 0, 0, 0) != 0x0c {
		t.Errorf("load overflow should pack into bits 2-3")
	}
	if packBusy(0, 0x30000, 0, 0) != 0xc0 {
		t.Errorf("exec overflow should pack into bits 6-7")
	}
	if packBusy(0, 0, 0x30000, 0) != 0x30 {
		t.Errorf("length overflow should pack into bits 4-5")
	}
	if packBusy(0, 0, 0, 0x300) != 0x03 {
		t.Errorf("sector overflow should pack into bits 0-1")
	}
}
