package dfs

import "io"

// The busy byte extends four 16-bit entry fields by two bits each,
// packed high to low: exec, length, load, start sector. packBusy and
// unpackBusy are exact mirrors; keep their shift tables in sync.

func packBusy(load, exec, length, sector uint32) byte {
	return byte(exec>>16&3<<6 | length>>16&3<<4 | load>>16&3<<2 | sector>>8&3)
}

func unpackBusy(busy byte) (load, exec, length, sector uint32) {
	b := uint32(busy)
	load = b << 14 & 0x30000
	exec = b << 10 & 0x30000
	length = b << 12 & 0x30000
	sector = b << 8 & 0x300
	return
}

// ToBytes encodes the disc into a byte-exact image, returning the image
// and its total sector count.
//
// Files are laid out in Files() order (directory then name) with data
// packed from sector 2 up, each file padded with zeroes to the next
// sector boundary, so a given file set always encodes to the same
// bytes. A content length beyond the 18-bit length field, or a layout
// spilling past the 800-sector disc extent, fails with
// InputTooLargeError.
func (d *Disc) ToBytes() ([]byte, int, error) {
	files := d.Files()

	// Assign start sectors before emitting anything.
	starts := make([]int, len(files))
	next := CATALOG_SECTORS
	for i, f := range files {
		if len(f.Content) > MAX_FILE_LEN {
			return nil, 0, InputTooLargeError{Size: len(f.Content)}
		}
		starts[i] = next
		next += f.Sectors()
		if next > MAX_SECTORS {
			return nil, 0, InputTooLargeError{Size: next * SECTOR_SIZE}
		}
	}
	end := next

	img := make([]byte, end*SECTOR_SIZE)

	// Sector 0: disc name bytes 0-7, then the 31 name/directory slots.
	// Sector 1: name bytes 8-11, cycle, entry count, boot option and
	// sector count, then the 31 address slots.
	name := []byte(d.name)
	nameTail := []byte(nil)
	if len(name) > 8 {
		nameTail = name[8:]
		name = name[:8]
	}
	padCopy(img[0x000:0x008], name)
	padCopy(img[0x100:0x104], nameTail)
	img[0x104] = d.cycle.Hex()
	img[0x105] = byte(len(files) << 3)
	img[0x106] = byte(d.boot)<<4 | byte(end>>8&3)
	img[0x107] = byte(end)

	for i, f := range files {
		off1 := 0x008 + i*8
		off2 := 0x108 + i*8

		padCopy(img[off1:off1+7], []byte(f.name))
		dirByte := f.dir.Byte()
		if f.Locked {
			dirByte |= 0x80
		}
		img[off1+7] = dirByte

		putLeU16(img[off2:], uint16(f.LoadAddr))
		putLeU16(img[off2+2:], uint16(f.ExecAddr))
		putLeU16(img[off2+4:], uint16(len(f.Content)))
		img[off2+6] = packBusy(f.LoadAddr, f.ExecAddr, uint32(len(f.Content)), uint32(starts[i]))
		img[off2+7] = byte(starts[i])

		copy(img[starts[i]*SECTOR_SIZE:], f.Content)
	}

	return img, end, nil
}

// WriteImage encodes the disc and writes the image to w, returning the
// total sector count.
func (d *Disc) WriteImage(w io.Writer) (int, error) {
	img, sectors, err := d.ToBytes()
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(img); err != nil {
		return 0, err
	}
	return sectors, nil
}
