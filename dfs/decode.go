package dfs

// FromBytes decodes a disc image into a Disc. File contents are copied
// out of src, so the image buffer can be dropped afterwards.
//
// As DFS discs only reach 200KiB there is no provision for streaming;
// the whole image is validated and decoded, or rejected, in one pass.
// Validation failures carry the byte offset of the offending data,
// except for disc-name failures which carry the position within the
// logical 12-byte name buffer (the name being split 8+4 across the two
// catalog sectors).
func FromBytes(src []byte) (*Disc, error) {
	// Must have minimum size for the two catalog sectors
	if len(src) < SECTOR_SIZE*CATALOG_SECTORS {
		return nil, InputTooSmallError{Min: SECTOR_SIZE * CATALOG_SECTORS}
	}

	// Disc name: 8 bytes in sector 0, 4 in sector 1. Space or a
	// control byte terminates it.
	var nameBuf [12]byte
	copy(nameBuf[:8], src[0x000:0x008])
	copy(nameBuf[8:], src[0x100:0x104])
	name, bad := scanName(nameBuf[:], true)
	if bad >= 0 {
		return nil, InvalidDiscDataError{Offset: bad}
	}

	// Declared sector count: 10 bits split over 0x106/0x107. Not
	// checked against len(src); images commonly declare all 40 or 80
	// tracks and then only include the sectors holding data. Each
	// file's extent is checked against the source instead.
	sectors := int(src[0x107]) | int(src[0x106]&3)<<8
	if sectors < CATALOG_SECTORS {
		return nil, InvalidDiscDataError{Offset: 0x107}
	}

	boot, err := bootOptionFromByte(src[0x106] >> 4 & 3)
	if err != nil {
		return nil, err
	}

	cycle, err := BCDFromHex(src[0x104])
	if err != nil {
		return nil, InvalidDiscDataError{Offset: 0x104}
	}

	files, err := decodeCatalog(src)
	if err != nil {
		return nil, err
	}

	d := NewDisc()
	d.name = name
	d.boot = boot
	d.cycle = cycle
	d.sectors = sectors
	d.files = files
	return d, nil
}

// decodeCatalog walks the catalog entries in on-disc index order. Entry
// i has its name block at 0x008+8i and its address block at 0x108+8i.
func decodeCatalog(src []byte) (map[Key]*File, error) {
	raw := src[0x105]
	if raw&0x07 != 0 {
		return nil, InvalidDiscDataError{Offset: 0x105}
	}
	count := int(raw >> 3)

	files := make(map[Key]*File, count)

	for i := 0; i < count; i++ {
		off1 := 0x008 + i*8
		off2 := 0x108 + i*8

		// Directory byte: bit 7 is the lock flag, the rest must be a
		// printing character.
		dirRaw := src[off1+7]
		locked := dirRaw > 0x7f
		dir, err := PrintingCharFromByte(dirRaw & 0x7f)
		if err != nil {
			return nil, InvalidDiscDataError{Offset: off1 + 7}
		}

		// File name: space-terminated, but unlike the disc name a
		// control byte does not terminate, it is a violation.
		name, bad := scanName(src[off1:off1+7], false)
		if bad >= 0 {
			return nil, InvalidDiscDataError{Offset: off1 + bad}
		}

		loadX, execX, lenX, sectorX := unpackBusy(src[off2+6])
		load := uint32(leU16(src[off2:])) | loadX
		exec := uint32(leU16(src[off2+2:])) | execX
		length := uint32(leU16(src[off2+4:])) | lenX
		startSector := uint32(src[off2+7]) | sectorX

		// The catalog sectors never hold file data, and the extent
		// must lie within the supplied image.
		dataStart := int(startSector) * SECTOR_SIZE
		dataEnd := dataStart + int(length)
		if dataStart < CATALOG_SECTORS*SECTOR_SIZE {
			return nil, InvalidDiscDataError{Offset: off2 + 7}
		}
		if dataEnd > len(src) {
			return nil, InvalidDiscDataError{Offset: off2 + 6}
		}

		content := make([]byte, length)
		copy(content, src[dataStart:dataEnd])

		f := &File{
			dir:      dir,
			name:     name,
			LoadAddr: load,
			ExecAddr: exec,
			Locked:   locked,
			Content:  content,
		}

		key := f.Key()
		if _, dup := files[key]; dup {
			// Whether the two entries reference the same data is not
			// checked.
			return nil, DuplicateFileNameError{Name: key.String()}
		}
		files[key] = f
	}

	return files, nil
}
