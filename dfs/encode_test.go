package dfs

import (
	"bytes"
	"testing"
)

func mustFile(t *testing.T, dir byte, name string, load, exec uint32, locked bool, content []byte) *File {
	t.Helper()
	f, err := NewFile(dir, name, load, exec, locked, content)
	if err != nil {
		t.Fatalf("NewFile(%c.%s): %v", dir, name, err)
	}
	return f
}

func buildDisc(t *testing.T) *Disc {
	t.Helper()
	d := NewDisc()
	if err := d.SetName("RoundTrip"); err != nil {
		t.Fatal(err)
	}
	d.SetBootOption(BootRun)
	cycle, _ := NewBCD(42)
	d.SetCycle(cycle)

	// One file exercising the 18-bit address overflow, one spanning a
	// sector boundary, one locked.
	files := []*File{
		mustFile(t, '$', "Small", 0x31234, 0x25678, false, bytes.Repeat([]byte{0x31}, 12)),
		mustFile(t, 'A', "Double", 0x0111, 0x0eee, false, bytes.Repeat([]byte{0x33}, 257)),
		mustFile(t, 'B', "Lockd", 0x8765, 0x4321, true, bytes.Repeat([]byte{0x32}, 256)),
	}
	for _, f := range files {
		if _, err := d.AddFile(f); err != nil {
			t.Fatalf("AddFile(%s): %v", f, err)
		}
	}
	return d
}

func TestEncodeRoundTrip(t *testing.T) {
	d := buildDisc(t)

	img, sectors, err := d.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	// 2 catalog + 1 + 2 + 1 data sectors
	if sectors != 6 {
		t.Errorf("sector count %d, want 6", sectors)
	}
	if len(img) != sectors*SECTOR_SIZE {
		t.Errorf("image length %d", len(img))
	}

	back, err := FromBytes(img)
	if err != nil {
		t.Fatalf("decode of encoded image: %v", err)
	}
	if back.Name() != d.Name() {
		t.Errorf("name %q, want %q", back.Name(), d.Name())
	}
	if back.BootOption() != d.BootOption() {
		t.Errorf("boot option %s", back.BootOption())
	}
	if back.Cycle() != d.Cycle() {
		t.Errorf("cycle %s", back.Cycle())
	}
	if back.Len() != d.Len() {
		t.Fatalf("file count %d", back.Len())
	}
	for _, want := range d.Files() {
		got := back.FindFile(want.Name(), want.Directory().Byte())
		if got == nil {
			t.Fatalf("missing %s", want)
		}
		if got.LoadAddr != want.LoadAddr || got.ExecAddr != want.ExecAddr {
			t.Errorf("%s addresses 0x%x/0x%x", got, got.LoadAddr, got.ExecAddr)
		}
		if got.Locked != want.Locked {
			t.Errorf("%s lock flag lost", got)
		}
		if !bytes.Equal(got.Content, want.Content) {
			t.Errorf("%s content differs", got)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	// Insertion order must not leak into the image
	a := buildDisc(t)

	b := NewDisc()
	b.SetName("RoundTrip")
	b.SetBootOption(BootRun)
	cycle, _ := NewBCD(42)
	b.SetCycle(cycle)
	b.AddFile(mustFile(t, 'B', "Lockd", 0x8765, 0x4321, true, bytes.Repeat([]byte{0x32}, 256)))
	b.AddFile(mustFile(t, 'A', "Double", 0x0111, 0x0eee, false, bytes.Repeat([]byte{0x33}, 257)))
	b.AddFile(mustFile(t, '$', "Small", 0x31234, 0x25678, false, bytes.Repeat([]byte{0x31}, 12)))

	imgA, _, err := a.ToBytes()
	if err != nil {
		t.Fatal(err)
	}
	imgB, _, err := b.ToBytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(imgA, imgB) {
		t.Error("same file set encoded to different images")
	}
}

func TestEncodeEmptyDisc(t *testing.T) {
	d := NewDisc()
	d.SetName("Empty")

	img, sectors, err := d.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	if sectors != 2 || len(img) != 512 {
		t.Fatalf("empty disc encoded to %d sectors, %d bytes", sectors, len(img))
	}

	back, err := FromBytes(img)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Name() != "Empty" || back.Len() != 0 {
		t.Errorf("got %q with %d files", back.Name(), back.Len())
	}
}

func TestEncodeContentTooLong(t *testing.T) {
	d := NewDisc()
	f := mustFile(t, '$', "Big", 0, 0, false, nil)
	f.Content = make([]byte, MAX_FILE_LEN+1)
	d.AddFile(f)

	_, _, err := d.ToBytes()
	if err != (InputTooLargeError{Size: MAX_FILE_LEN + 1}) {
		t.Errorf("err %v, want InputTooLarge(0x40000)", err)
	}
}

func TestEncodePastDiscExtent(t *testing.T) {
	// 210000 bytes fits the 18-bit length field but needs 821 data
	// sectors, past the 800-sector extent
	d := NewDisc()
	f := mustFile(t, '$', "Big", 0, 0, false, make([]byte, 210000))
	d.AddFile(f)

	_, _, err := d.ToBytes()
	if _, ok := err.(InputTooLargeError); !ok {
		t.Errorf("err %v, want InputTooLargeError", err)
	}
}

func TestAddFileCapacity(t *testing.T) {
	d := NewDisc()
	for i := 0; i < MAX_FILES; i++ {
		name := string([]byte{'F', byte('A' + i/26), byte('A' + i%26)})
		if _, err := d.AddFile(mustFile(t, '$', name, 0, 0, false, nil)); err != nil {
			t.Fatalf("file %d: %v", i, err)
		}
	}
	if d.Len() != MAX_FILES {
		t.Fatalf("catalog holds %d files", d.Len())
	}

	// A 32nd distinct key is rejected without mutating the set
	if _, err := d.AddFile(mustFile(t, '$', "Extra", 0, 0, false, nil)); err != ErrCatalogFull {
		t.Errorf("err %v, want ErrCatalogFull", err)
	}
	if d.Len() != MAX_FILES {
		t.Errorf("failed add mutated the catalog to %d files", d.Len())
	}

	// Replacing an existing key at capacity is fine and returns the
	// previous file
	repl := mustFile(t, '$', "FAA", 0x1000, 0x1000, false, []byte{1})
	old, err := d.AddFile(repl)
	if err != nil {
		t.Fatalf("replace at capacity: %v", err)
	}
	if old == nil || old.LoadAddr != 0 {
		t.Errorf("replacement did not return the previous file")
	}
	if d.Len() != MAX_FILES {
		t.Errorf("replacement changed the count to %d", d.Len())
	}
}

func TestFindRemove(t *testing.T) {
	d := NewDisc()
	f := mustFile(t, 'A', "Prog", 0xe00, 0xe00, false, []byte{0x0d})
	d.AddFile(f)

	if d.FindFile("Prog", 'A') != f {
		t.Error("FindFile missed")
	}
	if d.FindFile("Prog", '$') != nil {
		t.Error("FindFile matched the wrong directory")
	}
	if got := d.RemoveFile("Prog", 'A'); got != f {
		t.Error("RemoveFile returned the wrong file")
	}
	if d.RemoveFile("Prog", 'A') != nil {
		t.Error("RemoveFile found a removed file")
	}
	if d.Len() != 0 {
		t.Errorf("catalog still holds %d files", d.Len())
	}
}

func TestIncrementCycle(t *testing.T) {
	d := NewDisc()
	c, _ := NewBCD(99)
	d.SetCycle(c)
	d.IncrementCycle()
	if d.Cycle().Value() != 0 {
		t.Errorf("cycle %d, want decimal wrap to 0", d.Cycle().Value())
	}
	d.IncrementCycle()
	if d.Cycle().Value() != 1 {
		t.Errorf("cycle %d, want 1", d.Cycle().Value())
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	d := buildDisc(t)
	img, _, err := d.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	if string(img[0:8]) != "RoundTri" {
		t.Errorf("name head %q", img[0:8])
	}
	if string(img[0x100:0x104]) != "p\x20\x20\x20" {
		t.Errorf("name tail %q", img[0x100:0x104])
	}
	if img[0x104] != 0x42 {
		t.Errorf("cycle byte 0x%02x", img[0x104])
	}
	if img[0x105] != 3<<3 {
		t.Errorf("entry count byte 0x%02x", img[0x105])
	}
	if img[0x106] != byte(BootRun)<<4 {
		t.Errorf("boot/sector byte 0x%02x", img[0x106])
	}
	if img[0x107] != 6 {
		t.Errorf("sector count byte 0x%02x", img[0x107])
	}

	// First slot is $.Small: name padded to 7, then the dir byte
	if string(img[0x008:0x00f]) != "Small\x20\x20" || img[0x00f] != '$' {
		t.Errorf("first name slot %q %q", img[0x008:0x00f], img[0x00f])
	}
	// B.Lockd sorts last; its dir byte carries the lock bit
	if img[0x01f] != 'B'|0x80 {
		t.Errorf("locked dir byte 0x%02x", img[0x01f])
	}
}
