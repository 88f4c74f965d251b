package dfs

import "fmt"

// Key identifies a file within a catalog. Two files with the same
// directory and name are the same file no matter what else differs.
type Key struct {
	Dir  PrintingChar
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s", k.Dir, k.Name)
}

// File is one catalog entry: a directory character and name, the load
// and execution addresses the OS would use, the lock flag, and the file
// contents. Addresses are 18-bit values; the top two bits of each live
// in the entry's busy byte on disc.
type File struct {
	dir      PrintingChar
	name     string
	LoadAddr uint32
	ExecAddr uint32
	Locked   bool
	Content  []byte
}

// NewFile validates the directory character and name and builds a File.
// The name is at most 7 printing ASCII characters with no spaces; the
// addresses must fit in 18 bits.
func NewFile(dir byte, name string, load, exec uint32, locked bool, content []byte) (*File, error) {
	d, err := PrintingCharFromByte(dir)
	if err != nil {
		return nil, InvalidValueError{}
	}
	if !validName(name, 7) {
		return nil, InvalidValueError{}
	}
	if load > MAX_FILE_LEN || exec > MAX_FILE_LEN {
		return nil, InvalidValueError{}
	}
	return &File{
		dir:      d,
		name:     name,
		LoadAddr: load,
		ExecAddr: exec,
		Locked:   locked,
		Content:  content,
	}, nil
}

func (f *File) Key() Key {
	return Key{Dir: f.dir, Name: f.name}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Directory() PrintingChar {
	return f.dir
}

// SetName renames the file. The caller re-inserts it into a Disc if the
// file is already cataloged; the Disc's key map is not updated here.
func (f *File) SetName(name string) error {
	if !validName(name, 7) {
		return InvalidValueError{}
	}
	f.name = name
	return nil
}

// SetDirectory moves the file to another directory character.
func (f *File) SetDirectory(dir byte) error {
	d, err := PrintingCharFromByte(dir)
	if err != nil {
		return InvalidValueError{}
	}
	f.dir = d
	return nil
}

// Size is the on-disc length field: the content length.
func (f *File) Size() int {
	return len(f.Content)
}

// Sectors is the number of 256-byte sectors the content occupies.
func (f *File) Sectors() int {
	return (len(f.Content) + SECTOR_SIZE - 1) / SECTOR_SIZE
}

func (f *File) String() string {
	return fmt.Sprintf("%s.%s (load 0x%x, exec 0x%x, size 0x%x)",
		f.dir, f.name, f.LoadAddr, f.ExecAddr, len(f.Content))
}
