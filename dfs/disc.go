package dfs

import "sort"

// Disc is a single-sided DFS disc: the catalog metadata from sectors 0
// and 1 plus the set of cataloged files, keyed by (directory, name).
type Disc struct {
	name    string
	boot    BootOption
	cycle   BCD
	sectors int

	files map[Key]*File
}

// NewDisc builds an empty disc with no name, boot option *OPT 4,0 and a
// zero write cycle.
func NewDisc() *Disc {
	return &Disc{
		files: make(map[Key]*File),
	}
}

func (d *Disc) Name() string {
	return d.name
}

// SetName sets the disc name: at most 12 printing ASCII characters with
// no embedded spaces (a space terminates the name on disc).
func (d *Disc) SetName(name string) error {
	if !validName(name, 12) {
		return InvalidValueError{}
	}
	d.name = name
	return nil
}

func (d *Disc) BootOption() BootOption {
	return d.boot
}

func (d *Disc) SetBootOption(b BootOption) {
	d.boot = b
}

func (d *Disc) Cycle() BCD {
	return d.cycle
}

func (d *Disc) SetCycle(c BCD) {
	d.cycle = c
}

// IncrementCycle advances the write-cycle counter by one decimal step,
// wrapping from 99 back to 0.
func (d *Disc) IncrementCycle() {
	d.cycle = d.cycle.Inc()
}

// Sectors is the sector count declared by the image this disc was
// decoded from, or 0 for a disc built programmatically. The declared
// count commonly exceeds the populated image.
func (d *Disc) Sectors() int {
	return d.sectors
}

// Len is the number of cataloged files.
func (d *Disc) Len() int {
	return len(d.files)
}

// Files returns the cataloged files ordered by directory then name.
// This ordering decides on-disc catalog and data placement at encode
// time, so a given file set always produces the same image.
func (d *Disc) Files() []*File {
	out := make([]*File, 0, len(d.files))
	for _, f := range d.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Dir != b.Dir {
			return a.Dir < b.Dir
		}
		return a.Name < b.Name
	})
	return out
}

// AddFile catalogs a file. A file already held under the same key is
// replaced and returned; a 32nd distinct key fails with ErrCatalogFull
// and leaves the catalog untouched.
func (d *Disc) AddFile(f *File) (*File, error) {
	key := f.Key()
	old, exists := d.files[key]
	if !exists && len(d.files) >= MAX_FILES {
		return nil, ErrCatalogFull
	}
	d.files[key] = f
	return old, nil
}

// FindFile looks up a file by name and directory character.
func (d *Disc) FindFile(name string, dir byte) *File {
	return d.files[Key{Dir: PrintingChar(dir), Name: name}]
}

// RemoveFile removes and returns the file under (name, dir), or nil.
func (d *Disc) RemoveFile(name string, dir byte) *File {
	key := Key{Dir: PrintingChar(dir), Name: name}
	f := d.files[key]
	if f != nil {
		delete(d.files, key)
	}
	return f
}
