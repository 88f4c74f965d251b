package main

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beebtools/dfsdisc/dfs"
	"github.com/beebtools/dfsdisc/loggy"
)

const manifestName = "manifest.xml"

// discManifest is the on-disk description of an unpacked disc. Pack
// reads it back and rebuilds the image through the catalog API.
type discManifest struct {
	XMLName xml.Name       `xml:"dfsdisc"`
	Name    string         `xml:"name,attr"`
	Cycle   uint8          `xml:"cycle,attr"`
	Boot    string         `xml:"boot,attr"`
	Sides   int            `xml:"sides,attr"`
	Tracks  int            `xml:"tracks,attr"`
	Files   []fileManifest `xml:"file"`
}

type fileManifest struct {
	Name   string `xml:"name,attr"`
	Dir    string `xml:"dir,attr"`
	Src    string `xml:"src,attr"`
	Load   string `xml:"load,attr"`
	Exec   string `xml:"exec,attr"`
	Locked bool   `xml:"locked,attr,omitempty"`
}

// hostName maps a catalog entry to a filename safe for the host
// filesystem. DFS names may contain characters like '/' or ':'.
func hostName(f *dfs.File) string {
	raw := []byte(f.Directory().String() + "." + f.Name())
	out := make([]byte, len(raw))
	for i, b := range raw {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			out[i] = b
		case b == '.', b == '-', b == '_', b == '$', b == '#', b == '!':
			out[i] = b
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// unpackDisc writes every cataloged file into outDir alongside a
// manifest.xml describing the disc.
func unpackDisc(disc *dfs.Disc, outDir string) error {

	l := loggy.Get(0)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	tracks := (disc.Sectors() + 9) / 10
	if tracks == 0 {
		tracks = 80
	}

	manifest := discManifest{
		Name:   disc.Name(),
		Cycle:  disc.Cycle().Value(),
		Boot:   disc.BootOption().String(),
		Sides:  1,
		Tracks: tracks,
	}

	for _, f := range disc.Files() {
		src := hostName(f)
		if err := os.WriteFile(filepath.Join(outDir, src), f.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %v", src, err)
		}
		l.Logf("unpacked %s -> %s", f, src)

		manifest.Files = append(manifest.Files, fileManifest{
			Name:   f.Name(),
			Dir:    f.Directory().String(),
			Src:    src,
			Load:   fmt.Sprintf("0x%x", f.LoadAddr),
			Exec:   fmt.Sprintf("0x%x", f.ExecAddr),
			Locked: f.Locked,
		})
	}

	data, err := xml.MarshalIndent(&manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %v", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := os.WriteFile(filepath.Join(outDir, manifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %v", err)
	}

	l.Logf("unpacked %d files from %q", disc.Len(), disc.Name())
	return nil
}
