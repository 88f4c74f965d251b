package main

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beebtools/dfsdisc/dfs"
	"github.com/beebtools/dfsdisc/loggy"
)

func parseAddr(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// packDisc rebuilds a Disc from an unpacked directory tree and its
// manifest.xml, going through the public catalog mutators only.
func packDisc(srcDir string) (*dfs.Disc, error) {

	l := loggy.Get(0)

	data, err := os.ReadFile(filepath.Join(srcDir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %v", err)
	}

	var manifest discManifest
	if err := xml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %v", err)
	}

	disc := dfs.NewDisc()
	if err := disc.SetName(manifest.Name); err != nil {
		return nil, fmt.Errorf("bad disc name %q: %v", manifest.Name, err)
	}

	if manifest.Boot != "" {
		boot, err := dfs.ParseBootOption(manifest.Boot)
		if err != nil {
			return nil, fmt.Errorf("bad boot option %q", manifest.Boot)
		}
		disc.SetBootOption(boot)
	}

	cycle, err := dfs.NewBCD(manifest.Cycle)
	if err != nil {
		return nil, fmt.Errorf("bad cycle %d: %v", manifest.Cycle, err)
	}
	disc.SetCycle(cycle)

	for _, fm := range manifest.Files {
		if len(fm.Dir) != 1 {
			return nil, fmt.Errorf("bad directory %q for file %q", fm.Dir, fm.Name)
		}

		load, err := parseAddr(fm.Load)
		if err != nil {
			return nil, fmt.Errorf("bad load address %q for file %q", fm.Load, fm.Name)
		}
		exec, err := parseAddr(fm.Exec)
		if err != nil {
			return nil, fmt.Errorf("bad exec address %q for file %q", fm.Exec, fm.Name)
		}

		content, err := os.ReadFile(filepath.Join(srcDir, fm.Src))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", fm.Src, err)
		}

		f, err := dfs.NewFile(fm.Dir[0], fm.Name, load, exec, fm.Locked, content)
		if err != nil {
			return nil, fmt.Errorf("bad file entry %s.%s: %v", fm.Dir, fm.Name, err)
		}
		if old, err := disc.AddFile(f); err != nil {
			return nil, fmt.Errorf("cannot add %s: %v", f, err)
		} else if old != nil {
			l.Errorf("manifest lists %s twice, keeping the last entry", f.Key())
		}

		l.Logf("packed %s <- %s", f, fm.Src)
	}

	return disc, nil
}

// writeDisc encodes disc to outFile, returning the sector count.
func writeDisc(disc *dfs.Disc, outFile string) (int, error) {
	out, err := os.Create(outFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %v", err)
	}
	defer out.Close()

	sectors, err := disc.WriteImage(out)
	if err != nil {
		return 0, fmt.Errorf("failed to encode image: %v", err)
	}
	return sectors, nil
}
