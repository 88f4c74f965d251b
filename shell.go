package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/beebtools/dfsdisc/dfs"
	"github.com/beebtools/dfsdisc/loggy"
	"github.com/beebtools/dfsdisc/panic"
)

const MAXVOL = 8

type shellVolume struct {
	Filename string
	Disc     *dfs.Disc
	Dirty    bool
}

var commandList map[string]*shellCommand
var commandVolumes [MAXVOL]*shellVolume
var commandTarget int = -1

func mountDisc(filename string, disc *dfs.Disc) (int, error) {

	var fr []int

	for i, v := range commandVolumes {
		if v == nil {
			fr = append(fr, i)
		} else if v.Filename == filename {
			return i, nil
		}
	}

	if len(fr) == 0 {
		return -1, fmt.Errorf("no free slots")
	}

	commandVolumes[fr[0]] = &shellVolume{Filename: filename, Disc: disc}

	return fr[0], nil
}

func currentVolume() *shellVolume {
	if commandTarget < 0 || commandVolumes[commandTarget] == nil {
		return nil
	}
	return commandVolumes[commandTarget]
}

func smartSplit(line string) (string, []string) {

	var out []string

	var inqq bool
	var lastEscape bool
	var chunk string

	add := func() {
		if chunk != "" {
			out = append(out, chunk)
			chunk = ""
		}
	}

	for _, ch := range line {
		switch {
		case ch == '"':
			inqq = !inqq
			add()
		case ch == ' ':
			if inqq || lastEscape {
				chunk += string(ch)
			} else {
				add()
			}
			lastEscape = false
		case ch == '\\' && !inqq:
			lastEscape = true
		default:
			chunk += string(ch)
		}
	}

	add()

	if len(out) == 0 {
		return "", out
	}

	return out[0], out[1:]
}

// splitFileSpec parses "D.NAME" into a directory character and a name.
// A bare name defaults to the root directory '$'.
func splitFileSpec(spec string) (byte, string) {
	if len(spec) >= 2 && spec[1] == '.' {
		return spec[0], spec[2:]
	}
	return '$', spec
}

func getPrompt() string {
	v := currentVolume()
	if v == nil {
		return fmt.Sprintf("dfs:%d:<no mount>> ", 0)
	}
	return fmt.Sprintf("dfs:%d:%s> ", commandTarget, filepath.Base(v.Filename))
}

type shellCommand struct {
	Name             string
	Description      string
	MinArgs, MaxArgs int
	Code             func(args []string) int
	NeedsMount       bool
}

func init() {
	commandList = map[string]*shellCommand{
		"mount": {
			Name:        "mount",
			Description: "Mount a disc image",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellMount,
		},
		"unmount": {
			Name:        "unmount",
			Description: "Unmount the current disc image",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellUnmount,
			NeedsMount:  true,
		},
		"slot": {
			Name:        "slot",
			Description: "Switch to a mounted volume slot",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellSlot,
		},
		"info": {
			Name:        "info",
			Description: "Show disc name, boot option, cycle and extent",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellInfo,
			NeedsMount:  true,
		},
		"cat": {
			Name:        "cat",
			Description: "List the catalog",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellCat,
			NeedsMount:  true,
		},
		"extract": {
			Name:        "extract",
			Description: "Extract a file: extract D.NAME [hostfile]",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellExtract,
			NeedsMount:  true,
		},
		"put": {
			Name:        "put",
			Description: "Add a host file: put hostfile D.NAME [load [exec]]",
			MinArgs:     2,
			MaxArgs:     4,
			Code:        shellPut,
			NeedsMount:  true,
		},
		"rm": {
			Name:        "rm",
			Description: "Remove a file from the catalog",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellRm,
			NeedsMount:  true,
		},
		"lock": {
			Name:        "lock",
			Description: "Set a file's lock flag",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellLock,
			NeedsMount:  true,
		},
		"unlock": {
			Name:        "unlock",
			Description: "Clear a file's lock flag",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellUnlock,
			NeedsMount:  true,
		},
		"title": {
			Name:        "title",
			Description: "Set the disc name",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellTitle,
			NeedsMount:  true,
		},
		"opt": {
			Name:        "opt",
			Description: "Set the boot option: none, load, run or exec",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellOpt,
			NeedsMount:  true,
		},
		"save": {
			Name:        "save",
			Description: "Encode the volume back to disc: save [file]",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellSave,
			NeedsMount:  true,
		},
		"help": {
			Name:        "help",
			Description: "Show this list",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellHelp,
		},
		"quit": {
			Name:        "quit",
			Description: "Leave the shell",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellQuit,
		},
	}
}

func shellProcess(line string) int {

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0
	}

	verb, args := smartSplit(line)
	verb = strings.ToLower(verb)

	command, ok := commandList[verb]
	if !ok {
		os.Stderr.WriteString(fmt.Sprintf("Unrecognized command: %s\n", verb))
		return -1
	}

	if command.NeedsMount && currentVolume() == nil {
		os.Stderr.WriteString("No disc mounted\n")
		return -1
	}
	if len(args) < command.MinArgs || len(args) > command.MaxArgs {
		os.Stderr.WriteString(fmt.Sprintf("Usage: %s -- %s\n", command.Name, command.Description))
		return -1
	}

	r := -1
	panic.Do(
		func() {
			r = command.Code(args)
		},
		func(rec interface{}) {
			l := loggy.Get(0)
			l.Errorf("Error processing command: %s", line)
			l.Errorf(string(debug.Stack()))
			os.Stderr.WriteString(fmt.Sprintf("Command failed: %v\n", rec))
		},
	)

	return r
}

func shellDo(images []string) {

	for _, image := range images {
		if r := shellMount([]string{image}); r != 0 {
			break
		}
	}

	var items []readline.PrefixCompleterInterface
	for name := range commandList {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 getPrompt(),
		HistoryFile:            binpath() + "/.shell_history",
		DisableAutoSaveHistory: false,
		AutoComplete:           readline.NewPrefixCompleter(items...),
	})
	if err != nil {
		os.Exit(2)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		if r := shellProcess(line); r == 999 {
			return
		}

		rl.SetPrompt(getPrompt())
	}
}

func shellMount(args []string) int {

	data, err := readImage(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	disc, err := dfs.FromBytes(data)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	slot, err := mountDisc(args[0], disc)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	commandTarget = slot
	fmt.Printf("Mounted %s in slot %d\n", filepath.Base(args[0]), slot)

	return 0
}

func shellUnmount(args []string) int {
	v := currentVolume()
	if v.Dirty {
		os.Stderr.WriteString("Volume has unsaved changes, save first or mount over it\n")
		return -1
	}
	commandVolumes[commandTarget] = nil
	commandTarget = -1
	for i, vol := range commandVolumes {
		if vol != nil {
			commandTarget = i
			break
		}
	}
	return 0
}

func shellSlot(args []string) int {
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 0 || n >= MAXVOL {
		os.Stderr.WriteString("Bad slot number\n")
		return -1
	}
	if commandVolumes[n] == nil {
		os.Stderr.WriteString("Nothing mounted in that slot\n")
		return -1
	}
	commandTarget = n
	return 0
}

func shellInfo(args []string) int {
	v := currentVolume()
	d := v.Disc

	fmt.Printf("Disc name   : %s\n", d.Name())
	fmt.Printf("Boot option : %s (*OPT 4,%d)\n", d.BootOption(), d.BootOption())
	fmt.Printf("Write cycle : %s\n", d.Cycle())
	fmt.Printf("Sectors     : %d\n", d.Sectors())
	fmt.Printf("Files       : %d of %d\n", d.Len(), dfs.MAX_FILES)

	return 0
}

func shellCat(args []string) int {
	d := currentVolume().Disc

	fmt.Printf("Catalog of %s:\n\n", d.Name())
	for _, f := range d.Files() {
		lock := " "
		if f.Locked {
			lock = "L"
		}
		fmt.Printf("  %s.%-7s %s load 0x%05x exec 0x%05x size %6d\n",
			f.Directory(), f.Name(), lock, f.LoadAddr, f.ExecAddr, f.Size())
	}

	return 0
}

func findFileArg(spec string) *dfs.File {
	d := currentVolume().Disc
	dir, name := splitFileSpec(spec)
	f := d.FindFile(name, dir)
	if f == nil {
		os.Stderr.WriteString(fmt.Sprintf("No file %c.%s\n", dir, name))
	}
	return f
}

func shellExtract(args []string) int {
	f := findFileArg(args[0])
	if f == nil {
		return -1
	}

	dest := hostName(f)
	if len(args) == 2 {
		dest = args[1]
	}

	if err := os.WriteFile(dest, f.Content, 0644); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("Extracted %s to %s\n", f, dest)

	return 0
}

func shellPut(args []string) int {
	v := currentVolume()

	content, err := os.ReadFile(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	var load, exec uint32
	if len(args) >= 3 {
		if load, err = parseAddr(args[2]); err != nil {
			os.Stderr.WriteString("Bad load address\n")
			return -1
		}
		exec = load
	}
	if len(args) == 4 {
		if exec, err = parseAddr(args[3]); err != nil {
			os.Stderr.WriteString("Bad exec address\n")
			return -1
		}
	}

	dir, name := splitFileSpec(args[1])
	f, err := dfs.NewFile(dir, name, load, exec, false, content)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	old, err := v.Disc.AddFile(f)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	if old != nil {
		fmt.Printf("Replaced %s\n", old)
	}
	v.Disc.IncrementCycle()
	v.Dirty = true
	fmt.Printf("Added %s\n", f)

	return 0
}

func shellRm(args []string) int {
	v := currentVolume()
	dir, name := splitFileSpec(args[0])

	f := v.Disc.RemoveFile(name, dir)
	if f == nil {
		os.Stderr.WriteString(fmt.Sprintf("No file %c.%s\n", dir, name))
		return -1
	}
	v.Disc.IncrementCycle()
	v.Dirty = true
	fmt.Printf("Removed %s\n", f)

	return 0
}

func setLock(spec string, locked bool) int {
	f := findFileArg(spec)
	if f == nil {
		return -1
	}
	f.Locked = locked
	currentVolume().Dirty = true
	return 0
}

func shellLock(args []string) int {
	return setLock(args[0], true)
}

func shellUnlock(args []string) int {
	return setLock(args[0], false)
}

func shellTitle(args []string) int {
	v := currentVolume()
	if err := v.Disc.SetName(args[0]); err != nil {
		os.Stderr.WriteString("Disc names are up to 12 printing characters\n")
		return -1
	}
	v.Dirty = true
	return 0
}

func shellOpt(args []string) int {
	v := currentVolume()
	boot, err := dfs.ParseBootOption(args[0])
	if err != nil {
		os.Stderr.WriteString("Boot option is none, load, run or exec\n")
		return -1
	}
	v.Disc.SetBootOption(boot)
	v.Dirty = true
	return 0
}

func shellSave(args []string) int {
	v := currentVolume()

	dest := v.Filename
	if len(args) == 1 {
		dest = args[0]
	}

	sectors, err := writeDisc(v.Disc, dest)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	v.Dirty = false
	fmt.Printf("Wrote %s (%d sectors)\n", dest, sectors)

	return 0
}

func shellHelp(args []string) int {
	names := make([]string, 0, len(commandList))
	for name := range commandList {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-8s %s\n", name, commandList[name].Description)
	}
	return 0
}

func shellQuit(args []string) int {
	for _, v := range commandVolumes {
		if v != nil && v.Dirty {
			os.Stderr.WriteString(fmt.Sprintf("%s has unsaved changes\n", filepath.Base(v.Filename)))
		}
	}
	return 999
}
