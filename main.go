package main

/*
dfsdisc is a command line tool for working with Acorn DFS disc images
(.ssd): probing and cataloging them, unpacking a disc to a directory
tree with an XML manifest, packing that tree back into a byte-exact
image, and an interactive shell for editing mounted images.
*/

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beebtools/dfsdisc/dfs"
	"github.com/beebtools/dfsdisc/loggy"
	"github.com/beebtools/dfsdisc/panic"
)

func binpath() string {

	if runtime.GOOS == "windows" {
		return os.Getenv("USERPROFILE") + "/DFSDisc"
	}
	return os.Getenv("HOME") + "/DFSDisc"

}

func init() {
	loggy.LogFolder = binpath() + "/logs/"
}

// readImage loads a disc image from a file, or from stdin when path is
// "-". Anything beyond MAX_DISC_SIZE cannot be a DFS image and is
// rejected before decoding.
func readImage(path string) ([]byte, error) {

	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, dfs.MAX_DISC_SIZE+1))
		if err != nil {
			return nil, err
		}
		if len(data) > dfs.MAX_DISC_SIZE {
			return nil, fmt.Errorf("input larger than %d bytes", dfs.MAX_DISC_SIZE)
		}
		return data, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > dfs.MAX_DISC_SIZE {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, dfs.MAX_DISC_SIZE)
	}

	return os.ReadFile(path)
}

func probe(path string) error {

	data, err := readImage(path)
	if err != nil {
		return err
	}

	disc, err := dfs.FromBytes(data)
	if err != nil {
		return fmt.Errorf("bad image %s: %v", path, err)
	}

	fmt.Printf("Opened disc %s\n", disc.Name())
	fmt.Printf("Boot option %s, cycle %s, %d sectors declared\n",
		disc.BootOption(), disc.Cycle(), disc.Sectors())
	fmt.Println("Files:")
	for _, file := range disc.Files() {
		fmt.Printf("  %s\n", file)
	}

	return nil
}

// run wraps a command body in the crash handler so a malformed image
// produces a logged failure rather than a bare stack trace.
func run(body func() error) error {
	err := fmt.Errorf("command did not complete")
	panic.Do(
		func() {
			err = body()
		},
		func(r interface{}) {
			l := loggy.Get(0)
			l.Errorf("panic: %v", r)
			l.Errorf(string(debug.Stack()))
			err = fmt.Errorf("internal error: %v", r)
		},
	)
	return err
}

func main() {

	var verbose bool

	root := &cobra.Command{
		Use:   "dfsdisc",
		Short: "Perform operations with Acorn DFS disc images",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			loggy.ECHO = verbose
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	probeCmd := &cobra.Command{
		Use:   "probe <image>",
		Short: "Decode a disc image and list its catalog ('-' for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func() error { return probe(args[0]) })
		},
	}

	var unpackOut string
	unpackCmd := &cobra.Command{
		Use:   "unpack <image>",
		Short: "Extract a disc image to a directory tree with a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func() error {
				data, err := readImage(args[0])
				if err != nil {
					return err
				}
				disc, err := dfs.FromBytes(data)
				if err != nil {
					return fmt.Errorf("bad image %s: %v", args[0], err)
				}
				out := unpackOut
				if out == "" {
					out = strings.TrimSuffix(args[0], ".ssd") + ".unpacked"
				}
				return unpackDisc(disc, out)
			})
		},
	}
	unpackCmd.Flags().StringVarP(&unpackOut, "out", "o", "", "output directory")

	var packOut string
	packCmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Build a disc image from an unpacked directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func() error {
				disc, err := packDisc(args[0])
				if err != nil {
					return err
				}
				out := packOut
				if out == "" {
					out = strings.TrimSuffix(args[0], ".unpacked") + ".ssd"
				}
				sectors, err := writeDisc(disc, out)
				if err != nil {
					return err
				}
				fmt.Printf("Wrote %s: %d files, %d sectors\n", out, disc.Len(), sectors)
				return nil
			})
		},
	}
	packCmd.Flags().StringVarP(&packOut, "out", "o", "", "output image file")

	shellCmd := &cobra.Command{
		Use:   "shell [image...]",
		Short: "Interactive shell over mounted disc images",
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func() error {
				shellDo(args)
				return nil
			})
		},
	}

	root.AddCommand(probeCmd, unpackCmd, packCmd, shellCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
