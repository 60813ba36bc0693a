package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkgarchive/packer/internal/driver"
)

const packHelp = `packer pack [-flags] -input-files <path> [<path>...]

Create an archive from one or more files or directories.

-input-files may be repeated and/or given a space-separated list in one go.

Example:
  % packer pack -input-files hello.txt -output-path=out.bag
  % packer -format=tar pack -input-files "a.txt b.txt" -output-path=out.tar
`

// fileList implements flag.Value for a flag that may be repeated
// (-input-files a -input-files b) or given a space-separated list in a
// single occurrence (-input-files "a b").
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, " ") }

func (f *fileList) Set(value string) error {
	*f = append(*f, strings.Fields(value)...)
	return nil
}

func cmdpack(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("pack", flag.ExitOnError)
	fset.Usage = func() {
		fmt.Fprint(os.Stderr, packHelp)
		fset.PrintDefaults()
	}
	var inputFiles fileList
	fset.Var(&inputFiles, "input-files", "path(s) to pack; repeatable or space-separated")
	outputPath := fset.String("output-path", "", "path to write the archive to")
	if err := fset.Parse(args); err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		fset.Usage()
		os.Exit(2)
	}
	if *outputPath == "" {
		fset.Usage()
		os.Exit(2)
	}

	b, err := resolveBackend(*format)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}

	return driver.Pack(log, b, *outputPath, []string(inputFiles))
}
