package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkgarchive/packer/internal/archive"
	"github.com/pkgarchive/packer/internal/driver"
)

const unpackHelp = `packer unpack [-flags] -input-path=<archive> -output-path=<dir>

Extract an archive into an existing directory.

Example:
  % packer unpack -input-path=out.bag -output-path=extracted/
`

func cmdunpack(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("unpack", flag.ExitOnError)
	fset.Usage = func() {
		fmt.Fprint(os.Stderr, unpackHelp)
		fset.PrintDefaults()
	}
	inputPath := fset.String("input-path", "", "path of the archive to extract (must be an existing regular file)")
	outputPath := fset.String("output-path", "", "directory to extract into (must already exist)")
	if err := fset.Parse(args); err != nil {
		return err
	}

	if *inputPath == "" || *outputPath == "" {
		fset.Usage()
		os.Exit(2)
	}

	in, err := os.Stat(*inputPath)
	if err != nil {
		return &archive.ConfigError{Reason: fmt.Sprintf("input %q: %v", *inputPath, err)}
	}
	if !in.Mode().IsRegular() {
		return &archive.ConfigError{Reason: fmt.Sprintf("input %q is not a regular file", *inputPath)}
	}

	out, err := os.Stat(*outputPath)
	if err != nil {
		return &archive.ConfigError{Reason: fmt.Sprintf("output %q: %v", *outputPath, err)}
	}
	if !out.IsDir() {
		return &archive.ConfigError{Reason: fmt.Sprintf("output %q is not a directory", *outputPath)}
	}

	b, err := resolveBackend(*format)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}

	return driver.Unpack(log, b, *inputPath, *outputPath)
}
