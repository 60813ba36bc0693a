// Command packer packs and unpacks archives in the BAG or simplified TAR
// format (see internal/backend/bag and internal/backend/tar).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/pkgarchive/packer/internal/backend"
	"github.com/pkgarchive/packer/internal/backend/bag"
	"github.com/pkgarchive/packer/internal/backend/tar"
	"github.com/pkgarchive/packer/internal/cliutil"
	"github.com/pkgarchive/packer/internal/logging"
)

var (
	format = flag.String("format", "bag", "archive format to use: bag or tar")
	level  = flag.String("level", "info", "log verbosity: error, warn, info, debug, trace")
	debug  = flag.Bool("debug", false, "format error messages with additional detail")
)

func resolveBackend(name string) (backend.Backend, error) {
	switch name {
	case "bag":
		return bag.New(), nil
	case "tar":
		return tar.New(), nil
	default:
		return nil, fmt.Errorf("unknown -format %q: want bag or tar", name)
	}
}

func newLogger() (*logging.Logger, error) {
	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		return nil, err
	}
	flags := 0
	if isatty.IsTerminal(os.Stderr.Fd()) {
		flags = log.Ltime
	}
	return logging.New(os.Stderr, lvl, flags), nil
}

func funcmain() error {
	flag.Parse()

	type cmd struct {
		fn func(ctx context.Context, args []string) error
	}
	verbs := map[string]cmd{
		"pack":   {cmdpack},
		"unpack": {cmdunpack},
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	verb, args := args[0], args[1:]

	if verb == "help" {
		printUsage()
		return nil
	}

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: packer <command> [options]\n")
		os.Exit(2)
	}

	ctx, canc := cliutil.InterruptibleContext()
	defer canc()

	if err := v.fn(ctx, args); err != nil {
		if *debug {
			return fmt.Errorf("%s: %+v", verb, err)
		}
		return fmt.Errorf("%s: %v", verb, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "packer [-flags] <command> [-flags] <args>\n")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "To get help on any command, use packer <command> -help.\n")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\tpack    - create an archive from one or more files or directories\n")
	fmt.Fprintf(os.Stderr, "\tunpack  - extract an archive into a directory\n")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Global flags:\n")
	flag.PrintDefaults()
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
