package driver_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgarchive/packer/internal/backend"
	"github.com/pkgarchive/packer/internal/backend/bag"
	"github.com/pkgarchive/packer/internal/backend/tar"
	"github.com/pkgarchive/packer/internal/driver"
	"github.com/pkgarchive/packer/internal/logging"
)

func discardLogger() *logging.Logger {
	return logging.New(io.Discard, logging.LevelTrace, 0)
}

func backends() map[string]backend.Backend {
	return map[string]backend.Backend{
		"bag": bag.New(),
		"tar": tar.New(),
	}
}

func writeFile(t *testing.T, path string, content []byte, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, content, mode); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("Chmod(%s): %v", path, err)
	}
}

func TestRoundTripSingleFile(t *testing.T) {
	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "src")
			out := t.TempDir()
			if err := os.Mkdir(src, 0o755); err != nil {
				t.Fatal(err)
			}
			helloPath := filepath.Join(src, "hello.txt")
			writeFile(t, helloPath, []byte("hello\n"), 0o644)

			archivePath := filepath.Join(dir, "archive")
			log := discardLogger()
			if err := driver.Pack(log, b, archivePath, []string{helloPath}); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if err := driver.Unpack(log, b, archivePath, out); err != nil {
				t.Fatalf("Unpack: %v", err)
			}

			got, err := os.ReadFile(filepath.Join(out, "hello.txt"))
			if err != nil {
				t.Fatalf("reading restored file: %v", err)
			}
			if !bytes.Equal(got, []byte("hello\n")) {
				t.Errorf("restored content = %q, want %q", got, "hello\n")
			}
		})
	}
}

func TestRoundTripDirectory(t *testing.T) {
	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "d")
			out := t.TempDir()
			if err := os.Mkdir(src, 0o755); err != nil {
				t.Fatal(err)
			}
			writeFile(t, filepath.Join(src, "a"), []byte("A"), 0o644)
			writeFile(t, filepath.Join(src, "b"), []byte("BB"), 0o644)

			archivePath := filepath.Join(dir, "archive")
			log := discardLogger()
			if err := driver.Pack(log, b, archivePath, []string{src}); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if err := driver.Unpack(log, b, archivePath, out); err != nil {
				t.Fatalf("Unpack: %v", err)
			}

			for file, want := range map[string]string{"a": "A", "b": "BB"} {
				got, err := os.ReadFile(filepath.Join(out, "d", file))
				if err != nil {
					t.Fatalf("reading restored %s: %v", file, err)
				}
				if string(got) != want {
					t.Errorf("restored %s = %q, want %q", file, got, want)
				}
			}
		})
	}
}

func TestRoundTripSymlink(t *testing.T) {
	// This round trip runs against BAG only; the TAR link-name field is
	// covered by the tar package's header tests.
	b := bag.New()
	dir := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(dir, "hello.txt"), []byte("hi\n"), 0o644)
	linkPath := filepath.Join(dir, "link")
	if err := os.Symlink("hello.txt", linkPath); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(dir, "archive")
	log := discardLogger()
	if err := driver.Pack(log, b, archivePath, []string{linkPath}); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := driver.Unpack(log, b, archivePath, out); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	target, err := os.Readlink(filepath.Join(out, "link"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "hello.txt" {
		t.Errorf("symlink target = %q, want %q", target, "hello.txt")
	}
}

func TestRoundTripEmptyFile(t *testing.T) {
	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			out := t.TempDir()
			path := filepath.Join(dir, "empty")
			writeFile(t, path, nil, 0o644)

			archivePath := filepath.Join(dir, "archive")
			log := discardLogger()
			if err := driver.Pack(log, b, archivePath, []string{path}); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if err := driver.Unpack(log, b, archivePath, out); err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			got, err := os.ReadFile(filepath.Join(out, "empty"))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Errorf("restored content length = %d, want 0", len(got))
			}
		})
	}
}

func TestRoundTripChunkBoundary(t *testing.T) {
	for _, size := range []int{8192, 8193} {
		for name, b := range backends() {
			t.Run(name, func(t *testing.T) {
				dir := t.TempDir()
				out := t.TempDir()
				path := filepath.Join(dir, "f")
				content := bytes.Repeat([]byte{0x5a}, size)
				writeFile(t, path, content, 0o644)

				archivePath := filepath.Join(dir, "archive")
				log := discardLogger()
				if err := driver.Pack(log, b, archivePath, []string{path}); err != nil {
					t.Fatalf("Pack: %v", err)
				}
				if err := driver.Unpack(log, b, archivePath, out); err != nil {
					t.Fatalf("Unpack: %v", err)
				}
				got, err := os.ReadFile(filepath.Join(out, "f"))
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got, content) {
					t.Errorf("restored %d-byte file differs from source", size)
				}
			})
		}
	}
}

func TestRoundTripDeeplyNestedDirectory(t *testing.T) {
	b := bag.New()
	dir := t.TempDir()
	out := t.TempDir()
	src := filepath.Join(dir, "root")
	deep := src
	for i := 0; i < 16; i++ {
		deep = filepath.Join(deep, "lvl")
	}
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(deep, "leaf.txt"), []byte("deep"), 0o644)

	archivePath := filepath.Join(dir, "archive")
	log := discardLogger()
	if err := driver.Pack(log, b, archivePath, []string{src}); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := driver.Unpack(log, b, archivePath, out); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	wantPath := filepath.Join(out, "root")
	for i := 0; i < 16; i++ {
		wantPath = filepath.Join(wantPath, "lvl")
	}
	got, err := os.ReadFile(filepath.Join(wantPath, "leaf.txt"))
	if err != nil {
		t.Fatalf("reading deeply nested restored file: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("restored content = %q, want %q", got, "deep")
	}
}

func TestRoundTripMultibytePathBAG(t *testing.T) {
	b := bag.New()
	dir := t.TempDir()
	out := t.TempDir()
	path := filepath.Join(dir, "héllo-wörld.txt")
	writeFile(t, path, []byte("x"), 0o644)

	archivePath := filepath.Join(dir, "archive")
	log := discardLogger()
	if err := driver.Pack(log, b, archivePath, []string{path}); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := driver.Unpack(log, b, archivePath, out); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "héllo-wörld.txt")); err != nil {
		t.Fatalf("restored multibyte-named file missing: %v", err)
	}
}

func TestModeRoundTrip(t *testing.T) {
	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			out := t.TempDir()
			path := filepath.Join(dir, "f")
			writeFile(t, path, []byte("x"), 0o741)

			archivePath := filepath.Join(dir, "archive")
			log := discardLogger()
			if err := driver.Pack(log, b, archivePath, []string{path}); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if err := driver.Unpack(log, b, archivePath, out); err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			fi, err := os.Stat(filepath.Join(out, "f"))
			if err != nil {
				t.Fatal(err)
			}
			if fi.Mode().Perm() != 0o741 {
				t.Errorf("restored mode = %v, want %v", fi.Mode().Perm(), os.FileMode(0o741))
			}
		})
	}
}

func TestUnpackTruncatedArchiveFails(t *testing.T) {
	b := bag.New()
	dir := t.TempDir()
	out := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, bytes.Repeat([]byte{1}, 10), 0o644)

	archivePath := filepath.Join(dir, "archive")
	log := discardLogger()
	if err := driver.Pack(log, b, archivePath, []string{path}); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	// Drop the 128-byte epilogue and the last 3 payload bytes, so the
	// archive ends in the middle of the 10-byte entry's payload.
	if err := os.Truncate(archivePath, info.Size()-128-3); err != nil {
		t.Fatal(err)
	}

	if err := driver.Unpack(log, b, archivePath, out); err == nil {
		t.Fatal("Unpack of truncated archive: want error, got nil")
	}
}
