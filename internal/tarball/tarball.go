// Package tarball packs files into numbered, fixed-size tar archives and
// unpacks them again.
package tarball

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// DefaultFilesPerArchive is used when no chunk size is configured.
const DefaultFilesPerArchive = 100

// ErrUnsafePath is returned when an archive entry would be written outside
// the extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes the target directory")

// ArchiveName returns the file name of the n-th archive, counting from 1.
func ArchiveName(n int) string {
	return fmt.Sprintf("%08d.tar", n)
}

// Archive writes files into outDir as consecutive archives of at most
// perArchive files each, named 00000001.tar, 00000002.tar and so on. Entries
// are stored under their base names. It returns the archive paths in order.
func Archive(ctx context.Context, files []string, outDir string, perArchive int) ([]string, error) {
	if perArchive <= 0 {
		return nil, fmt.Errorf("files per archive must be positive, got %d", perArchive)
	}

	logger := ctxlog.FromContext(ctx)
	var archives []string
	for start, n := 0, 1; start < len(files); start, n = start+perArchive, n+1 {
		if err := ctx.Err(); err != nil {
			return archives, err
		}

		end := min(start+perArchive, len(files))
		path := filepath.Join(outDir, ArchiveName(n))
		if err := writeArchive(path, files[start:end]); err != nil {
			return archives, fmt.Errorf("write archive %s: %w", path, err)
		}
		logger.Debug("Archive written.", "archive", path, "files", end-start)
		archives = append(archives, path)
	}
	return archives, nil
}

func writeArchive(path string, files []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	tw := tar.NewWriter(f)
	for _, name := range files {
		if err := addFile(tw, name); err != nil {
			return err
		}
	}
	return tw.Close()
}

func addFile(tw *tar.Writer, name string) error {
	src, err := os.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(name)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, src)
	return err
}

// Extract unpacks every archive into outDir, in order. Directories and
// regular files are restored; other entry types are skipped.
func Extract(ctx context.Context, archives []string, outDir string) error {
	logger := ctxlog.FromContext(ctx)
	for _, path := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := extractArchive(path, outDir)
		if err != nil {
			return fmt.Errorf("extract archive %s: %w", path, err)
		}
		logger.Debug("Archive extracted.", "archive", path, "files", n)
	}
	return nil
}

func extractArchive(path, outDir string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	root, err := filepath.Abs(outDir)
	if err != nil {
		return 0, err
	}

	var count int
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		target, err := safeJoin(root, hdr.Name)
		if err != nil {
			return count, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return count, err
			}
			count++
		}
	}
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, r)
	return err
}
