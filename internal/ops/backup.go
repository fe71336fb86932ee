// Package ops archives and restores the local data directory.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrTargetNotEmpty = errors.New("restore target is not empty")

// Result describes a written archive.
type Result struct {
	Path  string
	Files int
	Bytes int64
}

// ArchiveName is the default file name for a backup taken at now.
func ArchiveName(now time.Time) string {
	return "taskreward-" + now.UTC().Format("20060102T150405Z") + ".tar.gz"
}

func Backup(srcDir, archivePath string) (Result, error) {
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	res := Result{Path: archivePath}
	if srcDir == "" || archivePath == "" {
		return res, fmt.Errorf("srcDir and archivePath are required")
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return res, err
	}
	if !info.IsDir() {
		return res, fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return res, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return res, err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		n, err := io.Copy(tw, src)
		if err != nil {
			return err
		}
		res.Files++
		res.Bytes += n
		return nil
	})

	// Close in order so the gzip trailer lands after the tar footer.
	if err := errors.Join(walkErr, tw.Close(), gz.Close(), f.Close()); err != nil {
		_ = os.Remove(archivePath)
		return Result{Path: archivePath}, err
	}
	return res, nil
}

// Restore unpacks an archive into targetDir. Unless overwrite is set the
// target must be missing or empty.
func Restore(archivePath, targetDir string, overwrite bool) (int, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return 0, fmt.Errorf("archivePath and targetDir are required")
	}
	if !overwrite {
		entries, err := os.ReadDir(targetDir)
		if err != nil && !os.IsNotExist(err) {
			return 0, err
		}
		if len(entries) > 0 {
			return 0, fmt.Errorf("%w: %s", ErrTargetNotEmpty, targetDir)
		}
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return 0, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer gz.Close()

	files := 0
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return files, err
		}

		rel, err := sanitizeArchiveRelPath(hdr.Name)
		if err != nil {
			return files, err
		}
		outPath := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return files, err
			}
			dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return files, err
			}
			if _, err := io.Copy(dst, tr); err != nil {
				_ = dst.Close()
				return files, err
			}
			if err := dst.Close(); err != nil {
				return files, err
			}
			files++
		}
	}
	return files, nil
}

func sanitizeArchiveRelPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if strings.HasPrefix(name, ".."+string(filepath.Separator)) || name == ".." {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return name, nil
}
