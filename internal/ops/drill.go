package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type DrillResult struct {
	Archive    string
	RestoreDir string
	Digest     string
}

// Drill backs up dataDir, restores the archive under workDir and checks that
// both trees hash the same.
func Drill(dataDir, workDir string, now time.Time) (DrillResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return DrillResult{}, err
	}
	ts := now.UTC().Format("20060102T150405Z")
	res := DrillResult{
		Archive:    filepath.Join(workDir, "taskreward-drill-"+ts+".tar.gz"),
		RestoreDir: filepath.Join(workDir, "taskreward-drill-restore-"+ts),
	}

	if _, err := Backup(dataDir, res.Archive); err != nil {
		return res, err
	}
	if _, err := Restore(res.Archive, res.RestoreDir, false); err != nil {
		return res, err
	}

	srcDigest, err := DirDigest(dataDir)
	if err != nil {
		return res, err
	}
	restoreDigest, err := DirDigest(res.RestoreDir)
	if err != nil {
		return res, err
	}
	if srcDigest != restoreDigest {
		return res, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}
	res.Digest = srcDigest
	return res, nil
}

// DirDigest hashes every regular file's relative path and contents in
// sorted order.
func DirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
