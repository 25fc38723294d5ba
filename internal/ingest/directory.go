package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/study-notebook/constants"
)

// ScanDirectory walks root, filters by includeExts (or the default image
// set), skips hidden entries if requested and hashes each matching page.
// Pages whose content repeats an earlier one are marked Deduplicated.
// Results follow lexical walk order.
func ScanDirectory(ctx context.Context, root string, includeExts []string, skipHidden bool) ([]PageFile, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	exts := ExtSet(includeExts)
	seen := map[string]struct{}{}

	var results []PageFile
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, PageFile{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path, exts) {
			return nil
		}
		stats.Matched++

		page := PageFile{
			Path:    path,
			Archive: filepath.Base(filepath.Dir(path)),
			Format:  constants.MapExtToFormat(filepath.Ext(path)),
		}
		if page.Format == "" {
			// extension opted in through includeExts
			page.Format = constants.IMAGE
		}
		size, sum, err := hashFile(path)
		if err != nil {
			page.Err = err.Error()
			results = append(results, page)
			stats.Failed++
			return nil
		}
		page.Size, page.HashHex = size, sum
		if _, dup := seen[sum]; dup {
			page.Deduplicated = true
			stats.Deduplicated++
		}
		seen[sum] = struct{}{}
		results = append(results, page)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
