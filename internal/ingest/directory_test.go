package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/study-notebook/constants"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Biology", "p1.png"), "page one")
	writeFile(t, filepath.Join(root, "Biology", "p2.JPG"), "page two")
	writeFile(t, filepath.Join(root, "Biology", "p2-copy.jpg"), "page two")
	writeFile(t, filepath.Join(root, "History", "IMG_0001.HEIC"), "heic")
	writeFile(t, filepath.Join(root, "History", "notes.txt"), "not a page")
	writeFile(t, filepath.Join(root, ".trash", "old.png"), "hidden")
	writeFile(t, filepath.Join(root, "History", ".p0.png"), "hidden file")

	pages, stats, err := ScanDirectory(context.Background(), root, nil, true)
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if stats.Matched != 4 || stats.Succeeded != 4 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	byName := map[string]PageFile{}
	for _, p := range pages {
		byName[filepath.Base(p.Path)] = p
	}
	if p := byName["IMG_0001.HEIC"]; p.Format != constants.HEIC || p.Archive != "History" {
		t.Errorf("heic page = %+v", p)
	}
	if p := byName["p1.png"]; p.Format != constants.IMAGE || p.Archive != "Biology" || p.Size != 8 || len(p.HashHex) != 64 {
		t.Errorf("png page = %+v", p)
	}
	if byName["p2-copy.jpg"].Deduplicated == byName["p2.JPG"].Deduplicated {
		t.Error("exactly one of the identical pages should be marked deduplicated")
	}
	if _, ok := byName["old.png"]; ok {
		t.Error("hidden directory was scanned")
	}
	if _, ok := byName[".p0.png"]; ok {
		t.Error("hidden file was scanned")
	}
}

func TestScanDirectoryIncludeExts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "a")
	writeFile(t, filepath.Join(root, "b.tiff"), "b")
	writeFile(t, filepath.Join(root, ".c.png"), "c")

	pages, stats, err := ScanDirectory(context.Background(), root, []string{".TIFF", " png "}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 3 || stats.Matched != 3 {
		t.Errorf("pages = %d stats = %+v", len(pages), stats)
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	if _, _, err := ScanDirectory(context.Background(), " ", nil, false); err == nil {
		t.Error("expected error for empty root")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := ScanDirectory(ctx, t.TempDir(), nil, false); err == nil {
		t.Error("expected error for canceled context")
	}
	pages, stats, err := ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, false)
	if err != nil || stats.Failed != 1 || len(pages) != 1 || pages[0].Err == "" {
		t.Errorf("missing root: pages=%v stats=%+v err=%v", pages, stats, err)
	}
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.png"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, SkipHidden: true})
	if err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}

	want := map[string]bool{
		filepath.Join(root, "existing.png"): false,
		filepath.Join(root, "new.jpg"):      false,
	}
	writeFile(t, filepath.Join(root, "ignored.txt"), "x")
	writeFile(t, filepath.Join(root, "new.jpg"), "y")

	deadline := time.After(5 * time.Second)
	for seen := 0; seen < len(want); {
		select {
		case p := <-events:
			if _, ok := want[p]; !ok {
				t.Fatalf("unexpected event %s", p)
			}
			if !want[p] {
				want[p] = true
				seen++
			}
		case <-deadline:
			t.Fatalf("timed out, seen = %v", want)
		}
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected error")
	}
}
