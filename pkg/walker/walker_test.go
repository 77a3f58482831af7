package walker

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/tiff"

	"github.com/menta2k/color-finder/pkg/classifier"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// redFraction builds a 100x100 image whose top fraction of rows is
// pure red and the rest black, so the classified percentage is exact.
func redFraction(percent int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if y < percent {
				img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func uniform(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	var encErr error
	switch filepath.Ext(path) {
	case ".tif":
		encErr = tiff.Encode(f, img, nil)
	default:
		encErr = png.Encode(f, img)
	}
	if encErr != nil {
		t.Fatalf("encode %s: %v", path, encErr)
	}
}

func newWalker(opts Options) *Walker {
	return New(classifier.New(), testLogger(), opts)
}

func TestScanTreeEndToEnd(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()

	writeImage(t, filepath.Join(root, "a", "red1.png"), redFraction(75))
	writeImage(t, filepath.Join(root, "a", "b", "green1.png"), uniform(color.NRGBA{0, 255, 0, 255}))

	var matches []Match
	w := newWalker(Options{
		Color:      "red",
		LowerBound: 50,
		UpperBound: 100,
		DestDir:    dest,
		OnMatch:    func(m Match) { matches = append(matches, m) },
	})

	sum, err := w.ScanTree(context.Background(), root, ".png")
	if err != nil {
		t.Fatalf("ScanTree failed: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("Expected 1 match callback, got %d", len(matches))
	}
	if filepath.Base(matches[0].Path) != "red1.png" {
		t.Errorf("Expected red1.png to match, got %s", matches[0].Path)
	}
	if matches[0].Percentage <= 50 || matches[0].Percentage >= 100 {
		t.Errorf("Match percentage %.2f outside (50,100)", matches[0].Percentage)
	}

	if sum.Scanned != 2 {
		t.Errorf("Expected 2 files scanned, got %d", sum.Scanned)
	}
	if sum.Matches != 1 {
		t.Errorf("Expected 1 match, got %d", sum.Matches)
	}
	if sum.Copied != 1 {
		t.Errorf("Expected 1 copy, got %d", sum.Copied)
	}
	if sum.Errors != 0 {
		t.Errorf("Expected no errors, got %d", sum.Errors)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "red1.png" {
		t.Errorf("Expected dest to hold red1.png only, got %v", entries)
	}
}

func TestScanTreeExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()

	writeImage(t, filepath.Join(root, "SHOUTY.PNG"), redFraction(75))

	w := newWalker(Options{Color: "red", LowerBound: 50, UpperBound: 100})

	sum, err := w.ScanTree(context.Background(), root, ".png")
	if err != nil {
		t.Fatalf("ScanTree failed: %v", err)
	}
	if sum.Scanned != 1 || sum.Matches != 1 {
		t.Errorf("Expected uppercase extension to be scanned and matched, got %+v", sum)
	}
}

func TestThresholdStrictlyExclusive(t *testing.T) {
	tests := []struct {
		name    string
		percent int
	}{
		{"equal to upper bound", 100},
		{"equal to lower bound", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeImage(t, filepath.Join(root, "edge.png"), redFraction(tt.percent))

			w := newWalker(Options{Color: "red", LowerBound: 50, UpperBound: 100})

			sum, err := w.ScanTree(context.Background(), root, ".png")
			if err != nil {
				t.Fatalf("ScanTree failed: %v", err)
			}
			if sum.Matches != 0 {
				t.Errorf("Percentage %d with bounds (50,100) must not match", tt.percent)
			}
		})
	}
}

func TestScanTreeUnknownColorContinues(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "red1.png"), redFraction(75))

	w := newWalker(Options{Color: "chartreuse", LowerBound: 50, UpperBound: 100})

	sum, err := w.ScanTree(context.Background(), root, ".png")
	if err != nil {
		t.Fatalf("Unknown color must not abort the walk: %v", err)
	}
	if sum.Errors != 1 {
		t.Errorf("Expected 1 error recorded, got %d", sum.Errors)
	}
	if sum.Matches != 0 {
		t.Errorf("Expected no matches for unknown color, got %d", sum.Matches)
	}
}

func TestScanTreeCorruptFileContinues(t *testing.T) {
	root := t.TempDir()

	writeImage(t, filepath.Join(root, "good.png"), redFraction(75))
	if err := os.WriteFile(filepath.Join(root, "bad.png"), []byte("junk"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	w := newWalker(Options{Color: "red", LowerBound: 50, UpperBound: 100})

	sum, err := w.ScanTree(context.Background(), root, ".png")
	if err != nil {
		t.Fatalf("Corrupt file must not abort the walk: %v", err)
	}
	if sum.Scanned != 2 {
		t.Errorf("Expected 2 files scanned, got %d", sum.Scanned)
	}
	if sum.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", sum.Errors)
	}
	if sum.Matches != 1 {
		t.Errorf("Expected the good file to still match, got %d", sum.Matches)
	}
}

func TestScanTreeMissingRoot(t *testing.T) {
	w := newWalker(Options{Color: "red", LowerBound: 50, UpperBound: 100})

	if _, err := w.ScanTree(context.Background(), filepath.Join(t.TempDir(), "absent"), ".png"); err == nil {
		t.Error("Expected error for missing root directory")
	}
}

func TestScanTreeCancelled(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "red1.png"), redFraction(75))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newWalker(Options{Color: "red", LowerBound: 50, UpperBound: 100})

	if _, err := w.ScanTree(ctx, root, ".png"); err == nil {
		t.Error("Expected cancellation error")
	}
}

func TestParseBatchDate(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"CP1_20240115_BATCH", "20240115", true},
		{"CP1_20240115", "20240115", true},
		{"CP1", "", false},
		{"", "", false},
		{"CP1_2024011_BATCH", "", false},
		{"CP1_ABCDEFGH_BATCH", "", false},
		{"CP1_20241301_BATCH", "", false},
	}

	for _, tt := range tests {
		date, ok := parseBatchDate(tt.name)
		if ok != tt.ok {
			t.Errorf("parseBatchDate(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && date.Format("20060102") != tt.want {
			t.Errorf("parseBatchDate(%q) = %s, want %s", tt.name, date.Format("20060102"), tt.want)
		}
	}
}

func TestScanBatches(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()

	// In range, cover file matches.
	writeImage(t, filepath.Join(root, "CP1_20240115_BATCH", "undatabased", "Scan_Cover_001.tif"), redFraction(75))
	// In range but no Cover marker in the name.
	writeImage(t, filepath.Join(root, "CP1_20240115_BATCH", "databased", "Scan_001.tif"), redFraction(75))
	// Lowercase marker is not accepted.
	writeImage(t, filepath.Join(root, "CP1_20240115_BATCH", "databased", "scan_cover_002.tif"), redFraction(75))
	// Outside the fixed subfolders.
	writeImage(t, filepath.Join(root, "CP1_20240115_BATCH", "other", "Extra_Cover.tif"), redFraction(75))
	// Out of date range.
	writeImage(t, filepath.Join(root, "CP2_20231215_BATCH", "undatabased", "Old_Cover.tif"), redFraction(75))
	// Non-conforming folder name, silently excluded.
	writeImage(t, filepath.Join(root, "scratch", "Stray_Cover.tif"), redFraction(75))

	start, _ := time.Parse("20060102", "20240101")
	end, _ := time.Parse("20060102", "20240131")

	w := newWalker(Options{
		Color:      "red",
		LowerBound: 50,
		UpperBound: 100,
		DestDir:    dest,
	})

	sum, err := w.ScanBatches(context.Background(), root, start, end)
	if err != nil {
		t.Fatalf("ScanBatches failed: %v", err)
	}

	if sum.Scanned != 1 {
		t.Errorf("Expected exactly 1 candidate file, got %d", sum.Scanned)
	}
	if sum.Matches != 1 {
		t.Errorf("Expected 1 match, got %d", sum.Matches)
	}
	if sum.Copied != 1 {
		t.Errorf("Expected 1 copy, got %d", sum.Copied)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Scan_Cover_001.tif" {
		t.Errorf("Expected dest to hold Scan_Cover_001.tif only, got %v", entries)
	}
}

func TestScanBatchesBoundaryDatesInclusive(t *testing.T) {
	root := t.TempDir()

	writeImage(t, filepath.Join(root, "CP1_20240101_A", "databased", "First_Cover.tif"), redFraction(75))
	writeImage(t, filepath.Join(root, "CP2_20240131_B", "databased", "Last_Cover.tif"), redFraction(75))

	start, _ := time.Parse("20060102", "20240101")
	end, _ := time.Parse("20060102", "20240131")

	w := newWalker(Options{Color: "red", LowerBound: 50, UpperBound: 100})

	sum, err := w.ScanBatches(context.Background(), root, start, end)
	if err != nil {
		t.Fatalf("ScanBatches failed: %v", err)
	}
	if sum.Scanned != 2 || sum.Matches != 2 {
		t.Errorf("Both boundary dates should be included, got %+v", sum)
	}
}

func TestCollisionRename(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()

	writeImage(t, filepath.Join(root, "a", "dup.png"), redFraction(75))
	writeImage(t, filepath.Join(root, "b", "dup.png"), redFraction(60))

	w := newWalker(Options{
		Color:      "red",
		LowerBound: 50,
		UpperBound: 100,
		DestDir:    dest,
		Collision:  CollisionRename,
	})

	sum, err := w.ScanTree(context.Background(), root, ".png")
	if err != nil {
		t.Fatalf("ScanTree failed: %v", err)
	}
	if sum.Copied != 2 {
		t.Errorf("Expected 2 copies, got %d", sum.Copied)
	}

	names := map[string]bool{}
	entries, _ := os.ReadDir(dest)
	for _, e := range entries {
		names[e.Name()] = true
	}
	if !names["dup.png"] || !names["dup_1.png"] {
		t.Errorf("Expected dup.png and dup_1.png in dest, got %v", names)
	}
}

func TestCollisionSkip(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()

	writeImage(t, filepath.Join(root, "dup.png"), redFraction(75))

	marker := []byte("already here")
	if err := os.WriteFile(filepath.Join(dest, "dup.png"), marker, 0644); err != nil {
		t.Fatalf("write existing file: %v", err)
	}

	w := newWalker(Options{
		Color:      "red",
		LowerBound: 50,
		UpperBound: 100,
		DestDir:    dest,
		Collision:  CollisionSkip,
	})

	sum, err := w.ScanTree(context.Background(), root, ".png")
	if err != nil {
		t.Fatalf("ScanTree failed: %v", err)
	}
	if sum.Matches != 1 {
		t.Errorf("Expected 1 match, got %d", sum.Matches)
	}
	if sum.Copied != 0 {
		t.Errorf("Skip policy must not count a copy, got %d", sum.Copied)
	}

	data, err := os.ReadFile(filepath.Join(dest, "dup.png"))
	if err != nil {
		t.Fatalf("read dest file: %v", err)
	}
	if string(data) != string(marker) {
		t.Error("Skip policy must leave the existing file untouched")
	}
}

func TestParseCollisionPolicy(t *testing.T) {
	for name, want := range map[string]CollisionPolicy{
		"rename":    CollisionRename,
		"overwrite": CollisionOverwrite,
		"Skip":      CollisionSkip,
	} {
		got, err := ParseCollisionPolicy(name)
		if err != nil {
			t.Errorf("ParseCollisionPolicy(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseCollisionPolicy(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseCollisionPolicy("explode"); err == nil {
		t.Error("Expected error for unknown policy name")
	}
}
