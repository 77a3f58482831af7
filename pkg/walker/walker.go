// Package walker enumerates candidate image files under a root
// directory, classifies each one, and routes matches to a logging and
// optional copy sink.
//
// Two traversal policies are supported. ScanTree visits every regular
// file in the tree whose name ends with a given extension. ScanBatches
// inspects only the immediate child directories of the root, selects
// those whose names encode a capture date inside a requested range, and
// descends into a fixed pair of subfolders looking for cover scans.
//
// Sibling visit order is traversal-order-dependent and not guaranteed
// to be sorted.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/color-finder/internal/utils"
	"github.com/menta2k/color-finder/pkg/classifier"
)

// Fixed conventions for batch scans: only these subfolders of a batch
// folder are descended into, and candidate files must carry the cover
// marker in their name.
const (
	coverMarker = "Cover"
	coverExt    = ".tif"
)

var batchSubdirs = [2]string{"undatabased", "databased"}

// CollisionPolicy decides what happens when a matched file's base name
// already exists in the destination directory.
type CollisionPolicy int

const (
	// CollisionRename writes the copy under a numeric-suffixed name.
	CollisionRename CollisionPolicy = iota
	// CollisionOverwrite replaces the existing file.
	CollisionOverwrite
	// CollisionSkip leaves the existing file and drops the copy.
	CollisionSkip
)

// ParseCollisionPolicy resolves a policy name from configuration.
func ParseCollisionPolicy(name string) (CollisionPolicy, error) {
	switch strings.ToLower(name) {
	case "rename":
		return CollisionRename, nil
	case "overwrite":
		return CollisionOverwrite, nil
	case "skip":
		return CollisionSkip, nil
	default:
		return 0, fmt.Errorf("unknown collision policy %q (want rename, overwrite, or skip)", name)
	}
}

func (p CollisionPolicy) String() string {
	switch p {
	case CollisionOverwrite:
		return "overwrite"
	case CollisionSkip:
		return "skip"
	default:
		return "rename"
	}
}

// Options configure a walk.
type Options struct {
	// Color is the registered color name to classify against.
	Color string
	// LowerBound and UpperBound are percentages; a file matches when
	// its classified percentage lies strictly between them.
	LowerBound float64
	UpperBound float64
	// DestDir, when non-empty, receives a flat copy of every matched
	// file under its base name.
	DestDir   string
	Collision CollisionPolicy
	// OnMatch, when non-nil, is invoked for every match as it is found.
	OnMatch func(Match)
}

// Match is a file whose classified percentage fell inside the window.
type Match struct {
	Path       string
	Percentage float64
}

// Summary counts what a single pass did.
type Summary struct {
	Scanned int
	Matches int
	Copied  int
	Errors  int
}

// Walker drives a classifier over a directory tree.
type Walker struct {
	classifier *classifier.Classifier
	log        *logrus.Logger
	opts       Options
}

// New creates a Walker. The logger is required; it is configured by the
// caller and never reconfigured here.
func New(c *classifier.Classifier, log *logrus.Logger, opts Options) *Walker {
	return &Walker{classifier: c, log: log, opts: opts}
}

// ScanTree runs the flat filetype policy: every regular file under root
// whose lowercased name ends with ext is classified. Returns the
// summary of the pass; the error is non-nil only for fatal conditions
// (unreadable root, cancellation).
func (w *Walker) ScanTree(ctx context.Context, root, ext string) (Summary, error) {
	if !utils.DirExists(root) {
		return Summary{}, fmt.Errorf("base directory %s does not exist", root)
	}

	var sum Summary
	accept := func(name string) bool {
		return utils.HasSuffixFold(name, ext)
	}
	if err := w.walkTree(ctx, root, accept, &sum); err != nil {
		return sum, err
	}

	w.logSummary(sum)
	return sum, nil
}

// ScanBatches runs the dated-folder policy: immediate child directories
// of root whose names encode a date inside [start, end] are treated as
// batch folders, and their undatabased/databased subfolders are scanned
// for cover TIFFs.
func (w *Walker) ScanBatches(ctx context.Context, root string, start, end time.Time) (Summary, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read batch root: %w", err)
	}

	var sum Summary
	accept := func(name string) bool {
		return strings.Contains(name, coverMarker) && utils.HasSuffixFold(name, coverExt)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date, ok := parseBatchDate(entry.Name())
		if !ok {
			// Non-conforming folder names are excluded, not errors.
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}

		w.log.WithFields(logrus.Fields{
			"folder": entry.Name(),
			"date":   date.Format("20060102"),
		}).Info("Scanning batch folder")

		for _, sub := range batchSubdirs {
			dir := filepath.Join(root, entry.Name(), sub)
			if !utils.DirExists(dir) {
				continue
			}
			if err := w.walkTree(ctx, dir, accept, &sum); err != nil {
				return sum, err
			}
		}
	}

	w.logSummary(sum)
	return sum, nil
}

// parseBatchDate extracts the capture date from a batch folder name.
// The name is split on underscores and the second segment must be an
// 8-digit YYYYMMDD date.
func parseBatchDate(name string) (time.Time, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	seg := parts[1]
	if len(seg) != 8 {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", seg)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// walkTree visits every regular file under root depth-first using an
// explicit work list, so arbitrarily deep trees cannot exhaust the call
// stack. Unreadable directories are logged and skipped. The context is
// checked once per file.
func (w *Walker) walkTree(ctx context.Context, root string, accept func(string) bool, sum *Summary) error {
	dirs := []string{root}

	for len(dirs) > 0 {
		dir := dirs[len(dirs)-1]
		dirs = dirs[:len(dirs)-1]

		w.log.WithField("dir", dir).Debug("Processing directory")

		entries, err := os.ReadDir(dir)
		if err != nil {
			sum.Errors++
			w.log.WithError(err).WithField("dir", dir).Warn("Skipping unreadable directory")
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				dirs = append(dirs, path)
				continue
			}
			if !entry.Type().IsRegular() || !accept(entry.Name()) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			w.processFile(path, sum)
		}
	}
	return nil
}

// processFile classifies one candidate and routes it to the match sink.
// Classification and copy failures are terminal for the file only.
func (w *Walker) processFile(path string, sum *Summary) {
	sum.Scanned++

	pct, err := w.classifier.Classify(path, w.opts.Color)
	if err != nil {
		sum.Errors++
		w.log.WithError(err).WithField("path", path).Error("Error processing image")
		return
	}

	// Strict on both sides: a percentage equal to a bound is not a match.
	if !(w.opts.LowerBound < pct && pct < w.opts.UpperBound) {
		return
	}
	sum.Matches++
	if w.opts.OnMatch != nil {
		w.opts.OnMatch(Match{Path: path, Percentage: pct})
	}

	w.log.WithFields(logrus.Fields{
		"path":       path,
		"color":      w.opts.Color,
		"percentage": fmt.Sprintf("%.2f", pct),
		"lower":      w.opts.LowerBound,
		"upper":      w.opts.UpperBound,
	}).Info("Image matches color window")

	if w.opts.DestDir == "" {
		return
	}
	copied, err := w.copyMatch(path)
	if err != nil {
		sum.Errors++
		w.log.WithError(err).WithField("path", path).Error("Error saving image")
	} else if copied {
		sum.Copied++
	}
}

// copyMatch copies a matched file into the destination directory under
// its base name, applying the configured collision policy. It reports
// whether a copy was actually written.
func (w *Walker) copyMatch(path string) (bool, error) {
	dest := filepath.Join(w.opts.DestDir, filepath.Base(path))

	if utils.FileExists(dest) {
		switch w.opts.Collision {
		case CollisionSkip:
			w.log.WithField("dest", dest).Debug("Destination exists, skipping copy")
			return false, nil
		case CollisionRename:
			dest = utils.UniquePath(dest)
		}
	}

	if err := utils.CopyFile(path, dest); err != nil {
		return false, err
	}
	w.log.WithField("dest", dest).Info("Saved image")
	return true, nil
}

// logSummary emits the end-of-run totals once per pass.
func (w *Walker) logSummary(sum Summary) {
	w.log.WithFields(logrus.Fields{
		"scanned": sum.Scanned,
		"matches": sum.Matches,
		"copied":  sum.Copied,
		"errors":  sum.Errors,
		"color":   w.opts.Color,
		"lower":   w.opts.LowerBound,
		"upper":   w.opts.UpperBound,
	}).Info("Scan complete")
}
