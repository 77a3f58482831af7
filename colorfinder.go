// Package colorfinder finds images whose share of a named color falls
// inside a percentage window.
//
// Every image is decoded, resampled to a fixed 100x100 grid, and each
// sample is tested against the named color's inclusive RGB bounding
// box. A file matches when the resulting percentage lies strictly
// between the configured lower and upper bounds; matches are logged
// and optionally copied into a destination directory.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/sirupsen/logrus"
//
//		"github.com/menta2k/color-finder"
//		"github.com/menta2k/color-finder/pkg/walker"
//	)
//
//	func main() {
//		logger := logrus.New()
//		finder := colorfinder.New(logger)
//
//		// Score a single image.
//		pct, err := finder.Classify("photo.jpg", "red")
//		if err != nil {
//			log.Fatal(err)
//		}
//		logger.Infof("red: %.2f%%", pct)
//
//		// Scan a tree for images that are 50-100% red.
//		summary, err := finder.FindInTree(context.Background(), "./photos", ".png", walker.Options{
//			Color:      "red",
//			LowerBound: 50,
//			UpperBound: 100,
//			DestDir:    "./matches",
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		logger.Infof("%d of %d files matched", summary.Matches, summary.Scanned)
//	}
//
// The package consists of three main components:
//
// 1. Colorspec (pkg/colorspec): named RGB bounding boxes and their registry
// 2. Classifier (pkg/classifier): decode, resample, and percentage scoring
// 3. Walker (pkg/walker): directory traversal, threshold filter, copy sink
//
// Two traversal policies are available: a flat filetype scan over the
// whole tree, and a dated-batch scan that selects immediate child
// folders by the date encoded in their names and looks for cover TIFFs
// in their undatabased/databased subfolders.
package colorfinder

import (
	"context"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/color-finder/pkg/classifier"
	"github.com/menta2k/color-finder/pkg/colorspec"
	"github.com/menta2k/color-finder/pkg/walker"
)

// Version of the color finder library
const Version = "1.0.0"

// ColorFinder provides a high-level interface for color classification
// and directory scanning.
type ColorFinder struct {
	registry   *colorspec.Registry
	classifier *classifier.Classifier
	log        *logrus.Logger
}

// New creates a ColorFinder backed by the built-in color registry. The
// logger is configured by the caller; a nil logger gets a fresh default.
func New(log *logrus.Logger) *ColorFinder {
	return NewWithRegistry(colorspec.Default(), log)
}

// NewWithRegistry creates a ColorFinder backed by a custom registry.
func NewWithRegistry(registry *colorspec.Registry, log *logrus.Logger) *ColorFinder {
	if log == nil {
		log = logrus.New()
	}
	return &ColorFinder{
		registry:   registry,
		classifier: classifier.NewWithRegistry(registry),
		log:        log,
	}
}

// Classify returns the percentage of the image's resampled pixels that
// lie inside the named color's bounding box.
func (cf *ColorFinder) Classify(path, color string) (float64, error) {
	return cf.classifier.Classify(path, color)
}

// ClassifyImage classifies an already decoded image.
func (cf *ColorFinder) ClassifyImage(img image.Image, color string) (float64, error) {
	return cf.classifier.ClassifyImage(img, color)
}

// FindInTree scans every file under root ending in ext and reports the
// pass summary.
func (cf *ColorFinder) FindInTree(ctx context.Context, root, ext string, opts walker.Options) (walker.Summary, error) {
	w := walker.New(cf.classifier, cf.log, opts)
	return w.ScanTree(ctx, root, ext)
}

// FindInBatches scans the dated batch folders of root whose encoded
// dates fall within [start, end] and reports the pass summary.
func (cf *ColorFinder) FindInBatches(ctx context.Context, root string, start, end time.Time, opts walker.Options) (walker.Summary, error) {
	w := walker.New(cf.classifier, cf.log, opts)
	return w.ScanBatches(ctx, root, start, end)
}

// Colors returns the names of the registered color specs.
func (cf *ColorFinder) Colors() []string {
	return cf.registry.Names()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
