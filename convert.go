package yoloconv

// The conversion pipeline: parse, partition, resolve, materialize.

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
)

// Format identifies an input annotation schema.
type Format int

// The known input schemas.
const (
	FormatUnknown Format = iota
	FormatStandard
	FormatDAMM
)

// FormatFrom maps a format name to its Format value.
func FormatFrom(s string) Format {
	switch s {
	case "standard":
		return FormatStandard
	case "damm":
		return FormatDAMM
	}
	return FormatUnknown
}

// Options configures a conversion run.
type Options struct {
	Format        Format  // The input annotation schema.
	InputDir      string  // Root under which annotation files and images are discovered.
	OutputDir     string  // Root for the generated files.
	TrainSplit    float64 // Fraction of images assigned to the training subset.
	Seed          int64   // Seed for the split shuffle.
	CreateClasses bool    // Write classes.txt when at least one annotation was observed.
	YoloStructure bool    // Materialize the {train,val}/{images,labels} layout.
	TFRecord      bool    // Additionally export the dataset as TFRecord files.
	NumShards     int     // Number of shard files per TFRecord output.
}

// Report summarizes a completed conversion run. The counts are informational;
// they are never consumed by downstream automation.
type Report struct {
	FilesProcessed int // Annotation files parsed.
	Images         int // Images across all input files.
	Annotations    int // Annotations across all input files.
	TrainImages    int // Images assigned to the training subset.
	ValImages      int // Images assigned to the validation subset.
	MissingImages  int // Images whose source file could not be located.
	ClassCount     int // Distinct category ids observed.
}

// Convert runs the full conversion pipeline: it discovers and parses all
// annotation files under opts.InputDir, partitions the dataset when the YOLO
// directory structure is requested, writes one label file per image, copies
// the source images into the split layout, and writes the aggregate class
// index.
//
// A malformed annotation file aborts the whole run. An image whose source
// file cannot be located is skipped and counted in the report.
func Convert(opts Options) (*Report, error) {
	if opts.Format == FormatUnknown {
		return nil, fmt.Errorf("unknown input format; use \"standard\" or \"damm\"")
	}

	inputFiles, err := JSONFilesUnder(opts.InputDir)
	if err != nil {
		return nil, err
	}

	// Parse all input files into one ordered collection.
	report := &Report{}
	classes := NewClassIndex()
	var images []Image
	for _, path := range inputFiles {
		log.Printf("Processing %q", path)
		parsed, err := parseFile(path, opts.Format)
		if err != nil {
			return nil, err
		}

		for _, img := range parsed {
			for _, a := range img.Annotations {
				classes.Add(a.CategoryID)
			}
			report.Annotations += len(img.Annotations)
		}
		images = append(images, parsed...)
		report.FilesProcessed++
	}
	report.Images = len(images)
	report.ClassCount = classes.Len()
	log.Printf("Parsed %d annotations for %d images from %d files",
		report.Annotations, report.Images, report.FilesProcessed)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create the output directory %q: %v", opts.OutputDir, err)
	}

	// The image index is only needed when images are copied or embedded.
	var index *ImageIndex
	if opts.YoloStructure || opts.TFRecord {
		if index, err = NewImageIndex(opts.InputDir); err != nil {
			return nil, err
		}
	}

	if opts.YoloStructure {
		rng := rand.New(rand.NewSource(opts.Seed))
		train, val := SplitImages(images, opts.TrainSplit, rng)
		report.TrainImages = len(train)
		report.ValImages = len(val)
		log.Printf("Split the dataset into %d training and %d validation images",
			len(train), len(val))

		subsets := []struct {
			name   string
			images []Image
		}{
			{"train", train},
			{"val", val},
		}
		for _, subset := range subsets {
			if err := materializeSubset(opts, subset.name, subset.images, index, report); err != nil {
				return nil, err
			}
			if opts.TFRecord {
				recordPath := filepath.Join(opts.OutputDir, subset.name+".record")
				if err := WriteTFRecords(recordPath, subset.images, index, opts.NumShards); err != nil {
					return nil, err
				}
			}
		}
	} else {
		// Flat layout: label files only, directly in the output root.
		for _, img := range images {
			labelPath := filepath.Join(opts.OutputDir, stripExt(baseName(img.FileName))+".txt")
			if err := writeLabelFile(labelPath, img); err != nil {
				return nil, err
			}
		}
		if opts.TFRecord {
			recordPath := filepath.Join(opts.OutputDir, "dataset.record")
			if err := WriteTFRecords(recordPath, images, index, opts.NumShards); err != nil {
				return nil, err
			}
		}
	}

	// Write the aggregate class index once at the end.
	if opts.CreateClasses && classes.Len() > 0 {
		classesPath := filepath.Join(opts.OutputDir, "classes.txt")
		if err := classes.WriteFile(classesPath); err != nil {
			return nil, err
		}
		log.Printf("Wrote %d classes to %q", classes.Len(), classesPath)
	}

	if report.MissingImages > 0 {
		log.Printf("Skipped %d images that could not be located under %q",
			report.MissingImages, opts.InputDir)
	}

	return report, nil
}

// parseFile reads and parses one annotation file according to the schema.
func parseFile(path string, format Format) ([]Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %v", path, err)
	}

	var images []Image
	switch format {
	case FormatStandard:
		images, err = ParseStandard(data)
	case FormatDAMM:
		images, err = ParseDAMM(data)
	default:
		err = fmt.Errorf("unknown input format")
	}
	if err != nil {
		return nil, fmt.Errorf("%q: %v", path, err)
	}

	return images, nil
}

// materializeSubset creates the images/labels directory pair for one subset
// and writes an image copy and a label file for every resolvable image.
// Images that cannot be located are counted and skipped.
func materializeSubset(opts Options, subset string, images []Image, index *ImageIndex,
	report *Report) error {

	imageDir := filepath.Join(opts.OutputDir, subset, "images")
	labelDir := filepath.Join(opts.OutputDir, subset, "labels")
	for _, dir := range []string{imageDir, labelDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create directory %q: %v", dir, err)
		}
	}

	for _, img := range images {
		src, ok := index.Resolve(img.FileName)
		if !ok {
			log.Printf("No file found for image %q, skipping", img.FileName)
			report.MissingImages++
			continue
		}

		name := baseName(src)
		if err := copyFile(src, filepath.Join(imageDir, name)); err != nil {
			return err
		}
		if err := writeLabelFile(filepath.Join(labelDir, stripExt(name)+".txt"), img); err != nil {
			return err
		}
	}

	return nil
}
