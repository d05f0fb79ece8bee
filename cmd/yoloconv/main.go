// Converts standard COCO and DAMM object detection annotations to YOLO
// labels, with optional train/val partitioning, image layout materialization
// and TFRecord export.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sensorable/yoloconv"
)

var (
	configPath string // Optional YAML config file.

	inputDir   string  // The input directory with annotation files and images.
	outputDir  string  // The output directory for the converted dataset.
	formatName string  // The input annotation schema name.
	trainSplit float64 // The fraction of images assigned to the training subset.
	seed       int64   // The seed for the split shuffle.
	seedSet    bool    // Whether a seed was given explicitly.

	createClasses bool // Write classes.txt.
	yoloStructure bool // Materialize the {train,val}/{images,labels} layout.
	tfRecord      bool // Additionally export TFRecord files.
	numShards     int  // The number of shard files per TFRecord output.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr,
			"  Converts COCO/DAMM annotations found under -input to YOLO labels in -output.")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	flag.StringVar(&configPath, "config", "",
		"The `path` to an optional YAML config file; explicit flags override its values")
	flag.StringVar(&inputDir, "input", "",
		"The `path` to the input directory containing annotation JSON files and images")
	flag.StringVar(&outputDir, "output", "",
		"The `path` to the output directory for YOLO labels")
	flag.StringVar(&formatName, "format", "damm",
		"The input `format`, one of {standard, damm}")
	flag.Float64Var(&trainSplit, "train-split", 0.8,
		"The `fraction` of images assigned to the training subset (with -yolo-structure)")
	flag.Int64Var(&seed, "seed", 0,
		"The random `seed` for the train/val split (defaults to the current time)")
	flag.BoolVar(&createClasses, "create-classes", true,
		"Write a classes.txt file with the synthesized class names")
	flag.BoolVar(&yoloStructure, "yolo-structure", false,
		"Materialize the {train,val}/{images,labels} directory layout with image copies")
	flag.BoolVar(&tfRecord, "tfrecord", false,
		"Additionally export the converted dataset as TFRecord files")
	flag.IntVar(&numShards, "num-shards", 1,
		"The number of shard files to create per TFRecord output")
}

func main() {
	flag.Parse()

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	seedSet = setFlags["seed"]

	if configPath != "" {
		cfg, err := loadConfigFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		applyConfig(cfg, setFlags)
	}

	// Validate the configuration.
	if inputDir == "" || outputDir == "" {
		printUsageAndExit("Missing input or output path argument")
	}
	inputDir = filepath.Clean(inputDir)
	outputDir = filepath.Clean(outputDir)
	if inputDir == outputDir {
		printUsageAndExit("The input and output paths cannot be identical")
	}
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		log.Fatalf("The input directory does not exist: %q", inputDir)
	}

	format := yoloconv.FormatFrom(formatName)
	if format == yoloconv.FormatUnknown {
		printUsageAndExit("Invalid format ", formatName, "; use \"standard\" or \"damm\"")
	}

	if !seedSet {
		seed = time.Now().UnixNano()
	}

	log.Printf("Converting %s annotations under %q to YOLO labels in %q",
		formatName, inputDir, outputDir)

	report, err := yoloconv.Convert(yoloconv.Options{
		Format:        format,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		TrainSplit:    trainSplit,
		Seed:          seed,
		CreateClasses: createClasses,
		YoloStructure: yoloStructure,
		TFRecord:      tfRecord,
		NumShards:     numShards,
	})
	if err != nil {
		log.Fatal("Conversion failed: ", err)
	}

	log.Printf("Conversion completed: %d files, %d images, %d annotations, %d classes",
		report.FilesProcessed, report.Images, report.Annotations, report.ClassCount)
	if yoloStructure {
		log.Printf("Dataset split: %d train, %d val", report.TrainImages, report.ValImages)
	}
	if report.MissingImages > 0 {
		log.Printf("Missing images: %d", report.MissingImages)
	}
}
