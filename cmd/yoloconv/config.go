package main

// Optional YAML configuration file support. File values act as defaults;
// flags set explicitly on the command line override them.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Input         string   `yaml:"input"`
	Output        string   `yaml:"output"`
	Format        string   `yaml:"format"`
	TrainSplit    *float64 `yaml:"train_split"`
	Seed          *int64   `yaml:"seed"`
	CreateClasses *bool    `yaml:"create_classes"`
	YoloStructure *bool    `yaml:"yolo_structure"`
	TFRecord      *bool    `yaml:"tfrecord"`
	NumShards     *int     `yaml:"num_shards"`
}

// loadConfigFile reads and parses the YAML config file at path.
func loadConfigFile(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read the config file %q: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse the config file %q: %v", path, err)
	}

	return cfg, nil
}

// applyConfig copies file values into the flag variables, except for flags the
// user set explicitly (setFlags contains their names).
func applyConfig(cfg fileConfig, setFlags map[string]bool) {
	if cfg.Input != "" && !setFlags["input"] {
		inputDir = cfg.Input
	}
	if cfg.Output != "" && !setFlags["output"] {
		outputDir = cfg.Output
	}
	if cfg.Format != "" && !setFlags["format"] {
		formatName = cfg.Format
	}
	if cfg.TrainSplit != nil && !setFlags["train-split"] {
		trainSplit = *cfg.TrainSplit
	}
	if cfg.Seed != nil && !setFlags["seed"] {
		seed = *cfg.Seed
		seedSet = true
	}
	if cfg.CreateClasses != nil && !setFlags["create-classes"] {
		createClasses = *cfg.CreateClasses
	}
	if cfg.YoloStructure != nil && !setFlags["yolo-structure"] {
		yoloStructure = *cfg.YoloStructure
	}
	if cfg.TFRecord != nil && !setFlags["tfrecord"] {
		tfRecord = *cfg.TFRecord
	}
	if cfg.NumShards != nil && !setFlags["num-shards"] {
		numShards = *cfg.NumShards
	}
}
