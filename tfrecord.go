package yoloconv

// TFRecord object detection export for the converted dataset.

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// FeatureMap maps feature names to their values. Values must be convertible
// to tensorflow.Feature.
type FeatureMap map[string]interface{}

// tfFeatures builds the object detection feature map for one image. The box
// corners are normalized by the image dimensions declared in the annotation
// file; imgData holds the raw encoded bytes of the resolved source file.
func tfFeatures(img Image, imgData []byte, imgPath string) FeatureMap {
	f := make(FeatureMap, 12)
	f["image/height"] = img.Height
	f["image/width"] = img.Width
	f["image/filename"] = img.FileName
	f["image/source_id"] = img.FileName
	f["image/encoded"] = imgData
	f["image/format"] = encodingFormat(imgPath)

	numLabels := len(img.Annotations)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classes := make([]string, numLabels)
	classIDs := make([]int64, numLabels)
	for i, a := range img.Annotations {
		xmins[i] = float32(a.Coords[0]) / float32(img.Width)
		ymins[i] = float32(a.Coords[1]) / float32(img.Height)
		xmaxs[i] = float32(a.Coords[2]) / float32(img.Width)
		ymaxs[i] = float32(a.Coords[3]) / float32(img.Height)
		classes[i] = fmt.Sprintf("class_%d", a.CategoryID)
		classIDs[i] = int64(a.CategoryID)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f
}

// encodingFormat derives the image encoding name from the file extension.
func encodingFormat(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	default:
		return ext
	}
}

// WriteTFRecords does a streaming conversion, serialisation and file write of
// the images to one or more TFRecord files stored under recordPath (with
// suffixes added when numShards > 1).
//
// Images whose source file cannot be resolved are skipped, matching the label
// materialization behavior.
func WriteTFRecords(recordPath string, images []Image, index *ImageIndex,
	numShards int) (err error) {

	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 {
		numShards = 1
	}

	fmtShardSuffix := func(idx int) string {
		return fmt.Sprintf("-%05d-of-%05d", idx, numShards)
	}

	var shardFile *os.File
	shardSize := int(math.Ceil(float64(len(images)) / float64(numShards)))
	if shardSize == 0 {
		shardSize = 1
	}
	shardIdx := -1
	written := 0

	// Convert and serialise one image at a time.
	for i, img := range images {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++

			if shardFile != nil {
				_ = shardFile.Close()
				shardFile = nil
			}

			shardPath := recordPath
			if numShards > 1 {
				shardPath += fmtShardSuffix(shardIdx)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return fmt.Errorf("failed to create shard at %q: %v", shardPath, err)
			}
			shardFile = f
		}

		src, ok := index.Resolve(img.FileName)
		if !ok {
			log.Printf("No file found for image %q, skipping its record", img.FileName)
			continue
		}
		imgData, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("cannot read %q: %v", src, err)
		}

		tfExample := example.New(tfFeatures(img, imgData, src))
		if err := writeTFRecordExample(shardFile, tfExample); err != nil {
			return fmt.Errorf("failed to write a record to %q: %v", recordPath, err)
		}
		written++
	}

	if shardFile != nil {
		if err := shardFile.Close(); err != nil {
			return err
		}
	}

	log.Printf("Wrote %d records to %q", written, recordPath)
	return nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}
