package yoloconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// The standard-schema end-to-end fixture: two images, one annotated box.
const convertStandardDoc = `{
	"images": [
		{"id": 1, "file_name": "img1.jpg", "width": 100, "height": 100},
		{"id": 2, "file_name": "img2.jpg", "width": 200, "height": 200}
	],
	"annotations": [
		{"id": 1, "image_id": 1, "category_id": 3, "bbox": [10, 10, 20, 20], "area": 400}
	]
}`

func TestConvertFlatLayout(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "data.json"), convertStandardDoc)

	report, err := Convert(Options{
		Format:        FormatStandard,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		TrainSplit:    1.0,
		CreateClasses: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.FilesProcessed)
	require.Equal(t, 2, report.Images)
	require.Equal(t, 1, report.Annotations)
	require.Equal(t, 1, report.ClassCount)

	data, err := os.ReadFile(filepath.Join(outputDir, "img1.txt"))
	require.NoError(t, err)
	require.Equal(t, "3 0.200000 0.200000 0.200000 0.200000\n", string(data))

	data, err = os.ReadFile(filepath.Join(outputDir, "img2.txt"))
	require.NoError(t, err)
	require.Empty(t, data)

	data, err = os.ReadFile(filepath.Join(outputDir, "classes.txt"))
	require.NoError(t, err)
	require.Equal(t, "class_3\n", string(data))
}

func TestConvertYoloStructure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "data.json"), convertStandardDoc)
	writeFile(t, filepath.Join(inputDir, "img1.jpg"), "jpeg-bytes-1")
	writeFile(t, filepath.Join(inputDir, "images", "img2.jpg"), "jpeg-bytes-2")

	report, err := Convert(Options{
		Format:        FormatStandard,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		TrainSplit:    1.0,
		Seed:          42,
		CreateClasses: true,
		YoloStructure: true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.TrainImages)
	require.Equal(t, 0, report.ValImages)
	require.Equal(t, 0, report.MissingImages)

	// Image copies are byte-identical to their sources.
	data, err := os.ReadFile(filepath.Join(outputDir, "train", "images", "img1.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes-1", string(data))

	data, err = os.ReadFile(filepath.Join(outputDir, "train", "labels", "img1.txt"))
	require.NoError(t, err)
	require.Equal(t, "3 0.200000 0.200000 0.200000 0.200000\n", string(data))

	data, err = os.ReadFile(filepath.Join(outputDir, "train", "labels", "img2.txt"))
	require.NoError(t, err)
	require.Empty(t, data)

	// All four layout directories exist, including the empty val pair.
	for _, dir := range []string{"train/images", "train/labels", "val/images", "val/labels"} {
		info, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(dir)))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	// classes.txt lives at the output root.
	data, err = os.ReadFile(filepath.Join(outputDir, "classes.txt"))
	require.NoError(t, err)
	require.Equal(t, "class_3\n", string(data))
}

func TestConvertMissingImage(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "data.json"), convertStandardDoc)
	writeFile(t, filepath.Join(inputDir, "img2.jpg"), "jpeg-bytes-2")
	// img1 is absent under every recognized extension.

	report, err := Convert(Options{
		Format:        FormatStandard,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		TrainSplit:    1.0,
		Seed:          42,
		CreateClasses: true,
		YoloStructure: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.MissingImages)

	// Neither a copy nor a label file exists for the missing image.
	_, err = os.Stat(filepath.Join(outputDir, "train", "images", "img1.jpg"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outputDir, "train", "labels", "img1.txt"))
	require.True(t, os.IsNotExist(err))

	// The class index still covers ids from annotations of missing images.
	data, err := os.ReadFile(filepath.Join(outputDir, "classes.txt"))
	require.NoError(t, err)
	require.Equal(t, "class_3\n", string(data))
}

func TestConvertDeterministicForSeed(t *testing.T) {
	inputDir := t.TempDir()
	writeFile(t, filepath.Join(inputDir, "data.json"), convertStandardDoc)
	writeFile(t, filepath.Join(inputDir, "img1.jpg"), "jpeg-bytes-1")
	writeFile(t, filepath.Join(inputDir, "img2.jpg"), "jpeg-bytes-2")

	run := func(outputDir string) map[string]string {
		_, err := Convert(Options{
			Format:        FormatStandard,
			InputDir:      inputDir,
			OutputDir:     outputDir,
			TrainSplit:    0.5,
			Seed:          7,
			YoloStructure: true,
		})
		require.NoError(t, err)

		labels := make(map[string]string)
		for _, subset := range []string{"train", "val"} {
			dir := filepath.Join(outputDir, subset, "labels")
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			for _, e := range entries {
				data, err := os.ReadFile(filepath.Join(dir, e.Name()))
				require.NoError(t, err)
				labels[subset+"/"+e.Name()] = string(data)
			}
		}
		return labels
	}

	first := run(filepath.Join(t.TempDir(), "out1"))
	second := run(filepath.Join(t.TempDir(), "out2"))
	require.Equal(t, first, second)
}

func TestConvertDAMMInput(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "damm.json"), `{
		"annotations": [{
			"file_name": "frames/clip_0001.png",
			"width": 100,
			"height": 100,
			"image_id": 1,
			"annotations": [{"bbox": [[10, 10], [30, 30]], "category_id": 3}]
		}]
	}`)

	report, err := Convert(Options{
		Format:        FormatDAMM,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		CreateClasses: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Images)

	// The declared path prefix is stripped for the label file name.
	data, err := os.ReadFile(filepath.Join(outputDir, "clip_0001.txt"))
	require.NoError(t, err)
	require.Equal(t, "3 0.200000 0.200000 0.200000 0.200000\n", string(data))
}

func TestConvertMergesInputFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "a.json"), `{
		"images": [{"id": 1, "file_name": "a.jpg", "width": 10, "height": 10}],
		"annotations": [{"id": 1, "image_id": 1, "category_id": 5, "bbox": [0, 0, 5, 5]}]
	}`)
	writeFile(t, filepath.Join(inputDir, "b.json"), `{
		"images": [{"id": 1, "file_name": "b.jpg", "width": 10, "height": 10}],
		"annotations": [{"id": 1, "image_id": 1, "category_id": 2, "bbox": [0, 0, 5, 5]}]
	}`)

	report, err := Convert(Options{
		Format:        FormatStandard,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		CreateClasses: true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.FilesProcessed)
	require.Equal(t, 2, report.Images)

	// Ids from every input file land in one aggregate index.
	data, err := os.ReadFile(filepath.Join(outputDir, "classes.txt"))
	require.NoError(t, err)
	require.Equal(t, "class_2\nclass_5\n", string(data))
}

func TestConvertMalformedInputAborts(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "bad.json"), `{"images": [`)

	_, err := Convert(Options{
		Format:    FormatStandard,
		InputDir:  inputDir,
		OutputDir: outputDir,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.json")
}

func TestConvertAbortsOnMissingDimensions(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "data.json"), `{
		"images": [{"id": 1, "file_name": "img1.jpg"}],
		"annotations": [{"id": 1, "image_id": 1, "category_id": 3, "bbox": [10, 10, 20, 20]}]
	}`)

	_, err := Convert(Options{
		Format:    FormatStandard,
		InputDir:  inputDir,
		OutputDir: outputDir,
	})
	require.Error(t, err)

	// The run aborts before any label file is written.
	_, err = os.Stat(filepath.Join(outputDir, "img1.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestConvertUnknownFormat(t *testing.T) {
	_, err := Convert(Options{
		Format:    FormatUnknown,
		InputDir:  t.TempDir(),
		OutputDir: filepath.Join(t.TempDir(), "out"),
	})
	require.Error(t, err)
}

func TestConvertMissingInputDir(t *testing.T) {
	_, err := Convert(Options{
		Format:    FormatStandard,
		InputDir:  filepath.Join(t.TempDir(), "does-not-exist"),
		OutputDir: filepath.Join(t.TempDir(), "out"),
	})
	require.Error(t, err)
}

func TestConvertNoClassesWithoutAnnotations(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(inputDir, "data.json"), `{
		"images": [{"id": 1, "file_name": "a.jpg", "width": 10, "height": 10}],
		"annotations": []
	}`)

	_, err := Convert(Options{
		Format:        FormatStandard,
		InputDir:      inputDir,
		OutputDir:     outputDir,
		CreateClasses: true,
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outputDir, "classes.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestFormatFrom(t *testing.T) {
	require.Equal(t, FormatStandard, FormatFrom("standard"))
	require.Equal(t, FormatDAMM, FormatFrom("damm"))
	require.Equal(t, FormatUnknown, FormatFrom("coco"))
	require.Equal(t, FormatUnknown, FormatFrom(""))
}
