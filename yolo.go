package yoloconv

// YOLO center-form conversion and label file emission.

import (
	"fmt"
	"os"
)

// YoloAnnotation is a single label in YOLO format: the class id and the box
// center, width and height as fractions of the image dimensions.
//
// The fractions are only guaranteed to lie in [0, 1] for well-formed input;
// boxes that exceed the image bounds pass through as out-of-range values.
type YoloAnnotation struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// ToYolo converts a corner-form annotation to YOLO center form, normalized by
// the image dimensions.
//
// The dimensions are trusted as given; a zero width or height produces
// non-finite fractions rather than an error.
func ToYolo(a Annotation, imgWidth, imgHeight int) YoloAnnotation {
	w := a.Width()
	h := a.Height()
	return YoloAnnotation{
		ClassID: a.CategoryID,
		XCenter: (a.Coords[0] + w/2) / float64(imgWidth),
		YCenter: (a.Coords[1] + h/2) / float64(imgHeight),
		Width:   w / float64(imgWidth),
		Height:  h / float64(imgHeight),
	}
}

// String formats the annotation as one YOLO label line, space-separated with
// six decimal places and no trailing newline.
func (y YoloAnnotation) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
		y.ClassID, y.XCenter, y.YCenter, y.Width, y.Height)
}

// writeLabelFile converts the annotations of img to YOLO format and writes
// them to path, one line per annotation in their original order, with a
// trailing newline. An image without annotations produces an empty file.
func writeLabelFile(path string, img Image) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create the label file %q: %v", path, err)
	}
	defer closeWithErrCheck(file, &err)

	for _, a := range img.Annotations {
		if _, err := fmt.Fprintln(file, ToYolo(a, img.Width, img.Height)); err != nil {
			return fmt.Errorf("cannot write the label file %q: %v", path, err)
		}
	}

	return nil
}
