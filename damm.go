package yoloconv

// DAMM schema specific functionality.

import (
	"encoding/json"
	"fmt"
)

// DammAnnotation is a single annotation within a DAMM per-image record. The
// box is a pair of corner points [[x1, y1], [x2, y2]]. BboxMode and
// segmentation are accepted for input fidelity but never interpreted.
//
// The required numeric fields are pointers so that an absent field is
// distinguishable from a zero value and can be rejected.
type DammAnnotation struct {
	Bbox         [][]float64 `json:"bbox"`
	CategoryID   *int        `json:"category_id"`
	BboxMode     string      `json:"bbox_mode"`
	Segmentation [][]float64 `json:"segmentation"`
}

// DammImage is a per-image record within a DAMM file, with its annotations
// embedded.
type DammImage struct {
	FileName    string           `json:"file_name"`
	Width       *int             `json:"width"`
	Height      *int             `json:"height"`
	ImageID     int              `json:"image_id"`
	Annotations []DammAnnotation `json:"annotations"`
}

// DammDataset defines the DAMM annotation structure for a single file.
type DammDataset struct {
	Annotations []DammImage `json:"annotations"`
}

// ParseDAMM parses the content of one DAMM annotation file and converts it to
// the intermediate representation. The returned images preserve the order of
// the top-level annotations list.
func ParseDAMM(data []byte) ([]Image, error) {
	var dataset DammDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse DAMM input: %v", err)
	}
	if dataset.Annotations == nil {
		return nil, fmt.Errorf("not a DAMM document: missing annotations list")
	}

	images := make([]Image, 0, len(dataset.Annotations))
	for _, dammImage := range dataset.Annotations {
		if dammImage.FileName == "" {
			return nil, fmt.Errorf("image %d: missing file_name", dammImage.ImageID)
		}
		if dammImage.Width == nil || dammImage.Height == nil {
			return nil, fmt.Errorf("image %d: missing width or height", dammImage.ImageID)
		}

		// Per image data. Convert all annotations.
		img := Image{
			FileName:    dammImage.FileName,
			Width:       *dammImage.Width,
			Height:      *dammImage.Height,
			Annotations: make([]Annotation, len(dammImage.Annotations)),
		}
		for i, a := range dammImage.Annotations {
			if a.CategoryID == nil {
				return nil, fmt.Errorf("image %d: missing category_id", dammImage.ImageID)
			}
			if len(a.Bbox) != 2 || len(a.Bbox[0]) != 2 || len(a.Bbox[1]) != 2 {
				return nil, fmt.Errorf("image %d: expected a bbox of two coordinate pairs",
					dammImage.ImageID)
			}

			annotation := Annotation{CategoryID: *a.CategoryID}
			annotation.Coords[0] = a.Bbox[0][0]
			annotation.Coords[1] = a.Bbox[0][1]
			annotation.Coords[2] = a.Bbox[1][0]
			annotation.Coords[3] = a.Bbox[1][1]
			img.Annotations[i] = annotation
		}
		images = append(images, img)
	}

	return images, nil
}
