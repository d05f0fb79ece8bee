package yoloconv

// Standard COCO schema specific functionality.

import (
	"encoding/json"
	"fmt"
)

// CocoAnnotation is a single annotation within a standard COCO file. The box
// is [x, y, width, height] in absolute pixels. Area, iscrowd and segmentation
// are accepted for input fidelity but never interpreted.
//
// The required numeric fields are pointers so that an absent field is
// distinguishable from a zero value and can be rejected.
type CocoAnnotation struct {
	ID           int             `json:"id"`
	ImageID      *int            `json:"image_id"`
	CategoryID   *int            `json:"category_id"`
	Bbox         []float64       `json:"bbox"`
	Area         float64         `json:"area"`
	IsCrowd      int             `json:"iscrowd"`
	Segmentation json.RawMessage `json:"segmentation"`
}

// CocoImage is a single image record within a standard COCO file.
type CocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
}

// CocoDataset defines the standard COCO structure for a single file.
type CocoDataset struct {
	Images      []CocoImage      `json:"images"`
	Annotations []CocoAnnotation `json:"annotations"`
}

// ParseStandard parses the content of one standard COCO annotation file and
// converts it to the intermediate representation.
//
// Annotations are grouped by their referenced image id; an image with no
// matching annotations yields an Image with an empty annotation list. The
// returned images preserve the order of the "images" list, and annotations
// within an image preserve the order of the "annotations" list.
func ParseStandard(data []byte) ([]Image, error) {
	var dataset CocoDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse standard COCO input: %v", err)
	}
	if dataset.Images == nil || dataset.Annotations == nil {
		return nil, fmt.Errorf("not a standard COCO document: missing images or annotations list")
	}

	// Group the annotations by the referenced image id.
	byImage := make(map[int][]Annotation, len(dataset.Images))
	for _, a := range dataset.Annotations {
		if a.ImageID == nil || a.CategoryID == nil {
			return nil, fmt.Errorf("annotation %d: missing image_id or category_id", a.ID)
		}
		if len(a.Bbox) != 4 {
			return nil, fmt.Errorf("annotation %d: expected a bbox of 4 values, got %d",
				a.ID, len(a.Bbox))
		}

		// Convert [x, y, w, h] to corner form [x1, y1, x2, y2].
		annotation := Annotation{CategoryID: *a.CategoryID}
		annotation.Coords[0] = a.Bbox[0]
		annotation.Coords[1] = a.Bbox[1]
		annotation.Coords[2] = a.Bbox[0] + a.Bbox[2]
		annotation.Coords[3] = a.Bbox[1] + a.Bbox[3]
		byImage[*a.ImageID] = append(byImage[*a.ImageID], annotation)
	}

	// Convert to the intermediate representation, one entry per declared image
	// id even if the images list repeats an id.
	images := make([]Image, 0, len(dataset.Images))
	seen := make(map[int]bool, len(dataset.Images))
	for _, img := range dataset.Images {
		if img.FileName == "" {
			return nil, fmt.Errorf("image %d: missing file_name", img.ID)
		}
		if img.Width == nil || img.Height == nil {
			return nil, fmt.Errorf("image %d: missing width or height", img.ID)
		}
		if seen[img.ID] {
			continue
		}
		seen[img.ID] = true

		annotations := byImage[img.ID]
		if annotations == nil {
			annotations = []Annotation{}
		}
		images = append(images, Image{
			FileName:    img.FileName,
			Width:       *img.Width,
			Height:      *img.Height,
			Annotations: annotations,
		})
	}

	return images, nil
}
