package yoloconv

// The intermediate annotation metadata representation.

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
)

// Annotation is the intermediate representation of an object label.
//
// Coords holds the absolute x1, y1, x2, y2 offsets from the top-left corner,
// exactly as they appeared in the source file. No geometric validation is
// performed; inverted or degenerate boxes are carried through unchanged.
type Annotation struct {
	Coords     [4]float64
	CategoryID int
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2] - a.Coords[0]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3] - a.Coords[1]
}

// Image is the intermediate representation of one annotated image.
//
// FileName is the name declared in the source annotation file and may include
// a relative path prefix. Width and Height come from the annotation file and
// are authoritative for normalization.
type Image struct {
	FileName    string
	Width       int
	Height      int
	Annotations []Annotation
}

// SplitImages randomly partitions images into a training and a validation
// subset. The training subset receives floor(len(images)*trainRatio) entries
// after a uniform shuffle drawn from rng; the remainder is validation.
//
// trainRatio is not validated. The split index is clamped to [0, len(images)],
// so ratios below 0 or above 1 behave like 0 and 1 respectively.
func SplitImages(images []Image, trainRatio float64, rng *rand.Rand) (train, val []Image) {
	shuffled := make([]Image, len(images))
	copy(shuffled, images)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := int(float64(len(shuffled)) * trainRatio)
	if n < 0 {
		n = 0
	} else if n > len(shuffled) {
		n = len(shuffled)
	}

	return shuffled[:n], shuffled[n:]
}

// ClassIndex accumulates the category ids observed across a run and maps each
// to a synthesized display name. It is passed through the pipeline explicitly;
// there is no package-level state.
type ClassIndex struct {
	names map[int]string
}

// NewClassIndex returns an empty class index.
func NewClassIndex() *ClassIndex {
	return &ClassIndex{names: make(map[int]string)}
}

// Add records the category id, synthesizing its display name on first sight.
func (c *ClassIndex) Add(categoryID int) {
	if _, ok := c.names[categoryID]; !ok {
		c.names[categoryID] = "class_" + strconv.Itoa(categoryID)
	}
}

// Len is the number of distinct category ids observed.
func (c *ClassIndex) Len() int {
	return len(c.names)
}

// Names returns the synthesized class names sorted ascending by category id.
func (c *ClassIndex) Names() []string {
	ids := make([]int, 0, len(c.names))
	for id := range c.names {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = c.names[id]
	}
	return names
}

// WriteFile writes the class index to path, one name per line in ascending id
// order, with a trailing newline.
func (c *ClassIndex) WriteFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create the class index file %q: %v", path, err)
	}
	defer closeWithErrCheck(file, &err)

	for _, name := range c.Names() {
		if _, err := fmt.Fprintln(file, name); err != nil {
			return fmt.Errorf("cannot write the class index file %q: %v", path, err)
		}
	}

	return nil
}
