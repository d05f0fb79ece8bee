package yoloconv

// Matching declared image names to physical files under the input root.

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// candidateExtensions are tried, in order, when a declared image name does not
// match any physical file exactly.
var candidateExtensions = []string{"jpg", "jpeg", "png", "bmp", "tiff", "tif"}

// ImageIndex maps image file names discovered under the input root to their
// physical paths. It is built once per run so that lookups do not rescan the
// directory tree per image.
type ImageIndex struct {
	byName map[string]string // base name -> path
}

// NewImageIndex recursively scans root and indexes every regular file by its
// base name. When the same base name occurs more than once, the first file in
// lexical walk order wins.
func NewImageIndex(root string) (*ImageIndex, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("cannot read the image root %q: %v", root, err)
	}

	idx := &ImageIndex{byName: make(map[string]string)}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if _, ok := idx.byName[name]; !ok {
			idx.byName[name] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan the image root %q: %v", root, err)
	}

	return idx, nil
}

// Resolve locates the physical file for a declared image name. The name is
// reduced to its base name, matched exactly first, and then retried with each
// candidate extension substituted for the declared one. The second return
// value is false if no candidate matches; this is a recoverable condition.
func (idx *ImageIndex) Resolve(declared string) (string, bool) {
	name := baseName(declared)
	if path, ok := idx.byName[name]; ok {
		return path, true
	}

	stem := stripExt(name)
	for _, ext := range candidateExtensions {
		if path, ok := idx.byName[stem+"."+ext]; ok {
			return path, true
		}
	}

	return "", false
}

// Len is the number of indexed files.
func (idx *ImageIndex) Len() int {
	return len(idx.byName)
}
