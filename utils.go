package yoloconv

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// JSONFilesUnder returns the paths of all regular .json files found by a
// recursive walk of root, in lexical walk order.
func JSONFilesUnder(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("cannot read directory %q: %v", root, err)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q for annotation files: %v", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// baseName strips any directory components from a declared file name. Declared
// names use forward slashes regardless of platform, so both separators are
// handled.
func baseName(declared string) string {
	return filepath.Base(strings.ReplaceAll(declared, "/", string(os.PathSeparator)))
}

// stripExt removes the file type extension, if any, from a base file name.
func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// copyFile copies the file at src to dst verbatim, creating or truncating dst.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot read %q: %v", src, err)
	}
	defer closeWithErrCheck(in, &err)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("cannot create %q: %v", dst, err)
	}
	defer closeWithErrCheck(out, &err)

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %q to %q: %v", src, dst, err)
	}

	return nil
}

// closeWithErrCheck calls c.Close(). If it returns an error, and (*e == nil),
// e is set to that error.
func closeWithErrCheck(c io.Closer, e *error) {
	err := c.Close()
	if err != nil && *e == nil {
		*e = err
	}
}
