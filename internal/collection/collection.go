// internal/collection/collection.go
package collection

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	stderrors "maginhawa-directory/internal/common/errors"
)

// File is one candidate record file read from the collection directory.
type File struct {
	// Name is the file identifier used in reports, e.g. "rodics-diner.json".
	Name string
	Path string
	Data []byte
}

// Read loads every record file from dir in sorted filename order. Filenames
// derive from slugs, so sorted order is the collection's canonical file order.
// Missing, empty, or unreadable directories are collection-level errors.
func Read(dir string) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, stderrors.NewCollectionMissingError(dir)
		}
		return nil, stderrors.NewCollectionUnreadableError(dir, err)
	}
	if !info.IsDir() {
		return nil, stderrors.NewCollectionUnreadableError(dir, os.ErrInvalid)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, stderrors.NewCollectionUnreadableError(dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, stderrors.NewCollectionUnreadableError(dir, err)
		}
		files = append(files, File{Name: entry.Name(), Path: path, Data: data})
	}

	if len(files) == 0 {
		return nil, stderrors.NewCollectionEmptyError(dir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ReadOne loads a single record file, for the single-file validator mode.
func ReadOne(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, stderrors.NewCollectionMissingError(path)
		}
		return File{}, stderrors.NewCollectionUnreadableError(path, err)
	}
	return File{Name: filepath.Base(path), Path: path, Data: data}, nil
}
