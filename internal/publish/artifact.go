// internal/publish/artifact.go
package publish

import (
	"encoding/json"
	"os"
	"path/filepath"

	stderrors "maginhawa-directory/internal/common/errors"
)

// WriteArtifact marshals v and replaces the artifact at path with a full
// overwrite. The document is written to a temp file in the same directory and
// renamed into place so a failed run never leaves a partial artifact; on any
// error the previous artifact survives untouched.
func WriteArtifact(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return stderrors.NewArtifactWriteFailedError(path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return stderrors.NewArtifactWriteFailedError(path, err)
	}

	return nil
}
