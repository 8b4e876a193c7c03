// internal/collection/collection_test.go
package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "maginhawa-directory/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

func writeRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func codeOf(t *testing.T, err error) stderrors.ErrorCode {
	t.Helper()
	code, ok := stderrors.CodeOf(err)
	require.True(t, ok, "expected a StandardError, got %v", err)
	return code
}

// ==========================
// Directory Reading Tests
// ==========================

func TestRead_SortedFilenameOrder(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "tomato-kick.json", `{}`)
	writeRecord(t, dir, "aling-nenes.json", `{}`)
	writeRecord(t, dir, "mangan-ti-ama.json", `{}`)

	files, err := Read(dir)
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.Equal(t, "aling-nenes.json", files[0].Name)
	assert.Equal(t, "mangan-ti-ama.json", files[1].Name)
	assert.Equal(t, "tomato-kick.json", files[2].Name)
}

func TestRead_SkipsNonJSONEntries(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "rodics-diner.json", `{}`)
	writeRecord(t, dir, "README.md", "# records")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	files, err := Read(dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "rodics-diner.json", files[0].Name)
}

func TestRead_MissingDirectory(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "does-not-exist"))

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCollectionMissing, codeOf(t, err))
	assert.True(t, stderrors.IsCollectionError(err))
}

func TestRead_EmptyDirectory(t *testing.T) {
	_, err := Read(t.TempDir())

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCollectionEmpty, codeOf(t, err))
	assert.True(t, stderrors.IsCollectionError(err))
}

func TestRead_DirectoryWithOnlyNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "notes.txt", "not a record")

	_, err := Read(dir)

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCollectionEmpty, codeOf(t, err))
}

func TestRead_PathIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "records.json", `{}`)

	_, err := Read(filepath.Join(dir, "records.json"))

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCollectionUnreadable, codeOf(t, err))
}

// ==========================
// Single File Tests
// ==========================

func TestReadOne(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "rodics-diner.json", `{"slug": "rodics-diner"}`)

	file, err := ReadOne(filepath.Join(dir, "rodics-diner.json"))
	require.NoError(t, err)

	assert.Equal(t, "rodics-diner.json", file.Name)
	assert.JSONEq(t, `{"slug": "rodics-diner"}`, string(file.Data))
}

func TestReadOne_Missing(t *testing.T) {
	_, err := ReadOne(filepath.Join(t.TempDir(), "nope.json"))

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCollectionMissing, codeOf(t, err))
}
