package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o600))

	assert.NoError(t, ValidateInputFile(path, 0))
	assert.NoError(t, ValidateInputFile(path, 4096))

	err := ValidateInputFile(path, 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2.0 KB, larger than the 1.0 KB limit")

	assert.ErrorContains(t, ValidateInputFile("", 0), "filename cannot be empty")
	assert.ErrorContains(t, ValidateInputFile(filepath.Join(dir, "missing.pdf"), 0), "file does not exist")
	assert.ErrorContains(t, ValidateInputFile(dir, 0), "path is a directory")
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "score.md")
	require.NoError(t, ValidateOutputFile(out))

	info, err := os.Stat(filepath.Dir(out))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, ValidateOutputFile(""))
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsTextFile("letter.TXT"))
	assert.False(t, IsTextFile("resume.pdf"))
	assert.True(t, IsDocumentFile("resume.PDF"))
	assert.True(t, IsDocumentFile("resume.docx"))
	assert.True(t, IsDocumentFile("notes.md"))
	assert.False(t, IsDocumentFile("photo.png"))
	assert.Equal(t, ".docx", GetFileExtension("/tmp/CV.DOCX"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "10.0 MB", FormatFileSize(10*1024*1024))
}
