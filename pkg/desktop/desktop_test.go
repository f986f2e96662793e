package desktop_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/rrr/pkg/desktop"
	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEntry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.desktop")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFile(t *testing.T) {
	t.Run("exec_and_mimetypes", func(t *testing.T) {
		path := writeEntry(t, `[Desktop Entry]
Name=Image Viewer
Exec=imv %U
MimeType=image/png;image/jpeg;
`)
		entry, err := desktop.ParseFile(path, false)
		require.NoError(t, err)
		assert.Equal(t, "imv %s", entry.Exec)
		assert.Equal(t, []string{"image/png", "image/jpeg"}, entry.MimeTypes)
	})

	t.Run("normalizes_all_file_placeholders", func(t *testing.T) {
		path := writeEntry(t, `[Desktop Entry]
Exec=viewer %f %F %u
MimeType=application/pdf
`)
		entry, err := desktop.ParseFile(path, false)
		require.NoError(t, err)
		assert.Equal(t, "viewer %s %s %s", entry.Exec)
	})

	t.Run("missing_exec_strict", func(t *testing.T) {
		path := writeEntry(t, `[Desktop Entry]
MimeType=image/png
`)
		_, err := desktop.ParseFile(path, false)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrImportAttr))
	})

	t.Run("missing_exec_tolerated", func(t *testing.T) {
		path := writeEntry(t, `[Desktop Entry]
MimeType=image/png
`)
		entry, err := desktop.ParseFile(path, true)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("missing_mimetype_tolerated", func(t *testing.T) {
		path := writeEntry(t, `[Desktop Entry]
Exec=viewer %f
`)
		entry, err := desktop.ParseFile(path, true)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("missing_section", func(t *testing.T) {
		path := writeEntry(t, `[Other Section]
Exec=viewer
`)
		_, err := desktop.ParseFile(path, false)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrImportAttr))
	})
}
