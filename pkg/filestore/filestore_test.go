package filestore_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalogo/pkg/filestore"

	"github.com/stretchr/testify/assert"
)

func TestDiskStore_SaveFile(t *testing.T) {
	root := t.TempDir()
	store, err := filestore.NewDiskStore(root)
	assert.NoError(t, err)

	fileCode, err := store.SaveFile("foto.png", strings.NewReader("hi"))
	assert.NoError(t, err)
	assert.NotEmpty(t, fileCode)

	// The blob is readable under {fileCode}-{originalName}.
	storedName := fileCode + "-foto.png"
	data, err := os.ReadFile(filepath.Join(root, storedName))
	assert.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	blob, err := store.Open(storedName)
	assert.NoError(t, err)
	content, err := io.ReadAll(blob)
	assert.NoError(t, err)
	blob.Close()
	assert.Equal(t, "hi", string(content))
}

func TestDiskStore_SameNameGetsDistinctCodes(t *testing.T) {
	store, err := filestore.NewDiskStore(t.TempDir())
	assert.NoError(t, err)

	first, err := store.SaveFile("foto.png", strings.NewReader("uno"))
	assert.NoError(t, err)
	second, err := store.SaveFile("foto.png", strings.NewReader("dos"))
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both blobs remain readable; nothing was overwritten.
	uno, err := store.Open(first + "-foto.png")
	assert.NoError(t, err)
	data, _ := io.ReadAll(uno)
	uno.Close()
	assert.Equal(t, "uno", string(data))

	dos, err := store.Open(second + "-foto.png")
	assert.NoError(t, err)
	data, _ = io.ReadAll(dos)
	dos.Close()
	assert.Equal(t, "dos", string(data))
}

func TestDiskStore_FilenameIsStrippedToBase(t *testing.T) {
	root := t.TempDir()
	store, err := filestore.NewDiskStore(root)
	assert.NoError(t, err)

	fileCode, err := store.SaveFile("../escape.txt", strings.NewReader("x"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, fileCode+"-escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(root), fileCode+"-escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStore_Delete(t *testing.T) {
	store, err := filestore.NewDiskStore(t.TempDir())
	assert.NoError(t, err)

	fileCode, err := store.SaveFile("foto.png", strings.NewReader("hi"))
	assert.NoError(t, err)

	storedName := fileCode + "-foto.png"
	assert.NoError(t, store.Delete(storedName))

	_, err = store.Open(storedName)
	assert.Error(t, err)

	// Deleting an unknown blob reports the failure.
	assert.Error(t, store.Delete("no-such-blob"))
}
