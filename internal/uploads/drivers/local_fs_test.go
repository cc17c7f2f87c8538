package drivers

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalFSDriver_SaveAndGet(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "/api/files")
	assert.NoError(t, err)
	ctx := context.Background()

	content := []byte("quarterly budget figures")
	key := "0a1b2c3d.pdf"

	err = driver.Save(ctx, key, bytes.NewReader(content), "application/pdf")
	assert.NoError(t, err)

	reader, contentType, err := driver.Get(ctx, key)
	assert.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "application/pdf", contentType)
}

func TestLocalFSDriver_ContentTypeFromKey(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	assert.NoError(t, err)
	ctx := context.Background()

	key := "deadbeef.bin"
	err = driver.Save(ctx, key, bytes.NewReader([]byte{0x00}), "")
	assert.NoError(t, err)

	reader, contentType, err := driver.Get(ctx, key)
	assert.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestLocalFSDriver_Delete(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	assert.NoError(t, err)
	ctx := context.Background()

	key := "cafebabe.txt"
	err = driver.Save(ctx, key, bytes.NewReader([]byte("to be removed")), "text/plain")
	assert.NoError(t, err)

	assert.NoError(t, driver.Delete(ctx, key))

	_, _, err = driver.Get(ctx, key)
	assert.Error(t, err)

	// Deleting a missing key is not an error.
	assert.NoError(t, driver.Delete(ctx, key))
}

func TestLocalFSDriver_GenerateURL(t *testing.T) {
	ctx := context.Background()

	withPrefix, err := NewLocalFSDriver(t.TempDir(), "/api/files")
	assert.NoError(t, err)
	url, err := withPrefix.GenerateURL(ctx, "abc.png", 0)
	assert.NoError(t, err)
	assert.Equal(t, "/api/files/abc.png", url)

	bare, err := NewLocalFSDriver(t.TempDir(), "")
	assert.NoError(t, err)
	url, err = bare.GenerateURL(ctx, "abc.png", 0)
	assert.NoError(t, err)
	assert.Equal(t, "abc.png", url)
}
