package drivers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3Driver_ObjectKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{"no prefix", "", "abc.pdf", "abc.pdf"},
		{"plain prefix", "attachments", "abc.pdf", "attachments/abc.pdf"},
		{"prefix with slashes", "/attachments/", "abc.pdf", "attachments/abc.pdf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			driver := NewS3Driver(nil, "bucket", tc.prefix, "")
			assert.Equal(t, tc.want, driver.objectKey(tc.key))
		})
	}
}

func TestS3Driver_GenerateURL_PublicBase(t *testing.T) {
	driver := NewS3Driver(nil, "bucket", "attachments", "https://cdn.example.com/files/")

	url, err := driver.GenerateURL(context.Background(), "abc.pdf", 0)

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/files/attachments/abc.pdf", url)
}
