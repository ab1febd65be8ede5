package s3

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	t.Run("valid PNG", func(t *testing.T) {
		payload := []byte{0x89, 0x50, 0x4E, 0x47}
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

		data, mimeType, err := ParseDataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, payload, data)
		assert.Equal(t, "image/png", mimeType)
	})

	t.Run("valid JPEG with extra parameters", func(t *testing.T) {
		uri := "data:image/jpeg;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg"))

		_, mimeType, err := ParseDataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", mimeType)
	})

	t.Run("missing data prefix", func(t *testing.T) {
		_, _, err := ParseDataURI("https://example.com/photo.png")
		assert.Error(t, err)
	})

	t.Run("missing comma separator", func(t *testing.T) {
		_, _, err := ParseDataURI("data:image/png;base64")
		assert.Error(t, err)
	})

	t.Run("non-image payload", func(t *testing.T) {
		uri := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
		_, _, err := ParseDataURI(uri)
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("not base64 encoded", func(t *testing.T) {
		_, _, err := ParseDataURI("data:image/png,rawbytes")
		assert.Error(t, err)
	})

	t.Run("invalid base64 payload", func(t *testing.T) {
		_, _, err := ParseDataURI("data:image/png;base64,!!!not-base64!!!")
		assert.Error(t, err)
	})
}
