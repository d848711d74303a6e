package media

import (
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageFile(t *testing.T) {
	assert.NoError(t, ValidateImageFile(&multipart.FileHeader{Filename: "logo.PNG", Size: 2048}))
	assert.Error(t, ValidateImageFile(&multipart.FileHeader{Filename: "menu.pdf", Size: 2048}))
	assert.Error(t, ValidateImageFile(&multipart.FileHeader{Filename: "huge.jpg", Size: MaxImageSize + 1}))
}

func TestPublicID(t *testing.T) {
	got := PublicID("starides/restaurants", "my logo.png", time.Unix(1700000000, 0))
	assert.Equal(t, "starides/restaurants/1700000000_my_logo", got)
}

func TestNewCloudinaryServiceNeedsCredentials(t *testing.T) {
	_, err := NewCloudinaryService("", "key", "secret")
	assert.ErrorIs(t, err, ErrNotConfigured)

	svc, err := NewCloudinaryService("demo", "key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
