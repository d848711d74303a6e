// Package media stores restaurant logos and menu item photos on Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const MaxImageSize = 10 * 1024 * 1024

var ErrNotConfigured = errors.New("cloudinary credentials not configured")

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
	now func() time.Time
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld, now: time.Now}, nil
}

func (s *CloudinaryService) ValidateImageFile(file *multipart.FileHeader) error {
	return ValidateImageFile(file)
}

func ValidateImageFile(file *multipart.FileHeader) error {
	if file.Size > MaxImageSize {
		return errors.New("file too large (max 10MB)")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExts[ext] {
		return errors.New("invalid file type. Only jpg, jpeg, png, gif, webp allowed")
	}
	return nil
}

// PublicID builds "<folder>/<unix>_<name>" without the extension.
func PublicID(folder, filename string, at time.Time) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	return fmt.Sprintf("%s/%d_%s", folder, at.Unix(), strings.ReplaceAll(name, " ", "_"))
}

// UploadImage returns the secure URL and the public id needed to delete it later.
func (s *CloudinaryService) UploadImage(ctx context.Context, file multipart.File, filename, folder string) (string, string, error) {
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       PublicID(folder, filename, s.now()),
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, res.PublicID, nil
}

func (s *CloudinaryService) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	return nil
}
