package models

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"github.com/disintegration/imaging"
)

const (
	ProfileImageMaxSide     = 512
	profileImageContentType = "image/jpeg"
)

var ErrInvalidImage = errors.New("invalid image")

// ObjectStorage is where profile images live; utils.GCSStorage in production.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

type ProfileImageService struct {
	storage ObjectStorage
	now     func() time.Time
}

func NewProfileImageService(storage ObjectStorage) *ProfileImageService {
	return &ProfileImageService{storage: storage, now: time.Now}
}

func ProfileImagePath(owner string, at time.Time) string {
	return fmt.Sprintf("userProfiles/%s/profileImage_%d", owner, at.UnixMilli())
}

// PrepareProfileImage decodes r, shrinks it to fit 512x512 and re-encodes
// it as JPEG. Smaller images keep their size.
func PrepareProfileImage(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Dx() > ProfileImageMaxSide || b.Dy() > ProfileImageMaxSide {
		img = imaging.Fit(img, ProfileImageMaxSide, ProfileImageMaxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Replace uploads a new image for owner and deletes previous, if any.
func (s *ProfileImageService) Replace(ctx context.Context, owner string, previous *ObjectRef, r io.Reader) (*ObjectRef, error) {
	data, err := PrepareProfileImage(r)
	if err != nil {
		return nil, err
	}
	path := ProfileImagePath(owner, s.now())
	url, err := s.storage.Upload(ctx, path, data, profileImageContentType)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.Path != "" && previous.Path != path {
		if err := s.storage.Delete(ctx, previous.Path); err != nil {
			config.LogError(config.GetLogger(), "ProfileImageService", "Replace", "delete previous image", previous.Path, err)
		}
	}
	return &ObjectRef{Path: path, URL: url}, nil
}

// FromDataURI accepts the "data:image/...;base64,..." values older clients
// stored inline.
func (s *ProfileImageService) FromDataURI(ctx context.Context, owner string, previous *ObjectRef, uri string) (*ObjectRef, error) {
	comma := strings.IndexByte(uri, ',')
	if !strings.HasPrefix(uri, "data:") || comma < 0 || !strings.Contains(uri[:comma], ";base64") {
		return nil, fmt.Errorf("%w: not a base64 data uri", ErrInvalidImage)
	}
	raw, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return s.Replace(ctx, owner, previous, bytes.NewReader(raw))
}

func (s *ProfileImageService) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	return s.storage.Delete(ctx, path)
}
