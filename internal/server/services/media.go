package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/media"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/repomanager"
)

// MediaService stores uploads, answers media library queries and resolves
// attachments to sized image URLs, generating missing variants on demand.
type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       media.Store
	sizes       *media.Sizes
	logger      logging.Logger
	maxPixels   int64
	now         func() time.Time
}

func NewMediaService(db *sql.DB, m repomanager.RepositoryManager, store media.Store, sizes *media.Sizes, logger logging.Logger) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: m,
		store:       store,
		sizes:       sizes,
		logger:      logger.With("module", "media"),
		maxPixels:   media.DefaultMaxPixels,
		now:         time.Now,
	}
}

// SetMaxPixels caps the width*height of accepted uploads and of originals
// decoded for size variants. Non-positive values keep the current cap.
func (s *MediaService) SetMaxPixels(n int64) {
	if n > 0 {
		s.maxPixels = n
	}
}

func (s *MediaService) checkPixels(w, h int) error {
	if int64(w)*int64(h) > s.maxPixels {
		return fmt.Errorf("image is %dx%d, over %d pixels: %w", w, h, s.maxPixels, common.ErrorInvalidInput)
	}
	return nil
}

// Upload stores an image and records it as an attachment of authorID.
func (s *MediaService) Upload(ctx context.Context, authorID int64, title string, data []byte) (*models.Attachment, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", common.ErrorInvalidInput)
	}
	if err := s.checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	mimeType := "image/" + format
	key := media.NewStorageKey(s.now(), media.Extension(mimeType))
	if err := s.store.Put(ctx, key, data, mimeType); err != nil {
		return nil, err
	}

	a, err := s.repomanager.Attachments(dbx.FromContext(ctx, s.db)).Create(ctx, &models.Attachment{
		AuthorID:   authorID,
		Title:      strings.TrimSpace(title),
		MimeType:   mimeType,
		StorageKey: key,
		Width:      cfg.Width,
		Height:     cfg.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating attachment: %w", err)
	}
	return a, nil
}

func (s *MediaService) Get(ctx context.Context, id int64) (*models.Attachment, error) {
	return s.repomanager.Attachments(dbx.FromContext(ctx, s.db)).GetByID(ctx, id)
}

func (s *MediaService) Query(ctx context.Context, q models.AttachmentQuery) ([]*models.Attachment, error) {
	return s.repomanager.Attachments(dbx.FromContext(ctx, s.db)).Query(ctx, q)
}

// Image resolves attachment a in the named size. Unknown sizes and images
// already inside the size box resolve to the original.
func (s *MediaService) Image(ctx context.Context, a *models.Attachment, sizeName string) (media.Image, error) {
	img := media.Image{Width: a.Width, Height: a.Height, Alt: a.Title}
	key := a.StorageKey

	size, ok := s.sizes.Get(sizeName)
	if ok && sizeName != media.SizeFull && (a.Width > size.Width || a.Height > size.Height) {
		v, err := s.variant(ctx, a, size)
		if err != nil {
			s.logger.Warn(ctx, "size variant unavailable, using original",
				"attachment_id", a.ID, "size", sizeName, "error", err)
		} else {
			key, img.Width, img.Height = v.StorageKey, v.Width, v.Height
		}
	}

	src, err := s.store.URL(ctx, key)
	if err != nil {
		return media.Image{}, err
	}
	img.Src = src
	return img, nil
}

// ThumbnailHTML renders the featured image of post in sizeName, or "" when
// the post has none.
func (s *MediaService) ThumbnailHTML(ctx context.Context, post *models.Post, sizeName string) (string, error) {
	if post.ThumbnailID == 0 {
		return "", nil
	}
	a, err := s.Get(ctx, post.ThumbnailID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}
	img, err := s.Image(ctx, a, sizeName)
	if err != nil {
		return "", err
	}
	return media.ImageTag(img, sizeName), nil
}

func (s *MediaService) variant(ctx context.Context, a *models.Attachment, size media.Size) (*models.AttachmentSize, error) {
	repo := s.repomanager.Attachments(dbx.FromContext(ctx, s.db))

	v, err := repo.GetSize(ctx, a.ID, size.Name)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	if err := s.checkPixels(a.Width, a.Height); err != nil {
		return nil, err
	}
	original, err := s.store.Get(ctx, a.StorageKey)
	if err != nil {
		return nil, err
	}
	// The stored header is authoritative; recorded dimensions may be stale.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(original))
	if err != nil {
		return nil, err
	}
	if err := s.checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	src, format, err := media.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, err
	}
	resized := media.Resize(src, size)
	data, mimeType, err := media.Encode(resized, format)
	if err != nil {
		return nil, err
	}

	v = &models.AttachmentSize{
		AttachmentID: a.ID,
		Name:         size.Name,
		StorageKey:   media.VariantKey(a.StorageKey, size.Name, media.Extension(mimeType)),
		Width:        resized.Bounds().Dx(),
		Height:       resized.Bounds().Dy(),
	}
	if err := s.store.Put(ctx, v.StorageKey, data, mimeType); err != nil {
		return nil, err
	}
	if err := repo.SaveSize(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "size variant generated", "attachment_id", a.ID, "size", size.Name,
		"width", v.Width, "height", v.Height)
	return v, nil
}
