package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/repomanager"
)

// PostService manages posts and their featured image association.
// Every method joins the transaction carried on ctx, if any.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

func (s *PostService) Create(ctx context.Context, authorID int64, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if authorID <= 0 || title == "" {
		return nil, common.ErrorInvalidInput
	}
	repo := s.repomanager.Posts(dbx.FromContext(ctx, s.db))
	p, err := repo.Create(ctx, &models.Post{AuthorID: authorID, Title: title, Content: content})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	return s.repomanager.Posts(dbx.FromContext(ctx, s.db)).GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.repomanager.Posts(dbx.FromContext(ctx, s.db)).List(ctx, limit, offset)
}

// SetThumbnail makes attachmentID the featured image of postID. The
// attachment must exist and be an image; the post must exist.
func (s *PostService) SetThumbnail(ctx context.Context, postID, attachmentID int64) error {
	db := dbx.FromContext(ctx, s.db)

	a, err := s.repomanager.Attachments(db).GetByID(ctx, attachmentID)
	if err != nil {
		return fmt.Errorf("attachment %d: %w", attachmentID, err)
	}
	if !a.IsImage() {
		return fmt.Errorf("attachment %d is %s: %w", attachmentID, a.MimeType, common.ErrorInvalidInput)
	}

	if err := s.repomanager.Posts(db).SetThumbnail(ctx, postID, attachmentID); err != nil {
		return fmt.Errorf("post %d: %w", postID, err)
	}
	return nil
}

// WithPostLock runs fn in a transaction holding the row lock of postID.
// Concurrent callers for the same post run one after another.
func (s *PostService) WithPostLock(ctx context.Context, postID int64, fn func(ctx context.Context) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Posts(tx).LockForUpdate(ctx, postID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("post %d: %w", postID, err)
			}
			return err
		}
		return fn(ctx)
	})
}
