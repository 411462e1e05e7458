package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

// PostgresRepository implements post storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a post and fills in its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, post.AuthorID, post.Title, post.Content).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// GetByID returns a post or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, author_id, title, content, thumbnail_id, created_at, updated_at
		FROM posts WHERE id = $1
	`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select post: %w", err)
	}
	return post, nil
}

// List returns posts newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	query := `
		SELECT id, author_id, title, content, thumbnail_id, created_at, updated_at
		FROM posts ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LockForUpdate takes a row lock on the post for the rest of the
// surrounding transaction. Outside a transaction the lock is released
// immediately.
func (r *PostgresRepository) LockForUpdate(ctx context.Context, id int64) error {
	var locked int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("failed to lock post: %w", err)
	}
	return nil
}

// SetThumbnail points the post's featured image at attachmentID. Setting the
// current value again still affects the row, so the call is idempotent.
func (r *PostgresRepository) SetThumbnail(ctx context.Context, postID, attachmentID int64) error {
	query := `UPDATE posts SET thumbnail_id = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, postID, attachmentID)
	if err != nil {
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	post := &models.Post{}
	var thumbnail sql.NullInt64
	if err := row.Scan(&post.ID, &post.AuthorID, &post.Title, &post.Content, &thumbnail, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	post.ThumbnailID = thumbnail.Int64
	return post, nil
}
