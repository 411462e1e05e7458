package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

const defaultQueryLimit = 40

// PostgresRepository implements attachment storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query := `
		INSERT INTO attachments (author_id, title, mime_type, storage_key, width, height)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.AuthorID, a.Title, a.MimeType, a.StorageKey, a.Width, a.Height).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	query := `
		SELECT id, author_id, title, mime_type, storage_key, width, height, created_at
		FROM attachments WHERE id = $1
	`
	a, err := scanAttachment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select attachment: %w", err)
	}
	return a, nil
}

// Query lists attachments newest first, narrowed by the non-zero fields of q.
func (r *PostgresRepository) Query(ctx context.Context, q models.AttachmentQuery) ([]*models.Attachment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.AuthorID != 0 {
		add("author_id = $%d", q.AuthorID)
	}
	if q.MimePrefix != "" {
		add("mime_type LIKE $%d", escapeLike(q.MimePrefix)+"%")
	}
	if q.Search != "" {
		add("title ILIKE $%d", "%"+escapeLike(q.Search)+"%")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, author_id, title, mime_type, storage_key, width, height, created_at FROM attachments")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetSize(ctx context.Context, attachmentID int64, name string) (*models.AttachmentSize, error) {
	query := `
		SELECT attachment_id, name, storage_key, width, height
		FROM attachment_sizes WHERE attachment_id = $1 AND name = $2
	`
	s := &models.AttachmentSize{}
	err := r.db.QueryRowContext(ctx, query, attachmentID, name).
		Scan(&s.AttachmentID, &s.Name, &s.StorageKey, &s.Width, &s.Height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select attachment size: %w", err)
	}
	return s, nil
}

// SaveSize records a generated variant, replacing any previous one of the same name.
func (r *PostgresRepository) SaveSize(ctx context.Context, s *models.AttachmentSize) error {
	query := `
		INSERT INTO attachment_sizes (attachment_id, name, storage_key, width, height)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (attachment_id, name)
		DO UPDATE SET storage_key = EXCLUDED.storage_key, width = EXCLUDED.width, height = EXCLUDED.height
	`
	if _, err := r.db.ExecContext(ctx, query, s.AttachmentID, s.Name, s.StorageKey, s.Width, s.Height); err != nil {
		return fmt.Errorf("failed to save attachment size: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttachment(row scanner) (*models.Attachment, error) {
	a := &models.Attachment{}
	if err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.MimeType, &a.StorageKey, &a.Width, &a.Height, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
