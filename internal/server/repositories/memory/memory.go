// Package memory keeps users, posts and attachments in process memory. It
// satisfies repomanager.RepositoryManager and backs handler tests that need
// a whole site without PostgreSQL.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/posts"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/users"
)

const defaultLimit = 40

// Manager hands out repositories sharing one store. The db argument of the
// accessors is ignored.
type Manager struct {
	mu          sync.Mutex
	seq         int64
	users       map[int64]*models.User
	posts       map[int64]*models.Post
	attachments map[int64]*models.Attachment
	sizes       map[sizeKey]*models.AttachmentSize
	now         func() time.Time
}

type sizeKey struct {
	id   int64
	name string
}

func NewManager() *Manager {
	return &Manager{
		users:       make(map[int64]*models.User),
		posts:       make(map[int64]*models.Post),
		attachments: make(map[int64]*models.Attachment),
		sizes:       make(map[sizeKey]*models.AttachmentSize),
		now:         time.Now,
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m) }

func (m *Manager) Posts(dbx.DBTX) posts.Repository { return (*postRepo)(m) }

func (m *Manager) Attachments(dbx.DBTX) attachments.Repository { return (*attachmentRepo)(m) }

func (m *Manager) nextID() int64 {
	m.seq++
	return m.seq
}

type userRepo Manager

func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, have := range m.users {
		if have.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *u
	cp.ID = m.nextID()
	cp.CreatedAt = m.now()
	m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UserName == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type postRepo Manager

func (r *postRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.ID = m.nextID()
	cp.CreatedAt = m.now()
	cp.UpdatedAt = cp.CreatedAt
	m.posts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *postRepo) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return window(all, limit, offset), nil
}

// LockForUpdate only checks existence; callers serialise through the
// surrounding transaction, which this store does not have.
func (r *postRepo) LockForUpdate(ctx context.Context, id int64) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *postRepo) SetThumbnail(ctx context.Context, postID, attachmentID int64) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return common.ErrorNotFound
	}
	p.ThumbnailID = attachmentID
	p.UpdatedAt = m.now()
	return nil
}

type attachmentRepo Manager

func (r *attachmentRepo) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.ID = m.nextID()
	cp.CreatedAt = m.now()
	m.attachments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *attachmentRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attachments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *attachmentRepo) Query(ctx context.Context, q models.AttachmentQuery) ([]*models.Attachment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(q.Search)
	var out []*models.Attachment
	for _, a := range m.attachments {
		if q.AuthorID != 0 && a.AuthorID != q.AuthorID {
			continue
		}
		if q.MimePrefix != "" && !strings.HasPrefix(a.MimeType, q.MimePrefix) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Title), search) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return window(out, limit, q.Offset), nil
}

func (r *attachmentRepo) GetSize(ctx context.Context, attachmentID int64, name string) (*models.AttachmentSize, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sizes[sizeKey{attachmentID, name}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *attachmentRepo) SaveSize(ctx context.Context, size *models.AttachmentSize) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *size
	m.sizes[sizeKey{size.AttachmentID, size.Name}] = &cp
	return nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
