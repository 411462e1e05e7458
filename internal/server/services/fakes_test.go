package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/posts"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/users"
)

// -------- test fakes --------

type fakeUsersRepo struct {
	users.Repository
	byName  map[string]*models.User
	byID    map[int64]*models.User
	created []*models.User
	err     error
}

func newFakeUsersRepo(us ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byName: map[string]*models.User{}, byID: map[int64]*models.User{}}
	for _, u := range us {
		f.byName[u.UserName] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u.ID = int64(len(f.created) + 1)
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byName[userName]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakePostsRepo struct {
	posts.Repository
	mu      sync.Mutex
	posts   map[int64]*models.Post
	locked  []int64
	lockErr error
	setErr  error
	sets    int
}

func newFakePostsRepo(ps ...*models.Post) *fakePostsRepo {
	f := &fakePostsRepo{posts: map[int64]*models.Post{}}
	for _, p := range ps {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.posts) + 1)
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePostsRepo) LockForUpdate(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return f.lockErr
	}
	if _, ok := f.posts[id]; !ok {
		return common.ErrorNotFound
	}
	f.locked = append(f.locked, id)
	return nil
}

func (f *fakePostsRepo) SetThumbnail(ctx context.Context, postID, attachmentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	p, ok := f.posts[postID]
	if !ok {
		return common.ErrorNotFound
	}
	p.ThumbnailID = attachmentID
	f.sets++
	return nil
}

type fakeAttachmentsRepo struct {
	attachments.Repository
	items   map[int64]*models.Attachment
	sizes   map[string]*models.AttachmentSize
	lastQ   models.AttachmentQuery
	saveErr error
}

func newFakeAttachmentsRepo(as ...*models.Attachment) *fakeAttachmentsRepo {
	f := &fakeAttachmentsRepo{items: map[int64]*models.Attachment{}, sizes: map[string]*models.AttachmentSize{}}
	for _, a := range as {
		f.items[a.ID] = a
	}
	return f
}

func (f *fakeAttachmentsRepo) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	a.ID = int64(len(f.items) + 100)
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeAttachmentsRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	if a, ok := f.items[id]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAttachmentsRepo) Query(ctx context.Context, q models.AttachmentQuery) ([]*models.Attachment, error) {
	f.lastQ = q
	var out []*models.Attachment
	for _, a := range f.items {
		if q.AuthorID == 0 || a.AuthorID == q.AuthorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttachmentsRepo) GetSize(ctx context.Context, id int64, name string) (*models.AttachmentSize, error) {
	if s, ok := f.sizes[name]; ok && s.AttachmentID == id {
		return s, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAttachmentsRepo) SaveSize(ctx context.Context, s *models.AttachmentSize) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sizes[s.Name] = s
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePostsRepo
	a *fakeAttachmentsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Posts(db dbx.DBTX) posts.Repository             { return m.p }
func (m *fakeRepoManager) Attachments(db dbx.DBTX) attachments.Repository { return m.a }

type fakeStore struct {
	objects map[string][]byte
	putErr  error
	urlErr  error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = body
	return nil
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

func (s *fakeStore) URL(ctx context.Context, key string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://media.test/" + key, nil
}
