package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/switcher"
)

const listLimit = 50

func (a *App) UserAdd(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	role, err := GetSimpleText(a.reader, "Enter role (administrator, editor, author, contributor, subscriber)", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	u, err := a.users.Register(ctx, name, string(password), models.Role(strings.ToLower(role)))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("user %q already exists", name)
		}
		return err
	}
	fmt.Fprintf(a.out, "Created user %d (%s, %s)\n", u.ID, u.UserName, u.Role)
	return nil
}

func (a *App) PostAdd(ctx context.Context) error {
	author, err := a.author(ctx)
	if err != nil {
		return err
	}
	title, err := GetSimpleText(a.reader, "Enter post title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter post content", a.out)
	if err != nil {
		return err
	}

	p, err := a.posts.Create(ctx, author.ID, title, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created post %d\n", p.ID)
	return nil
}

func (a *App) Upload(ctx context.Context, path string) error {
	author, err := a.author(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	att, err := a.media.Upload(ctx, author.ID, title, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded attachment %d (%s, %dx%d)\n", att.ID, att.MimeType, att.Width, att.Height)
	return nil
}

func (a *App) SetImage(ctx context.Context, postArg, attachmentArg string) error {
	postID, err := switcher.ParseID(postArg)
	if err != nil {
		return fmt.Errorf("invalid post id %q: %w", postArg, err)
	}
	attachmentID, err := switcher.ParseID(attachmentArg)
	if err != nil {
		return fmt.Errorf("invalid attachment id %q: %w", attachmentArg, err)
	}

	err = a.posts.WithPostLock(ctx, postID, func(ctx context.Context) error {
		return a.posts.SetThumbnail(ctx, postID, attachmentID)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Post %d now uses attachment %d\n", postID, attachmentID)
	return nil
}

func (a *App) ListPosts(ctx context.Context) error {
	list, err := a.posts.List(ctx, listLimit, 0)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No posts")
		return nil
	}
	for _, p := range list {
		image := "-"
		if p.ThumbnailID != 0 {
			image = strconv.FormatInt(p.ThumbnailID, 10)
		}
		fmt.Fprintf(a.out, "%6d  image=%-6s  %s\n", p.ID, image, p.Title)
	}
	return nil
}

func (a *App) ListMedia(ctx context.Context, search string) error {
	list, err := a.media.Query(ctx, models.AttachmentQuery{Search: search, Limit: listLimit})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No attachments")
		return nil
	}
	for _, m := range list {
		fmt.Fprintf(a.out, "%6d  %-10s  %5dx%-5d  %s\n", m.ID, m.MimeType, m.Width, m.Height, m.Title)
	}
	return nil
}

func (a *App) author(ctx context.Context) (*models.User, error) {
	name, err := GetSimpleText(a.reader, "Enter author user name", a.out)
	if err != nil {
		return nil, err
	}
	u, err := a.users.GetByName(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("no such user %q", name)
	}
	return u, err
}
