package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hynorvixx/backend/internal/client/client"
	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/hynorvixx/backend/internal/client/services"
)

var errUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

// describe turns an error into a line for the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, services.ErrNotLoggedIn):
		return "not logged in, use 'login' first"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	}
	return err.Error()
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("upload <path>")
	}
	p, err := a.photos.Upload(ctx, args[0])
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Uploaded %s as %s", p.OriginalName, p.ID))
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	page, limit := 1, 20
	var err error
	if len(args) > 0 {
		if page, err = strconv.Atoi(args[0]); err != nil {
			return usage("list [page] [limit]")
		}
	}
	if len(args) > 1 {
		if limit, err = strconv.Atoi(args[1]); err != nil {
			return usage("list [page] [limit]")
		}
	}

	res, err := a.photos.List(ctx, page, limit)
	if err != nil {
		return err
	}
	if len(res.Photos) == 0 {
		printlnFn("No photos")
		return nil
	}
	for _, p := range res.Photos {
		printlnFn(fmt.Sprintf("%s  %-30s  %8d  %s", p.ID, displayName(p), p.FileSize, p.CreatedAt.Local().Format(time.DateTime)))
	}
	pg := res.Pagination
	printlnFn(fmt.Sprintf("Page %d of %d (%d photos)", pg.CurrentPage, pg.TotalPages, pg.TotalPhotos))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	p, err := a.photos.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printPhoto(p)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("edit <id>")
	}

	var upd models.PhotoUpdate
	var err error
	if upd.Title, err = GetOptionalText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if upd.Description, err = GetOptionalText(a.reader, "Description", a.out); err != nil {
		return err
	}
	tags, err := GetOptionalText(a.reader, "Tags, comma separated", a.out)
	if err != nil {
		return err
	}
	if tags != nil {
		t := splitTags(*tags)
		upd.Tags = &t
	}

	if upd.Title == nil && upd.Description == nil && upd.Tags == nil {
		printlnFn("Nothing to change")
		return nil
	}

	p, err := a.photos.Update(ctx, args[0], upd)
	if err != nil {
		return err
	}
	printPhoto(p)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	if err := a.photos.Delete(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Deleted", args[0])
	return nil
}

func (a *App) View(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("view <id>")
	}
	v, err := a.photos.ViewURL(ctx, args[0])
	if err != nil {
		return err
	}
	printlnFn(v.URL)
	printlnFn(fmt.Sprintf("Link expires in %s", time.Duration(v.ExpiresIn)*time.Second))
	return nil
}

func displayName(p models.Photo) string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	return p.OriginalName
}

func printPhoto(p *models.Photo) {
	printlnFn("ID:          ", p.ID)
	printlnFn("File:        ", p.OriginalName)
	printlnFn("Type:        ", p.ContentType)
	printlnFn("Size:        ", p.FileSize)
	if p.Title != nil {
		printlnFn("Title:       ", *p.Title)
	}
	if p.Description != nil {
		printlnFn("Description: ", *p.Description)
	}
	if len(p.Tags) > 0 {
		printlnFn("Tags:        ", strings.Join(p.Tags, ", "))
	}
	printlnFn("Created:     ", p.CreatedAt.Local().Format(time.DateTime))
	printlnFn("Updated:     ", p.UpdatedAt.Local().Format(time.DateTime))
}
