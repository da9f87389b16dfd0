package moderation

import (
	"context"
	"strings"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	apperrors "github.com/sikiya/sikiya-console/internal/services/console/platform/errors"
)

// ErrTitleRequired rejects a draft that would blank the title.
var ErrTitleRequired = apperrors.EK(apperrors.KindValidation, "content.title_required", "title is required")

// ArticleUpdater saves article drafts. newsapi.Session satisfies it.
type ArticleUpdater interface {
	UpdateArticle(ctx context.Context, id string, update newsapi.ArticleUpdate) (newsapi.Article, error)
}

// VideoUpdater saves video drafts. newsapi.Session satisfies it.
type VideoUpdater interface {
	UpdateVideo(ctx context.Context, id string, update newsapi.VideoUpdate) (newsapi.Video, error)
}

// ArticleDraft is the editable copy of an article.
type ArticleDraft struct {
	Title     string
	Content   string
	Highlight string
}

// ArticleDraftFrom seeds a draft with the last fetched values.
func ArticleDraftFrom(article newsapi.Article) ArticleDraft {
	return ArticleDraft{Title: article.Title, Content: article.Content, Highlight: article.Highlight}
}

// Validate checks the draft before saving. Values are sent as entered;
// trimming only decides whether the title is blank.
func (d ArticleDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Save issues one update and returns the stored article, which replaces the
// page's view state.
func (d ArticleDraft) Save(ctx context.Context, updater ArticleUpdater, id string) (newsapi.Article, error) {
	if err := d.Validate(); err != nil {
		return newsapi.Article{}, err
	}
	return updater.UpdateArticle(ctx, id, newsapi.ArticleUpdate{
		Title:     d.Title,
		Content:   d.Content,
		Highlight: d.Highlight,
	})
}

// VideoDraft is the editable copy of a video.
type VideoDraft struct {
	Title string
}

// VideoDraftFrom seeds a draft with the last fetched values.
func VideoDraftFrom(video newsapi.Video) VideoDraft {
	return VideoDraft{Title: video.Title}
}

func (d VideoDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Save issues one update and returns the stored video.
func (d VideoDraft) Save(ctx context.Context, updater VideoUpdater, id string) (newsapi.Video, error) {
	if err := d.Validate(); err != nil {
		return newsapi.Video{}, err
	}
	return updater.UpdateVideo(ctx, id, newsapi.VideoUpdate{Title: d.Title})
}
