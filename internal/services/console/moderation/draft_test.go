package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
)

type fakeUpdater struct {
	articleCalls []newsapi.ArticleUpdate
	videoCalls   []newsapi.VideoUpdate
	err          error
}

func (f *fakeUpdater) UpdateArticle(_ context.Context, id string, update newsapi.ArticleUpdate) (newsapi.Article, error) {
	f.articleCalls = append(f.articleCalls, update)
	if f.err != nil {
		return newsapi.Article{}, f.err
	}
	return newsapi.Article{ID: id, Title: update.Title, Content: update.Content, Highlight: update.Highlight}, nil
}

func (f *fakeUpdater) UpdateVideo(_ context.Context, id string, update newsapi.VideoUpdate) (newsapi.Video, error) {
	f.videoCalls = append(f.videoCalls, update)
	if f.err != nil {
		return newsapi.Video{}, f.err
	}
	return newsapi.Video{ID: id, Title: update.Title}, nil
}

func TestArticleDraftRoundTrip(t *testing.T) {
	original := newsapi.Article{ID: "a1", Title: "Old", Content: "old body", Highlight: "old hl"}
	draft := ArticleDraftFrom(original)
	if draft != (ArticleDraft{Title: "Old", Content: "old body", Highlight: "old hl"}) {
		t.Fatalf("draft = %+v", draft)
	}

	draft.Title = "New"
	draft.Content = "new body"
	draft.Highlight = "new hl"
	updater := &fakeUpdater{}
	saved, err := draft.Save(context.Background(), updater, "a1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Title != "New" || saved.Content != "new body" || saved.Highlight != "new hl" {
		t.Fatalf("saved = %+v", saved)
	}
	if len(updater.articleCalls) != 1 {
		t.Fatalf("updates = %d", len(updater.articleCalls))
	}
}

func TestArticleDraftSendsValuesAsEntered(t *testing.T) {
	updater := &fakeUpdater{}
	draft := ArticleDraft{Title: "  Budget vote ", Content: "\nbody  ", Highlight: " key point\n"}
	if _, err := draft.Save(context.Background(), updater, "a1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := newsapi.ArticleUpdate{Title: "  Budget vote ", Content: "\nbody  ", Highlight: " key point\n"}
	if len(updater.articleCalls) != 1 || updater.articleCalls[0] != want {
		t.Fatalf("sent = %+v, want %+v", updater.articleCalls, want)
	}
}

func TestDraftValidationSendsNothing(t *testing.T) {
	updater := &fakeUpdater{}
	if _, err := (ArticleDraft{Title: "  "}).Save(context.Background(), updater, "a1"); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("article err = %v", err)
	}
	if _, err := (VideoDraft{}).Save(context.Background(), updater, "v1"); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("video err = %v", err)
	}
	if len(updater.articleCalls)+len(updater.videoCalls) != 0 {
		t.Fatal("invalid drafts must not be sent")
	}
}

func TestVideoDraftSave(t *testing.T) {
	updater := &fakeUpdater{}
	draft := VideoDraftFrom(newsapi.Video{ID: "v1", Title: "Before"})
	draft.Title = " After "
	saved, err := draft.Save(context.Background(), updater, "v1")
	if err != nil || saved.Title != " After " {
		t.Fatalf("Save() = %+v, %v", saved, err)
	}
	if len(updater.videoCalls) != 1 || updater.videoCalls[0].Title != " After " {
		t.Fatalf("sent = %+v", updater.videoCalls)
	}
}

func TestDraftSavePropagatesAPIError(t *testing.T) {
	updater := &fakeUpdater{err: &newsapi.APIError{StatusCode: 403, Message: "locked"}}
	_, err := ArticleDraft{Title: "T"}.Save(context.Background(), updater, "a1")
	if err == nil || err.Error() != "locked" {
		t.Fatalf("err = %v", err)
	}
}
