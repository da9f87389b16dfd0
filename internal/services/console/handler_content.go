package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/moderation"
	apperrors "github.com/sikiya/sikiya-console/internal/services/console/platform/errors"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

const approvedPageSize = 20

// contentRoutes serves one content family; articles and videos share every
// page and differ only in the API calls behind them.
type contentRoutes struct {
	h    *handler
	kind newsapi.Kind
}

func (c contentRoutes) handlePending(w http.ResponseWriter, r *http.Request) {
	var rows []templates.ContentRow
	identity, err := c.h.load(r, func(ctx context.Context, api newsapi.Session) error {
		switch c.kind {
		case newsapi.KindVideos:
			videos, err := api.PendingVideos(ctx)
			for _, v := range videos {
				rows = append(rows, c.h.videoRow(v))
			}
			return err
		default:
			articles, err := api.PendingArticles(ctx)
			for _, a := range articles {
				rows = append(rows, c.h.articleRow(a))
			}
			return err
		}
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := c.h.page(w, r)
	withOperator(&page, identity)
	c.h.render(w, r, http.StatusOK, templates.PendingPage(page, string(c.kind), templates.ContentListView{
		Items: rows,
		Error: message(page.Loc, err),
	}))
}

func (c contentRoutes) handleApproved(w http.ResponseWriter, r *http.Request) {
	requested := requestedPage(r)
	var rows []templates.ContentRow
	var window newsapi.Pagination
	identity, err := c.h.load(r, func(ctx context.Context, api newsapi.Session) error {
		switch c.kind {
		case newsapi.KindVideos:
			published, err := api.ApprovedVideos(ctx, requested, approvedPageSize)
			for _, p := range published.Items {
				rows = append(rows, c.h.videoPublicationRow(p))
			}
			window = published.Pagination
			return err
		default:
			published, err := api.ApprovedArticles(ctx, requested, approvedPageSize)
			for _, p := range published.Items {
				rows = append(rows, c.h.articlePublicationRow(p))
			}
			window = published.Pagination
			return err
		}
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := c.h.page(w, r)
	withOperator(&page, identity)
	kind := string(c.kind)
	pager := pagination(window, func(n int) string {
		return routepath.ApprovedPage(kind, n)
	})
	c.h.render(w, r, http.StatusOK, templates.ApprovedPage(page, kind, templates.ApprovedView{
		Items:      rows,
		Pagination: pager,
		Error:      message(page.Loc, err),
	}))
}

func (c contentRoutes) handleItem(w http.ResponseWriter, r *http.Request) {
	view := templates.DetailView{
		Kind:    string(c.kind),
		ID:      r.PathValue(routepath.IDParam),
		Editing: r.URL.Query().Get(routepath.EditParam) == "1",
	}
	identity, err := c.h.load(r, func(ctx context.Context, api newsapi.Session) error {
		return c.fetchDetail(ctx, api, &view)
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := c.h.page(w, r)
	withOperator(&page, identity)
	if err != nil {
		view = templates.DetailView{Kind: view.Kind, ID: view.ID}
		view.Error = message(page.Loc, err)
	}
	c.h.render(w, r, http.StatusOK, templates.DetailPage(page, view))
}

func (c contentRoutes) fetchDetail(ctx context.Context, api newsapi.Session, view *templates.DetailView) error {
	switch c.kind {
	case newsapi.KindVideos:
		video, err := api.Video(ctx, view.ID)
		if err != nil {
			return err
		}
		c.h.videoDetail(view, video)
	default:
		article, err := api.Article(ctx, view.ID)
		if err != nil {
			return err
		}
		c.h.articleDetail(view, article)
	}
	return nil
}

// handleItemSave stores the edit form and shows the item as the API returned
// it. Failures keep the form open with the entered values.
func (c contentRoutes) handleItemSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse edit form"))
		return
	}
	view := templates.DetailView{Kind: string(c.kind), ID: r.PathValue(routepath.IDParam), Loaded: true}
	form := templates.DraftForm{
		Title:     r.PostFormValue("title"),
		Content:   r.PostFormValue("content"),
		Highlight: r.PostFormValue("highlight"),
	}

	api := c.h.session(r)
	var err error
	switch c.kind {
	case newsapi.KindVideos:
		var saved newsapi.Video
		saved, err = moderation.VideoDraft{Title: form.Title}.Save(r.Context(), api, view.ID)
		if err == nil {
			c.h.videoDetail(&view, saved)
		}
	default:
		var saved newsapi.Article
		saved, err = moderation.ArticleDraft{Title: form.Title, Content: form.Content, Highlight: form.Highlight}.Save(r.Context(), api, view.ID)
		if err == nil {
			c.h.articleDetail(&view, saved)
		}
	}

	page := c.h.adminPage(w, r)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindValidation {
			httpx.LogRequestError(r, "save draft", err)
		}
		status, msg := describe(page.Loc, err)
		view.Title = strings.TrimSpace(form.Title)
		view.Editing = true
		view.Draft = form
		view.DraftError = msg
		c.h.render(w, r, status, templates.DetailPage(page, view))
		return
	}
	saved := flash.Success("content.saved", "")
	page.Flash = &saved
	c.h.render(w, r, http.StatusOK, templates.DetailPage(page, view))
}

// handleItemApproval submits a decision. Success returns to the queue with a
// notice; any failure re-renders the decision form with the entered values.
func (c contentRoutes) handleItemApproval(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse decision form"))
		return
	}
	id := r.PathValue(routepath.IDParam)
	decision := moderation.Decision{
		Status: r.PostFormValue("status"),
		Reason: r.PostFormValue("reason"),
	}
	outcome := c.h.submitter.Submit(r.Context(), c.h.session(r), c.kind, id, decision)
	if outcome.State == moderation.StateSucceeded {
		flash.Write(w, r, flash.Success(outcome.MessageKey, ""), c.h.policy)
		httpx.WriteRedirect(w, r, outcome.Redirect, http.StatusSeeOther)
		return
	}
	if !moderation.IsValidationError(outcome.Err) {
		httpx.LogRequestError(r, "submit decision", outcome.Err)
	}

	page := c.h.adminPage(w, r)
	status, msg := describe(page.Loc, outcome.Err)
	c.h.render(w, r, status, templates.DetailPage(page, templates.DetailView{
		Kind:         string(c.kind),
		ID:           id,
		Loaded:       true,
		DecisionOnly: true,
		Title:        strings.TrimSpace(r.PostFormValue("title")),
		Decision: templates.DecisionForm{
			Status: outcome.Decision.Status,
			Reason: outcome.Decision.Reason,
			Error:  msg,
		},
	}))
}

// requestedPage reads ?page=. Values past the last page are passed through;
// the API answers with its own window.
func requestedPage(r *http.Request) int {
	page, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
