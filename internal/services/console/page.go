package console

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/csrf"
	"golang.org/x/sync/errgroup"

	"github.com/sikiya/sikiya-console/internal/services/console/guard"
	"github.com/sikiya/sikiya-console/internal/services/console/i18n"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	apperrors "github.com/sikiya/sikiya-console/internal/services/console/platform/errors"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

// errDenied stops a page load whose authorization check failed.
var errDenied = errors.New("access denied")

// page builds the layout context shared by every console page and consumes
// any pending flash notice.
func (h *handler) page(w http.ResponseWriter, r *http.Request) templates.PageContext {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	query := r.URL.Query()
	query.Del(i18n.LangParam)

	page := templates.PageContext{
		Lang:         tag.String(),
		Loc:          i18n.Printer(tag),
		CurrentPath:  r.URL.Path,
		CurrentQuery: query,
		CSRFToken:    csrf.Token(r),
	}
	for _, supported := range i18n.Supported() {
		page.Languages = append(page.Languages, templates.LanguageLink{
			Code:   i18n.ShortCode(supported),
			URL:    i18n.LanguageURL(r.URL.Path, query, supported),
			Active: supported == tag,
		})
	}
	if notice, ok := flash.ReadAndClear(w, r, h.policy); ok {
		page.Flash = &notice
	}
	return page
}

func withOperator(page *templates.PageContext, identity newsapi.AdminIdentity) {
	page.Operator = &templates.Operator{Email: identity.Email, Role: identity.Role}
}

// adminPage is page for a request the guard already confirmed.
func (h *handler) adminPage(w http.ResponseWriter, r *http.Request) templates.PageContext {
	page := h.page(w, r)
	if identity, err := guard.Await(r.Context()); err == nil {
		withOperator(&page, identity)
	}
	return page
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	if err := httpx.Render(r.Context(), w, status, component); err != nil {
		httpx.LogRequestError(r, "render page", err)
		httpx.WriteError(w, err)
	}
}

func errorPage(page templates.PageContext, message string) templ.Component {
	return templates.ErrorPage(page, page.Loc.Sprintf("error.title"), message)
}

// session returns the API session for the request's credential.
func (h *handler) session(r *http.Request) newsapi.Session {
	token, _ := guard.Token(r.Context())
	return h.api.WithToken(token)
}

// load runs fetch concurrently with the request's authorization check and
// returns once both are done. When the check fails, fetch is cancelled and
// errDenied is returned; the guard answers the request and the caller must
// write nothing. Any other error comes from fetch and is shown inline.
func (h *handler) load(r *http.Request, fetch func(ctx context.Context, api newsapi.Session) error) (newsapi.AdminIdentity, error) {
	api := h.session(r)
	var identity newsapi.AdminIdentity
	var fetchErr error
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		id, err := guard.Await(r.Context())
		if err != nil {
			return errDenied
		}
		identity = id
		return nil
	})
	g.Go(func() error {
		fetchErr = fetch(ctx, api)
		return nil
	})
	if err := g.Wait(); err != nil {
		return newsapi.AdminIdentity{}, err
	}
	if fetchErr != nil {
		httpx.LogRequestError(r, "load page data", fetchErr)
	}
	return identity, fetchErr
}

// describe turns err into the status and message shown inline. Upstream
// failures keep the page usable and render with 200; typed console errors
// carry their own status and catalog key.
func describe(loc templates.Localizer, err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if key := apperrors.LocalizationKey(err); key != "" {
		return apperrors.HTTPStatus(err), loc.Sprintf(key)
	}
	var apiErr *newsapi.APIError
	var timeout interface{ Timeout() bool }
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return http.StatusOK, apiErr.Message
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeout) && timeout.Timeout():
		return http.StatusOK, loc.Sprintf("error.timeout")
	default:
		return http.StatusOK, loc.Sprintf("error.unavailable")
	}
}

// message is describe without the status.
func message(loc templates.Localizer, err error) string {
	_, msg := describe(loc, err)
	return msg
}
