package console

import (
	"context"
	"errors"
	"net/http"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

func (h *handler) handleJournalistsPending(w http.ResponseWriter, r *http.Request) {
	var pending []newsapi.Journalist
	identity, err := h.load(r, func(ctx context.Context, api newsapi.Session) error {
		var err error
		pending, err = api.PendingJournalists(ctx)
		return err
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := h.page(w, r)
	withOperator(&page, identity)
	h.renderJournalists(w, r, page, pending, message(page.Loc, err))
}

func (h *handler) handleJournalistApprove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(routepath.IDParam)
	api := h.session(r)
	approved, err := api.ApproveJournalist(r.Context(), id)
	if err == nil {
		flash.Write(w, r, flash.Success("journalists.approved", approved.FullName()), h.policy)
		httpx.WriteRedirect(w, r, routepath.JournalistsPending, http.StatusSeeOther)
		return
	}
	httpx.LogRequestError(r, "approve journalist", err)

	page := h.adminPage(w, r)
	failure := message(page.Loc, err)
	pending, listErr := api.PendingJournalists(r.Context())
	if listErr != nil {
		httpx.LogRequestError(r, "list pending journalists", listErr)
	}
	h.renderJournalists(w, r, page, pending, failure)
}

func (h *handler) renderJournalists(w http.ResponseWriter, r *http.Request, page templates.PageContext, pending []newsapi.Journalist, failure string) {
	view := templates.JournalistsView{Error: failure}
	for _, j := range pending {
		view.Items = append(view.Items, h.journalistRow(j))
	}
	h.render(w, r, http.StatusOK, templates.JournalistsPendingPage(page, view))
}
