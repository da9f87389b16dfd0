package console

import (
	"context"
	"errors"
	"net/http"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var stats newsapi.Stats
	identity, err := h.load(r, func(ctx context.Context, api newsapi.Session) error {
		var err error
		stats, err = api.Stats(ctx)
		return err
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := h.page(w, r)
	withOperator(&page, identity)
	h.render(w, r, http.StatusOK, templates.DashboardPage(page, templates.DashboardView{
		Stats: stats,
		Error: message(page.Loc, err),
	}))
}
