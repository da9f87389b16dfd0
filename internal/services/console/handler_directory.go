package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	apperrors "github.com/sikiya/sikiya-console/internal/services/console/platform/errors"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

const usersPageSize = 10

var errUnknownRole = apperrors.EK(apperrors.KindValidation, "users.invalid_role", "unknown user role")

func (h *handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	requested := requestedPage(r)
	var users newsapi.Page[newsapi.User]
	identity, err := h.load(r, func(ctx context.Context, api newsapi.Session) error {
		var err error
		users, err = api.Users(ctx, requested, usersPageSize)
		return err
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := h.page(w, r)
	withOperator(&page, identity)
	h.renderUsers(w, r, page, http.StatusOK, users, message(page.Loc, err))
}

// handleUserRole assigns a role, then returns to the page the form came from.
func (h *handler) handleUserRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse role form"))
		return
	}
	id := r.PathValue(routepath.IDParam)
	role := strings.TrimSpace(r.PostFormValue("role"))
	returnPage, err := strconv.Atoi(r.PostFormValue("page"))
	if err != nil || returnPage < 1 {
		returnPage = 1
	}

	api := h.session(r)
	err = errUnknownRole
	if newsapi.ValidUserRole(role) {
		err = api.UpdateUserRole(r.Context(), id, role)
	}
	if err == nil {
		flash.Write(w, r, flash.Success("users.role_updated", ""), h.policy)
		httpx.WriteRedirect(w, r, routepath.UsersPage(returnPage), http.StatusSeeOther)
		return
	}
	if apperrors.KindOf(err) != apperrors.KindValidation {
		httpx.LogRequestError(r, "update user role", err)
	}

	page := h.adminPage(w, r)
	status, failure := describe(page.Loc, err)
	users, listErr := api.Users(r.Context(), returnPage, usersPageSize)
	if listErr != nil {
		httpx.LogRequestError(r, "list users", listErr)
	}
	h.renderUsers(w, r, page, status, users, failure)
}

func (h *handler) renderUsers(w http.ResponseWriter, r *http.Request, page templates.PageContext, status int, users newsapi.Page[newsapi.User], failure string) {
	view := templates.UsersView{
		Roles:      newsapi.UserRoles,
		Page:       users.Pagination.DisplayPage(),
		Pagination: pagination(users.Pagination, routepath.UsersPage),
		Error:      failure,
	}
	for _, u := range users.Items {
		view.Items = append(view.Items, userRow(u))
	}
	h.render(w, r, status, templates.UsersPage(page, view))
}

func (h *handler) handleAdmins(w http.ResponseWriter, r *http.Request) {
	var admins []newsapi.Admin
	identity, err := h.load(r, func(ctx context.Context, api newsapi.Session) error {
		var err error
		admins, err = api.Admins(ctx)
		return err
	})
	if errors.Is(err, errDenied) {
		return
	}
	page := h.page(w, r)
	withOperator(&page, identity)
	view := templates.AdminsView{Error: message(page.Loc, err)}
	for _, a := range admins {
		view.Items = append(view.Items, adminRow(a))
	}
	h.render(w, r, http.StatusOK, templates.AdminsPage(page, view))
}
