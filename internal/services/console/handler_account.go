package console

import (
	"net/http"
	"strings"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	apperrors "github.com/sikiya/sikiya-console/internal/services/console/platform/errors"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/requestmeta"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

const minPasswordLength = 8

var (
	errCredentialsRequired = apperrors.EK(apperrors.KindValidation, "login.required", "email and password are required")
	errResetFieldsRequired = apperrors.EK(apperrors.KindValidation, "reset.fields_required", "new password and confirmation are required")
	errPasswordTooShort    = apperrors.EK(apperrors.KindValidation, "reset.too_short", "password is too short")
	errPasswordMismatch    = apperrors.EK(apperrors.KindValidation, "reset.mismatch", "passwords do not match")
)

func (h *handler) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	redirect, _ := requestmeta.LocalPath(r.URL.Query().Get("redirect"))
	h.render(w, r, http.StatusOK, templates.LoginPage(h.page(w, r), templates.LoginView{Redirect: redirect}))
}

func (h *handler) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse sign-in form"))
		return
	}
	view := templates.LoginView{Email: strings.TrimSpace(r.PostFormValue("email"))}
	view.Redirect, _ = requestmeta.LocalPath(r.PostFormValue("redirect"))
	password := r.PostFormValue("password")

	page := h.page(w, r)
	if view.Email == "" || password == "" {
		status, msg := describe(page.Loc, errCredentialsRequired)
		view.Error = msg
		h.render(w, r, status, templates.LoginPage(page, view))
		return
	}

	result, err := h.api.SignIn(r.Context(), view.Email, password)
	if err != nil {
		httpx.LogRequestError(r, "sign in", err)
		status, msg := describe(page.Loc, err)
		view.Error = msg
		h.render(w, r, status, templates.LoginPage(page, view))
		return
	}
	if err := h.sessions.Set(w, r, result.Token); err != nil {
		httpx.LogRequestError(r, "store credential", err)
		view.Error = page.Loc.Sprintf("error.unavailable")
		h.render(w, r, http.StatusInternalServerError, templates.LoginPage(page, view))
		return
	}
	httpx.WriteRedirect(w, r, signInRedirect(result.Role, view.Redirect), http.StatusSeeOther)
}

// signInRedirect picks where a fresh sign-in lands. Administrators go to the
// requested console page, or the dashboard; other roles go to the requested
// page, or the site root.
func signInRedirect(role, redirect string) string {
	target, ok := requestmeta.LocalPath(redirect)
	if role == newsapi.RoleAdmin {
		if ok && isConsolePath(target) {
			return target
		}
		return routepath.Admin
	}
	if ok {
		return target
	}
	return routepath.Root
}

func isConsolePath(target string) bool {
	path, _, _ := strings.Cut(target, "?")
	return path == routepath.Admin || strings.HasPrefix(path, routepath.AdminPrefix)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		httpx.LogRequestError(r, "clear credential", err)
	}
	flash.Write(w, r, flash.Notice{Kind: flash.KindInfo, Key: "login.signed_out"}, h.policy)
	httpx.WriteRedirect(w, r, routepath.Login, http.StatusSeeOther)
}

func (h *handler) handleResetPasswordGet(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r)
	view := templates.ResetPasswordView{Token: strings.TrimSpace(r.URL.Query().Get("token"))}
	if view.Token != "" {
		result, err := h.api.ValidateResetToken(r.Context(), view.Token)
		switch {
		case err != nil:
			httpx.LogRequestError(r, "validate reset token", err)
			view.TokenError = message(page.Loc, err)
		case !result.Valid:
			view.TokenError = result.Error
		default:
			view.TokenValid = true
		}
	}
	h.render(w, r, http.StatusOK, templates.ResetPasswordPage(page, view))
}

func (h *handler) handleResetPasswordPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse reset form"))
		return
	}
	page := h.page(w, r)
	view := templates.ResetPasswordView{Token: strings.TrimSpace(r.PostFormValue("token"))}
	if view.Token == "" {
		h.render(w, r, http.StatusUnprocessableEntity, templates.ResetPasswordPage(page, view))
		return
	}
	view.TokenValid = true

	password := r.PostFormValue("password")
	if err := validateNewPassword(password, r.PostFormValue("confirm")); err != nil {
		status, msg := describe(page.Loc, err)
		view.Error = msg
		h.render(w, r, status, templates.ResetPasswordPage(page, view))
		return
	}
	if err := h.api.ResetPassword(r.Context(), view.Token, password); err != nil {
		httpx.LogRequestError(r, "reset password", err)
		view.Error = message(page.Loc, err)
		h.render(w, r, http.StatusOK, templates.ResetPasswordPage(page, view))
		return
	}
	flash.Write(w, r, flash.Success("reset.success", ""), h.policy)
	httpx.WriteRedirect(w, r, routepath.Login, http.StatusSeeOther)
}

func validateNewPassword(password, confirm string) error {
	switch {
	case password == "" || confirm == "":
		return errResetFieldsRequired
	case len([]rune(password)) < minPasswordLength:
		return errPasswordTooShort
	case password != confirm:
		return errPasswordMismatch
	}
	return nil
}
