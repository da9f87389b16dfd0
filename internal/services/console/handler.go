package console

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/sikiya/sikiya-console/internal/platform/assets/imagecdn"
	"github.com/sikiya/sikiya-console/internal/services/console/guard"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/moderation"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/requestmeta"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
	"github.com/sikiya/sikiya-console/internal/services/console/session"
	"github.com/sikiya/sikiya-console/internal/services/console/static"
)

// Dependencies are the collaborators the console handler is composed from.
type Dependencies struct {
	API          *newsapi.Client
	Sessions     session.Store
	CDN          imagecdn.CDN
	SchemePolicy requestmeta.SchemePolicy
	// CSRFKey enables form protection. It must be 32 bytes when set.
	CSRFKey []byte
	// SecureCookies marks the CSRF cookie Secure; set it when served over TLS.
	SecureCookies bool
	// Logger receives the access log; log.Default() when nil.
	Logger *log.Logger
}

type handler struct {
	api       *newsapi.Client
	sessions  session.Store
	guard     *guard.Guard
	submitter *moderation.Submitter
	cdn       imagecdn.CDN
	policy    requestmeta.SchemePolicy
}

// NewHandler builds the console's root handler.
func NewHandler(deps Dependencies) (http.Handler, error) {
	if deps.API == nil {
		return nil, errors.New("news api client is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if len(deps.CSRFKey) != 0 && len(deps.CSRFKey) != 32 {
		return nil, errors.New("csrf key must be 32 bytes")
	}
	g, err := guard.New(deps.Sessions, guard.APIVerifier{Client: deps.API}, routepath.Login)
	if err != nil {
		return nil, err
	}
	h := &handler{
		api:       deps.API,
		sessions:  deps.Sessions,
		guard:     g,
		submitter: moderation.NewSubmitter(),
		cdn:       deps.CDN,
		policy:    deps.SchemePolicy,
	}

	middleware := []httpx.Middleware{
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.LogRequests(deps.Logger),
	}
	if len(deps.CSRFKey) != 0 {
		middleware = append(middleware, h.markPlaintext(), csrf.Protect(
			deps.CSRFKey,
			csrf.Path("/"),
			csrf.Secure(deps.SecureCookies),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(h.handleCSRFFailure)),
		))
	}
	return httpx.Chain(h.routes(), middleware...), nil
}

func (h *handler) routes() http.Handler {
	admin := http.NewServeMux()
	admin.HandleFunc(http.MethodGet+" "+routepath.Admin, h.handleDashboard)
	admin.HandleFunc(http.MethodGet+" "+routepath.AdminPrefix+"{$}", h.redirectToDashboard)

	admin.HandleFunc(http.MethodGet+" "+routepath.JournalistsPending, h.handleJournalistsPending)
	admin.HandleFunc(http.MethodPost+" "+routepath.JournalistApprovePattern, h.handleJournalistApprove)

	for _, kind := range []newsapi.Kind{newsapi.KindArticles, newsapi.KindVideos} {
		c := contentRoutes{h: h, kind: kind}
		admin.HandleFunc(http.MethodGet+" "+routepath.Pending(string(kind)), c.handlePending)
		admin.HandleFunc(http.MethodGet+" "+routepath.Approved(string(kind)), c.handleApproved)
		admin.HandleFunc(http.MethodGet+" "+routepath.ItemPattern(string(kind)), c.handleItem)
		admin.HandleFunc(http.MethodPost+" "+routepath.ItemPattern(string(kind)), c.handleItemSave)
		admin.HandleFunc(http.MethodPost+" "+routepath.ItemApprovalPattern(string(kind)), c.handleItemApproval)
	}

	admin.HandleFunc(http.MethodGet+" "+routepath.Users, h.handleUsers)
	admin.HandleFunc(http.MethodPost+" "+routepath.UserRolePattern, h.handleUserRole)
	admin.HandleFunc(http.MethodGet+" "+routepath.Admins, h.handleAdmins)
	admin.HandleFunc(routepath.AdminPrefix, h.handleNotFound)

	protected := h.guard.Require(admin)

	mux := http.NewServeMux()
	mux.Handle(routepath.StaticPrefix, httpx.Chain(
		http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(static.FS))),
		httpx.RequireMethod(http.MethodGet, http.MethodHead),
	))
	mux.HandleFunc(http.MethodGet+" "+routepath.Healthz, handleHealthz)
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.redirectToDashboard)

	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLoginGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginPost)
	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodGet+" "+routepath.ResetPassword, h.handleResetPasswordGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.ResetPassword, h.handleResetPasswordPost)

	mux.Handle(routepath.Admin, protected)
	mux.Handle(routepath.AdminPrefix, protected)
	mux.HandleFunc(routepath.Root, h.handleNotFound)
	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) redirectToDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Admin, http.StatusFound)
}

// markPlaintext tells gorilla/csrf when the request did not arrive over
// TLS, so its origin checks compare against http:// origins.
func (h *handler) markPlaintext() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requestmeta.IsHTTPSWithPolicy(r, h.policy) {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *handler) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	httpx.LogRequestError(r, "csrf check", csrf.FailureReason(r))
	page := h.page(w, r)
	h.render(w, r, http.StatusForbidden, errorPage(page, page.Loc.Sprintf("error.forbidden")))
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	page := h.adminPage(w, r)
	h.render(w, r, http.StatusNotFound, errorPage(page, page.Loc.Sprintf("error.not_found")))
}
