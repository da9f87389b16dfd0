package console

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sikiya/sikiya-console/internal/platform/assets/imagecdn"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
)

const adminIdentity = `{"isAdmin":true,"email":"editor@sikiya.test","role":"admin"}`

type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   string
}

// fakeAPI is an in-process news API recording every request it receives.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	routes map[string]http.HandlerFunc
	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{routes: map[string]http.HandlerFunc{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	f.handle(http.MethodGet, "/verify-admin", reply(http.StatusOK, adminIdentity))
	return f
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		reply(http.StatusNotFound, `{"error":"no such route"}`)(w, r)
		return
	}
	h(w, r)
}

func (f *fakeAPI) callsTo(method, path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

type fakeSessions struct {
	mu      sync.Mutex
	token   string
	set     []string
	cleared int
}

func (f *fakeSessions) Get(*http.Request) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeSessions) Set(_ http.ResponseWriter, _ *http.Request, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = append(f.set, token)
	return nil
}

func (f *fakeSessions) Clear(http.ResponseWriter, *http.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.token = ""
	return nil
}

func newTestHandler(t *testing.T, api *fakeAPI, token string) (http.Handler, *fakeSessions) {
	t.Helper()
	client, err := newsapi.New(api.server.URL, api.server.Client())
	if err != nil {
		t.Fatalf("newsapi.New: %v", err)
	}
	sessions := &fakeSessions{token: token}
	h, err := NewHandler(Dependencies{
		API:      client,
		Sessions: sessions,
		CDN:      imagecdn.New("https://cdn.sikiya.test"),
		Logger:   log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, sessions
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept-Language", "en-US")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept-Language", "en-US")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func hasCookie(rr *httptest.ResponseRecorder, name string) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

func TestNewHandlerValidatesDependencies(t *testing.T) {
	t.Parallel()

	client, err := newsapi.New("https://api.sikiya.test", nil)
	if err != nil {
		t.Fatalf("newsapi.New: %v", err)
	}
	tests := []struct {
		name string
		deps Dependencies
	}{
		{name: "missing api", deps: Dependencies{Sessions: &fakeSessions{}}},
		{name: "missing sessions", deps: Dependencies{API: client}},
		{name: "short csrf key", deps: Dependencies{API: client, Sessions: &fakeSessions{}, CSRFKey: []byte("short")}},
	}
	for _, tc := range tests {
		if _, err := NewHandler(tc.deps); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestProtectedPageWithoutCredentialRedirectsWithoutCallingAPI(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h, _ := newTestHandler(t, api, "")

	rr := get(h, "/admin/articles/pending")
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if got := rr.Header().Get("Location"); got != "/login?redirect=/admin/articles/pending" {
		t.Fatalf("Location = %q", got)
	}
	if n := api.total(); n != 0 {
		t.Fatalf("api calls = %d, want 0", n)
	}
}

func TestProtectedPageForNonAdminRedirectsAndHidesData(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/verify-admin", reply(http.StatusOK, `{"isAdmin":false,"email":"reader@sikiya.test","role":"general"}`))
	api.handle(http.MethodGet, "/admin/articles/pending", reply(http.StatusOK, `[{"_id":"a1","article_title":"Secret draft"}]`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin/articles/pending")
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if got := rr.Header().Get("Location"); got != "/login?redirect=/admin/articles/pending" {
		t.Fatalf("Location = %q", got)
	}
	if strings.Contains(rr.Body.String(), "Secret draft") {
		t.Fatalf("protected data leaked: %q", rr.Body.String())
	}
}

func TestVerificationFailureRedirectsToLogin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/verify-admin", reply(http.StatusUnauthorized, `{"error":"token expired"}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/login?redirect=/admin" {
		t.Fatalf("status = %d Location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestDashboardRendersStatsForAdmin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/stats", reply(http.StatusOK, `{"totalUsers":1234,"totalArticles":56}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"editor@sikiya.test", "1234", "56", "Dashboard"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	calls := api.callsTo(http.MethodGet, "/admin/stats")
	if len(calls) != 1 || calls[0].Auth != "Bearer tok" {
		t.Fatalf("stats calls = %+v", calls)
	}
}

func TestPendingFetchFailureRendersBanner(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/articles/pending", reply(http.StatusInternalServerError, `{"error":"db down"}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin/articles/pending")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `role="alert"`) || !strings.Contains(body, "db down") {
		t.Fatalf("banner missing: %q", body)
	}
	if strings.Contains(body, "No articles waiting") {
		t.Fatalf("empty state shown alongside error")
	}
}

func TestPendingArticlesListsItems(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/articles/pending", reply(http.StatusOK, `[{
		"_id":"a1",
		"article_title":"Floods in Kinshasa",
		"article_highlight":"<p>Rain &amp; rivers</p>",
		"article_front_image":"articles/a1/front.jpg",
		"concerned_city":"Kinshasa",
		"concerned_country":"RDC",
		"journalist_id":{"_id":"j1","firstname":"Amani","lastname":"Mbuyi"}
	}]`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin/articles/pending")
	body := rr.Body.String()
	for _, want := range []string{
		`href="/admin/articles/a1"`,
		"Floods in Kinshasa",
		"Rain &amp; rivers",
		`src="https://cdn.sikiya.test/articles/a1/front.jpg"`,
		"Amani Mbuyi",
		"Kinshasa, RDC",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestPendingVideosEmptyState(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/videos/pending", reply(http.StatusOK, `[]`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin/videos/pending")
	if !strings.Contains(rr.Body.String(), "No videos waiting") {
		t.Fatalf("empty state missing: %q", rr.Body.String())
	}
}

func TestApprovedPagePassesRequestedPageThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		target    string
		response  string
		wantPage  string
		wantPrev  string
		wantNext  string
		wantNoNav string
	}{
		{
			name:     "middle page",
			target:   "/admin/articles/approved?page=2",
			response: `{"articles":[],"pagination":{"total":45,"pages":3,"page":2}}`,
			wantPage: "2",
			wantPrev: `href="/admin/articles/approved"`,
			wantNext: `href="/admin/articles/approved?page=3"`,
		},
		{
			name:      "past the end",
			target:    "/admin/articles/approved?page=9",
			response:  `{"articles":[],"pagination":{"total":45,"pages":3,"page":9}}`,
			wantPage:  "9",
			wantPrev:  `href="/admin/articles/approved?page=2"`,
			wantNoNav: `rel="next"`,
		},
		{
			name:     "garbage page",
			target:   "/admin/articles/approved?page=abc",
			response: `{"articles":[],"pagination":{"total":45,"pages":3,"page":1}}`,
			wantPage: "1",
			wantNext: `href="/admin/articles/approved?page=2"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI(t)
			api.handle(http.MethodGet, "/admin/articles/approved", reply(http.StatusOK, tc.response))
			h, _ := newTestHandler(t, api, "tok")

			rr := get(h, tc.target)
			calls := api.callsTo(http.MethodGet, "/admin/articles/approved")
			if len(calls) != 1 {
				t.Fatalf("approved calls = %d", len(calls))
			}
			if got := calls[0].Query.Get("page"); got != tc.wantPage {
				t.Fatalf("page = %q, want %q", got, tc.wantPage)
			}
			if got := calls[0].Query.Get("limit"); got != "20" {
				t.Fatalf("limit = %q, want 20", got)
			}
			body := rr.Body.String()
			for _, want := range []string{tc.wantPrev, tc.wantNext} {
				if want != "" && !strings.Contains(body, want) {
					t.Fatalf("body missing %q", want)
				}
			}
			if tc.wantNoNav != "" && strings.Contains(body, tc.wantNoNav) {
				t.Fatalf("body unexpectedly contains %q", tc.wantNoNav)
			}
		})
	}
}

func TestApprovedRowsAreNotLinked(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/videos/approved", reply(http.StatusOK, `{
		"videos":[{"_id":"p1","video_id":{"_id":"v1","video_title":"Market day","video_link":"videos/v1.mp4"},"publisher_id":{"displayName":"Desk"}}],
		"pagination":{"total":1,"pages":1,"page":1}
	}`))
	h, _ := newTestHandler(t, api, "tok")

	body := get(h, "/admin/videos/approved").Body.String()
	if !strings.Contains(body, "Market day") || !strings.Contains(body, "Desk") {
		t.Fatalf("row missing: %q", body)
	}
	if strings.Contains(body, `href="/admin/videos/v1"`) {
		t.Fatalf("published row links to review page")
	}
}

func TestItemDetailRendersMarkdownSafely(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/articles/a1", reply(http.StatusOK, `{
		"_id":"a1",
		"article_title":"Budget vote",
		"article_content":"Parliament **passed** it.<script>alert(1)</script>",
		"article_other_images":["articles/a1/2.jpg","file:///phone/3.jpg"]
	}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin/articles/a1")
	body := rr.Body.String()
	if !strings.Contains(body, "<strong>passed</strong>") {
		t.Fatalf("markdown not rendered: %q", body)
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Fatalf("raw html passed through")
	}
	if !strings.Contains(body, "https://cdn.sikiya.test/articles/a1/2.jpg") || strings.Contains(body, "file:///phone") {
		t.Fatalf("gallery not resolved: %q", body)
	}
	if !strings.Contains(body, `action="/admin/articles/a1/approval"`) {
		t.Fatalf("decision form missing")
	}
}

func TestItemDetailFetchFailureShowsBanner(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/videos/v404", reply(http.StatusNotFound, `{"message":"Video not found"}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := get(h, "/admin/videos/v404")
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, "Video not found") {
		t.Fatalf("status = %d body = %q", rr.Code, body)
	}
	if strings.Contains(body, `action="/admin/videos/v404/approval"`) {
		t.Fatalf("decision form shown for unloaded item")
	}
}

func TestDecisionValidationFailureSendsNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{name: "no status", form: url.Values{"title": {"Budget vote"}}, want: "Choose approve or reject."},
		{name: "reject without reason", form: url.Values{"status": {"rejected"}, "reason": {"   "}}, want: "Give a reason for the rejection."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI(t)
			h, _ := newTestHandler(t, api, "tok")

			rr := postForm(h, "/admin/articles/a1/approval", tc.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
			}
			if !strings.Contains(rr.Body.String(), tc.want) {
				t.Fatalf("body missing %q", tc.want)
			}
			if n := len(api.callsTo(http.MethodPatch, "/admin/articles/a1/approval")); n != 0 {
				t.Fatalf("approval calls = %d, want 0", n)
			}
		})
	}
}

func TestDecisionSuccessSendsOneRequestAndRedirects(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/articles/a1/approval", reply(http.StatusOK, `{"ok":true}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/articles/a1/approval", url.Values{"status": {"approved"}, "reason": {""}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if got := rr.Header().Get("Location"); got != "/admin/articles/pending" {
		t.Fatalf("Location = %q", got)
	}
	if !hasCookie(rr, flash.CookieName) {
		t.Fatalf("flash cookie not set")
	}
	calls := api.callsTo(http.MethodPatch, "/admin/articles/a1/approval")
	if len(calls) != 1 {
		t.Fatalf("approval calls = %d, want 1", len(calls))
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(calls[0].Body), &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent["approval_status"] != "approved" {
		t.Fatalf("sent = %v", sent)
	}
	if _, ok := sent["approval_reason"]; ok {
		t.Fatalf("blank reason was sent: %v", sent)
	}
}

func TestDecisionRejectionSendsReason(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/videos/v1/approval", reply(http.StatusOK, `{}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/videos/v1/approval", url.Values{"status": {"rejected"}, "reason": {" Blurry footage "}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin/videos/pending" {
		t.Fatalf("status = %d Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	calls := api.callsTo(http.MethodPatch, "/admin/videos/v1/approval")
	if len(calls) != 1 || !strings.Contains(calls[0].Body, `"approval_reason":"Blurry footage"`) {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestDecisionServerFailureKeepsInputs(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/articles/a1/approval", reply(http.StatusInternalServerError, `{"error":"db down"}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/articles/a1/approval", url.Values{"status": {"rejected"}, "reason": {"Unsourced claims"}, "title": {"Budget vote"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	for _, want := range []string{"db down", "Unsourced claims", `value="rejected" checked`, "Budget vote"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	if n := len(api.callsTo(http.MethodPatch, "/admin/articles/a1/approval")); n != 1 {
		t.Fatalf("approval calls = %d, want 1", n)
	}
}

func TestMutationByNonAdminIsNeverSent(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/verify-admin", reply(http.StatusOK, `{"isAdmin":false}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/articles/a1/approval", url.Values{"status": {"approved"}})
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if n := len(api.callsTo(http.MethodPatch, "/admin/articles/a1/approval")); n != 0 {
		t.Fatalf("approval calls = %d, want 0", n)
	}
}

func TestEditRoundTripShowsSavedEntity(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/articles/a1", reply(http.StatusOK, `{
		"_id":"a1",
		"article_title":"Budget vote (updated)",
		"article_content":"Now with **sources**."
	}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/articles/a1", url.Values{
		"title":     {"  Budget vote (edited)  "},
		"content":   {"Now with **sources**."},
		"highlight": {" Short\n"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	calls := api.callsTo(http.MethodPatch, "/admin/articles/a1")
	if len(calls) != 1 {
		t.Fatalf("update calls = %d, want 1", len(calls))
	}
	var sent newsapi.ArticleUpdate
	if err := json.Unmarshal([]byte(calls[0].Body), &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent.Title != "  Budget vote (edited)  " || sent.Highlight != " Short\n" {
		t.Fatalf("sent = %+v", sent)
	}
	body := rr.Body.String()
	for _, want := range []string{"Budget vote (updated)", "<strong>sources</strong>", "Changes saved."} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestEditBlankTitleIsRejectedLocally(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/videos/v1", url.Values{"title": {"   "}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rr.Body.String(), "The title cannot be empty.") {
		t.Fatalf("validation message missing")
	}
	if n := len(api.callsTo(http.MethodPatch, "/admin/videos/v1")); n != 0 {
		t.Fatalf("update calls = %d, want 0", n)
	}
}

func TestEditModeCancelSendsNothing(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/articles/a1", reply(http.StatusOK, `{"_id":"a1","article_title":"Budget vote","article_content":"Draft body"}`))
	h, _ := newTestHandler(t, api, "tok")

	body := get(h, "/admin/articles/a1?edit=1").Body.String()
	for _, want := range []string{`name="title" required value="Budget vote"`, "Draft body", `class="button secondary" href="/admin/articles/a1"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("edit form missing %q", want)
		}
	}
	get(h, "/admin/articles/a1")
	if n := len(api.callsTo(http.MethodPatch, "/admin/articles/a1")); n != 0 {
		t.Fatalf("update calls = %d, want 0", n)
	}
}

func TestJournalistApprove(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/journalists/j1/approve", reply(http.StatusOK, `{"_id":"j1","firstname":"Amani","lastname":"Mbuyi"}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/journalists/j1/approve", url.Values{})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin/journalists/pending" {
		t.Fatalf("status = %d Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if !hasCookie(rr, flash.CookieName) {
		t.Fatalf("flash cookie not set")
	}
}

func TestJournalistApproveFailureRendersBanner(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/journalists/j1/approve", reply(http.StatusConflict, `{"error":"already approved"}`))
	api.handle(http.MethodGet, "/admin/journalists/pending", reply(http.StatusOK, `[{"_id":"j2","firstname":"Neema"}]`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/journalists/j1/approve", url.Values{})
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, "already approved") || !strings.Contains(body, "Neema") {
		t.Fatalf("status = %d body = %q", rr.Code, body)
	}
}

func TestUserRoleUpdate(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPatch, "/admin/users/u1/role", reply(http.StatusOK, `{}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/users/u1/role", url.Values{"role": {"journalist"}, "page": {"3"}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin/users?page=3" {
		t.Fatalf("status = %d Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	calls := api.callsTo(http.MethodPatch, "/admin/users/u1/role")
	if len(calls) != 1 || !strings.Contains(calls[0].Body, `"role":"journalist"`) {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestUserRoleRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/users", reply(http.StatusOK, `{"users":[{"_id":"u1","email":"reader@sikiya.test","role":"general"}],"pagination":{"total":1,"pages":1,"page":1}}`))
	h, _ := newTestHandler(t, api, "tok")

	rr := postForm(h, "/admin/users/u1/role", url.Values{"role": {"admin"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if n := len(api.callsTo(http.MethodPatch, "/admin/users/u1/role")); n != 0 {
		t.Fatalf("role calls = %d, want 0", n)
	}
	if !strings.Contains(rr.Body.String(), "reader@sikiya.test") {
		t.Fatalf("user list not re-rendered")
	}
}

func TestUsersPageRequestsTenPerPage(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/users", reply(http.StatusOK, `{"users":[],"pagination":{"total":0,"pages":0}}`))
	h, _ := newTestHandler(t, api, "tok")

	get(h, "/admin/users")
	calls := api.callsTo(http.MethodGet, "/admin/users")
	if len(calls) != 1 || calls[0].Query.Get("limit") != "10" || calls[0].Query.Get("page") != "1" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestAdminsPage(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/admin/admins", reply(http.StatusOK, `[{"firstname":"Grace","lastname":"Ilunga","department":"News","total_articles_published":42}]`))
	h, _ := newTestHandler(t, api, "tok")

	body := get(h, "/admin/admins").Body.String()
	if !strings.Contains(body, "Grace Ilunga") || !strings.Contains(body, "42") {
		t.Fatalf("body = %q", body)
	}
}

func TestLoginRedirects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     string
		redirect string
		want     string
	}{
		{name: "admin to requested console page", role: "admin", redirect: "/admin/articles/pending", want: "/admin/articles/pending"},
		{name: "admin without target", role: "admin", want: "/admin"},
		{name: "admin with foreign target", role: "admin", redirect: "https://evil.test/admin", want: "/admin"},
		{name: "admin with public target", role: "admin", redirect: "/about", want: "/admin"},
		{name: "journalist without target", role: "journalist", want: "/"},
		{name: "journalist with target", role: "journalist", redirect: "/about", want: "/about"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI(t)
			api.handle(http.MethodPost, "/signin", reply(http.StatusOK, `{"token":"fresh","role":"`+tc.role+`"}`))
			h, sessions := newTestHandler(t, api, "")

			rr := postForm(h, "/login", url.Values{"email": {"ed@sikiya.test"}, "password": {"pw"}, "redirect": {tc.redirect}})
			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := rr.Header().Get("Location"); got != tc.want {
				t.Fatalf("Location = %q, want %q", got, tc.want)
			}
			if len(sessions.set) != 1 || sessions.set[0] != "fresh" {
				t.Fatalf("stored tokens = %v", sessions.set)
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/signin", reply(http.StatusUnauthorized, `{"error":"Invalid credentials"}`))
	h, sessions := newTestHandler(t, api, "")

	rr := postForm(h, "/login", url.Values{"email": {"ed@sikiya.test"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank password status = %d", rr.Code)
	}
	if n := len(api.callsTo(http.MethodPost, "/signin")); n != 0 {
		t.Fatalf("signin calls = %d, want 0", n)
	}

	rr = postForm(h, "/login", url.Values{"email": {"ed@sikiya.test"}, "password": {"wrong"}})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Invalid credentials") {
		t.Fatalf("status = %d body = %q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `value="ed@sikiya.test"`) {
		t.Fatalf("email not kept")
	}
	if len(sessions.set) != 0 {
		t.Fatalf("credential stored after failure")
	}
}

func TestLoginPageKeepsOnlyLocalRedirect(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h, _ := newTestHandler(t, api, "")

	if body := get(h, "/login?redirect=/admin/users").Body.String(); !strings.Contains(body, `name="redirect" value="/admin/users"`) {
		t.Fatalf("redirect not carried: %q", body)
	}
	if body := get(h, "/login?redirect=//evil.test").Body.String(); strings.Contains(body, `name="redirect"`) {
		t.Fatalf("foreign redirect carried")
	}
}

func TestLogoutClearsCredential(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h, sessions := newTestHandler(t, api, "tok")

	rr := postForm(h, "/logout", url.Values{})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if sessions.cleared != 1 {
		t.Fatalf("cleared = %d", sessions.cleared)
	}
	if n := api.total(); n != 0 {
		t.Fatalf("api calls = %d, want 0", n)
	}
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantCalls  int
	}{
		{name: "mismatch", form: url.Values{"token": {"t1"}, "password": {"longenough"}, "confirm": {"longenougx"}}, wantStatus: http.StatusUnprocessableEntity},
		{name: "too short", form: url.Values{"token": {"t1"}, "password": {"short"}, "confirm": {"short"}}, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing confirm", form: url.Values{"token": {"t1"}, "password": {"longenough"}}, wantStatus: http.StatusUnprocessableEntity},
		{name: "ok", form: url.Values{"token": {"t1"}, "password": {"longenough"}, "confirm": {"longenough"}}, wantStatus: http.StatusSeeOther, wantCalls: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI(t)
			api.handle(http.MethodPost, "/reset-password", reply(http.StatusOK, `{}`))
			h, _ := newTestHandler(t, api, "")

			rr := postForm(h, "/reset-password", tc.form)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			calls := api.callsTo(http.MethodPost, "/reset-password")
			if len(calls) != tc.wantCalls {
				t.Fatalf("reset calls = %d, want %d", len(calls), tc.wantCalls)
			}
			if tc.wantCalls == 1 && !strings.Contains(calls[0].Body, `"newPassword":"longenough"`) {
				t.Fatalf("sent = %q", calls[0].Body)
			}
		})
	}
}

func TestResetPasswordPageValidatesToken(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/validate-reset-token/good", reply(http.StatusOK, `{"valid":true}`))
	api.handle(http.MethodGet, "/validate-reset-token/old", reply(http.StatusOK, `{"valid":false,"error":"Token expired"}`))
	h, _ := newTestHandler(t, api, "")

	if body := get(h, "/reset-password?token=good").Body.String(); !strings.Contains(body, `name="confirm"`) {
		t.Fatalf("form missing for valid token")
	}
	body := get(h, "/reset-password?token=old").Body.String()
	if !strings.Contains(body, "Token expired") || strings.Contains(body, `name="confirm"`) {
		t.Fatalf("expired token body = %q", body)
	}
	if body := get(h, "/reset-password").Body.String(); !strings.Contains(body, "This reset link is invalid or has expired.") {
		t.Fatalf("missing token body = %q", body)
	}
}

func TestPublicRoutes(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h, _ := newTestHandler(t, api, "")

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantIn     string
	}{
		{name: "healthz", method: http.MethodGet, target: "/healthz", wantStatus: http.StatusOK, wantIn: "ok"},
		{name: "stylesheet", method: http.MethodGet, target: "/static/console.css", wantStatus: http.StatusOK},
		{name: "script", method: http.MethodGet, target: "/static/console.js", wantStatus: http.StatusOK, wantIn: "data-disable-on-submit"},
		{name: "static post rejected", method: http.MethodPost, target: "/static/console.js", wantStatus: http.StatusMethodNotAllowed},
		{name: "root", method: http.MethodGet, target: "/", wantStatus: http.StatusFound},
		{name: "unknown", method: http.MethodGet, target: "/nowhere", wantStatus: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, nil))
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if tc.wantIn != "" && !strings.Contains(rr.Body.String(), tc.wantIn) {
				t.Fatalf("body missing %q", tc.wantIn)
			}
		})
	}
}

func TestLanguageSwitchPersistsPreference(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h, _ := newTestHandler(t, api, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login?lang=fr", nil))
	if !hasCookie(rr, "sikiya-language") {
		t.Fatalf("language cookie not set")
	}
	if !strings.Contains(rr.Body.String(), `lang="fr-FR"`) || !strings.Contains(rr.Body.String(), "Se connecter") {
		t.Fatalf("page not rendered in French")
	}
}

func TestCSRFRejectsFormWithoutToken(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client, err := newsapi.New(api.server.URL, api.server.Client())
	if err != nil {
		t.Fatalf("newsapi.New: %v", err)
	}
	h, err := NewHandler(Dependencies{
		API:      client,
		Sessions: &fakeSessions{token: "tok"},
		CSRFKey:  []byte("0123456789abcdef0123456789abcdef"),
		Logger:   log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	rr := postForm(h, "/admin/articles/a1/approval", url.Values{"status": {"approved"}})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if n := api.total(); n != 0 {
		t.Fatalf("api calls = %d, want 0", n)
	}

	page := get(h, "/login")
	if !strings.Contains(page.Body.String(), `name="gorilla.csrf.Token"`) {
		t.Fatalf("login form has no csrf field")
	}
}
