package newsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

type fakeAPI struct {
	mu     sync.Mutex
	calls  []recordedCall
	routes map[string]func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	f.mu.Unlock()
	if h, ok := f.routes[r.Method+" "+r.URL.Path]; ok {
		h(w, r)
		return
	}
	http.NotFound(w, r)
}

func writeBody(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}
}

func newFakeAPIClient(t *testing.T, routes map[string]func(http.ResponseWriter, *http.Request)) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{routes: routes}
	return newTestClient(t, api.ServeHTTP), api
}

func TestSignIn(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /signin": writeBody(`{"token":"abc","role":"admin"}`),
	})
	got, err := client.SignIn(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if got.Token != "abc" || got.Role != "admin" {
		t.Fatalf("SignIn() = %+v", got)
	}
	if api.calls[0].Auth != "" {
		t.Fatal("sign in must not send a bearer token")
	}
	var body map[string]string
	_ = json.Unmarshal([]byte(api.calls[0].Body), &body)
	if body["email"] != "a@b.c" || body["password"] != "pw" {
		t.Fatalf("body = %v", body)
	}
}

func TestSignInWithoutTokenFails(t *testing.T) {
	client, _ := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /signin": writeBody(`{"role":"admin"}`),
	})
	if _, err := client.SignIn(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatal("expected error")
	}
}

func TestVerifyAdminDecodesIdentity(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /verify-admin": writeBody(`{"isAdmin":true,"email":"ed@sikiya.com","role":"admin"}`),
	})
	got, err := client.WithToken("tok").VerifyAdmin(context.Background())
	if err != nil {
		t.Fatalf("VerifyAdmin: %v", err)
	}
	if !got.IsAdmin || got.Email != "ed@sikiya.com" || got.Role != "admin" {
		t.Fatalf("identity = %+v", got)
	}
	if api.calls[0].Auth != "Bearer tok" {
		t.Fatalf("Authorization = %q", api.calls[0].Auth)
	}
}

func TestStatsMissingFieldsAreZero(t *testing.T) {
	client, _ := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /admin/stats": writeBody(`{"totalUsers":12,"totalArticles":4}`),
	})
	got, err := client.WithToken("tok").Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got != (Stats{TotalUsers: 12, TotalArticles: 4}) {
		t.Fatalf("Stats() = %+v", got)
	}
}

func TestPendingArticlesDecodesJournalistShapes(t *testing.T) {
	client, _ := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /admin/articles/pending": writeBody(`[
			{"_id":"a1","article_title":"One","journalist_id":"j1","created_on":"2025-03-01T10:00:00.000Z"},
			{"_id":"a2","article_title":"Two","journalist_id":{"_id":"j2","firstname":"Ama","lastname":"Kone"}},
			{"_id":"a3","article_title":"Three","journalist_id":null,"created_on":""}
		]`),
	})
	got, err := client.WithToken("tok").PendingArticles(context.Background())
	if err != nil {
		t.Fatalf("PendingArticles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Journalist.ID != "j1" || got[0].Journalist.Journalist != nil {
		t.Fatalf("string ref = %+v", got[0].Journalist)
	}
	if got[0].CreatedOn.Time != time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) {
		t.Fatalf("created_on = %v", got[0].CreatedOn)
	}
	if got[1].Journalist.ID != "j2" || got[1].Journalist.Name() != "Ama Kone" {
		t.Fatalf("object ref = %+v", got[1].Journalist)
	}
	if got[2].Journalist.ID != "" || !got[2].CreatedOn.IsZero() {
		t.Fatalf("null ref = %+v", got[2])
	}
}

func TestUpdateArticleRoundTrip(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"PATCH /admin/articles/a1": func(w http.ResponseWriter, r *http.Request) {
			var in ArticleUpdate
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"_id":               "a1",
				"article_title":     in.Title,
				"article_content":   in.Content,
				"article_highlight": in.Highlight,
			})
		},
	})
	update := ArticleUpdate{Title: "T", Content: "C", Highlight: "H"}
	got, err := client.WithToken("tok").UpdateArticle(context.Background(), "a1", update)
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if got.Title != "T" || got.Content != "C" || got.Highlight != "H" {
		t.Fatalf("article = %+v", got)
	}
	if len(api.calls) != 1 || api.calls[0].Method != http.MethodPatch {
		t.Fatalf("calls = %+v", api.calls)
	}
}

func TestSubmitDecisionBody(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"PATCH /admin/videos/v1/approval":   writeBody(``),
		"PATCH /admin/articles/a1/approval": writeBody(`{}`),
	})
	session := client.WithToken("tok")
	if err := session.SubmitDecision(context.Background(), KindVideos, "v1", Decision{Status: StatusApproved}); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	if err := session.SubmitDecision(context.Background(), KindArticles, "a1", Decision{Status: StatusRejected, Reason: "dup"}); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	if api.calls[0].Body != `{"approval_status":"approved"}` {
		t.Fatalf("approve body = %s", api.calls[0].Body)
	}
	if api.calls[1].Body != `{"approval_status":"rejected","approval_reason":"dup"}` {
		t.Fatalf("reject body = %s", api.calls[1].Body)
	}
	if err := session.SubmitDecision(context.Background(), Kind("podcasts"), "x", Decision{Status: StatusApproved}); err == nil {
		t.Fatal("expected unknown kind error")
	}
	if len(api.calls) != 2 {
		t.Fatalf("unknown kind must not call the API, calls = %d", len(api.calls))
	}
}

func TestApprovedArticlesPassesPageThrough(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /admin/articles/approved": writeBody(`{"articles":[],"pagination":{"total":3,"pages":1}}`),
	})
	got, err := client.WithToken("tok").ApprovedArticles(context.Background(), 2, 20)
	if err != nil {
		t.Fatalf("ApprovedArticles: %v", err)
	}
	if api.calls[0].Query != "limit=20&page=2" {
		t.Fatalf("query = %q", api.calls[0].Query)
	}
	if len(got.Items) != 0 || got.Pagination.Total != 3 {
		t.Fatalf("page = %+v", got)
	}
	if got.Pagination.CurrentPage != 2 || got.Pagination.DisplayPage() != 1 {
		t.Fatalf("pagination = %+v display %d", got.Pagination, got.Pagination.DisplayPage())
	}
}

func TestApprovedVideosDecodesPublications(t *testing.T) {
	client, _ := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /admin/videos/approved": writeBody(`{"videos":[{"_id":"p1","video_id":{"_id":"v1","video_title":"Flood"},"publisher_id":{"displayName":"Desk"},"assigned_on":"2025-01-02T00:00:00Z"}],"pagination":{"total":1,"pages":1,"page":1}}`),
	})
	got, err := client.WithToken("tok").ApprovedVideos(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("ApprovedVideos: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Video.Title != "Flood" || got.Items[0].Publisher.Name() != "Desk" {
		t.Fatalf("items = %+v", got.Items)
	}
}

func TestUsersAndRoleUpdate(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /admin/users":           writeBody(`{"users":[{"_id":"u1","email":"x@y.z","role":"general","verifiedEmail":true}],"pagination":{"total":1,"pages":1,"page":1}}`),
		"PATCH /admin/users/u1/role": writeBody(`{}`),
	})
	session := client.WithToken("tok")
	page, err := session.Users(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(page.Items) != 1 || !page.Items[0].VerifiedEmail {
		t.Fatalf("users = %+v", page.Items)
	}
	if err := session.UpdateUserRole(context.Background(), "u1", RoleContributor); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if api.calls[1].Body != `{"role":"contributor"}` {
		t.Fatalf("role body = %s", api.calls[1].Body)
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	client, api := newFakeAPIClient(t, nil)
	_, _ = client.WithToken("tok").Article(context.Background(), "a/../b")
	if got := api.calls[0].Path; !strings.HasPrefix(got, "/admin/articles/a%2F..%2Fb") {
		t.Fatalf("path = %q", got)
	}
}

func TestValidateResetTokenAndReset(t *testing.T) {
	client, api := newFakeAPIClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /validate-reset-token/rt1": writeBody(`{"valid":true}`),
		"POST /reset-password":          writeBody(`{"message":"ok"}`),
	})
	got, err := client.ValidateResetToken(context.Background(), "rt1")
	if err != nil || !got.Valid {
		t.Fatalf("ValidateResetToken() = %+v, %v", got, err)
	}
	if err := client.ResetPassword(context.Background(), "rt1", "longenough"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	var body map[string]string
	_ = json.Unmarshal([]byte(api.calls[1].Body), &body)
	if body["token"] != "rt1" || body["newPassword"] != "longenough" {
		t.Fatalf("body = %v", body)
	}
}

func TestPaginationDisplay(t *testing.T) {
	tests := []struct {
		p                Pagination
		display          int
		hasPrev, hasNext bool
	}{
		{p: Pagination{Pages: 0, CurrentPage: 0}, display: 1},
		{p: Pagination{Pages: 3, CurrentPage: 2}, display: 2, hasPrev: true, hasNext: true},
		{p: Pagination{Pages: 3, CurrentPage: 9}, display: 3, hasPrev: true},
		{p: Pagination{Pages: 3, CurrentPage: -4}, display: 1, hasNext: true},
	}
	for _, tc := range tests {
		if got := tc.p.DisplayPage(); got != tc.display {
			t.Fatalf("DisplayPage(%+v) = %d, want %d", tc.p, got, tc.display)
		}
		if tc.p.HasPrev() != tc.hasPrev || tc.p.HasNext() != tc.hasNext {
			t.Fatalf("HasPrev/HasNext(%+v) = %v/%v", tc.p, tc.p.HasPrev(), tc.p.HasNext())
		}
	}
}
