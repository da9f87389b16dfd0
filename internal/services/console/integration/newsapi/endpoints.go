package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Kind selects the article or video family of moderation endpoints.
type Kind string

const (
	KindArticles Kind = "articles"
	KindVideos   Kind = "videos"
)

// Valid reports whether k names a known content family.
func (k Kind) Valid() bool {
	return k == KindArticles || k == KindVideos
}

// SignIn exchanges credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	var out SignInResult
	err := c.decode(ctx, "", "/signin", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return SignInResult{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return SignInResult{}, errors.New("sign in response carried no token")
	}
	return out, nil
}

// ValidateResetToken checks a password-reset token.
func (c *Client) ValidateResetToken(ctx context.Context, token string) (ValidateResetTokenResult, error) {
	var out ValidateResetTokenResult
	err := c.decode(ctx, "", "/validate-reset-token/"+url.PathEscape(token), RequestOptions{}, &out)
	return out, err
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := c.Request(ctx, "", "/reset-password", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token, "newPassword": newPassword},
	})
	return err
}

// Session binds one bearer credential to the client.
type Session struct {
	client *Client
	token  string
}

// WithToken returns a Session that authenticates as token.
func (c *Client) WithToken(token string) Session {
	return Session{client: c, token: token}
}

// VerifyAdmin calls the authorization check.
func (s Session) VerifyAdmin(ctx context.Context) (AdminIdentity, error) {
	var out AdminIdentity
	err := s.client.decode(ctx, s.token, "/verify-admin", RequestOptions{}, &out)
	return out, err
}

// Stats loads the dashboard summary.
func (s Session) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := s.client.decode(ctx, s.token, "/admin/stats", RequestOptions{}, &out)
	return out, err
}

// PendingJournalists lists journalist applications awaiting review.
func (s Session) PendingJournalists(ctx context.Context) ([]Journalist, error) {
	var out []Journalist
	err := s.client.decode(ctx, s.token, "/admin/journalists/pending", RequestOptions{}, &out)
	return out, err
}

// ApproveJournalist approves one journalist application.
func (s Session) ApproveJournalist(ctx context.Context, id string) (Journalist, error) {
	var out Journalist
	err := s.client.decode(ctx, s.token, "/admin/journalists/"+url.PathEscape(id)+"/approve", RequestOptions{
		Method: http.MethodPatch,
	}, &out)
	return out, err
}

// PendingArticles lists articles awaiting review.
func (s Session) PendingArticles(ctx context.Context) ([]Article, error) {
	var out []Article
	err := s.client.decode(ctx, s.token, "/admin/articles/pending", RequestOptions{}, &out)
	return out, err
}

// Article loads one article.
func (s Session) Article(ctx context.Context, id string) (Article, error) {
	var out Article
	err := s.client.decode(ctx, s.token, itemPath(KindArticles, id), RequestOptions{}, &out)
	return out, err
}

// ArticleUpdate is the editable subset of an article.
type ArticleUpdate struct {
	Title     string `json:"article_title"`
	Content   string `json:"article_content"`
	Highlight string `json:"article_highlight"`
}

// UpdateArticle saves edited fields and returns the stored article.
func (s Session) UpdateArticle(ctx context.Context, id string, update ArticleUpdate) (Article, error) {
	var out Article
	err := s.client.decode(ctx, s.token, itemPath(KindArticles, id), RequestOptions{
		Method: http.MethodPatch,
		Body:   update,
	}, &out)
	return out, err
}

// ApprovedArticles loads one page of published articles. page is sent as
// given; the server decides what an out-of-range page contains.
func (s Session) ApprovedArticles(ctx context.Context, page, limit int) (Page[ArticlePublication], error) {
	var body struct {
		Articles   []ArticlePublication `json:"articles"`
		Pagination Pagination           `json:"pagination"`
	}
	if err := s.client.decode(ctx, s.token, "/admin/articles/approved", RequestOptions{Query: pageQuery(page, limit)}, &body); err != nil {
		return Page[ArticlePublication]{}, err
	}
	return Page[ArticlePublication]{Items: body.Articles, Pagination: withRequestedPage(body.Pagination, page)}, nil
}

// PendingVideos lists videos awaiting review.
func (s Session) PendingVideos(ctx context.Context) ([]Video, error) {
	var out []Video
	err := s.client.decode(ctx, s.token, "/admin/videos/pending", RequestOptions{}, &out)
	return out, err
}

// Video loads one video.
func (s Session) Video(ctx context.Context, id string) (Video, error) {
	var out Video
	err := s.client.decode(ctx, s.token, itemPath(KindVideos, id), RequestOptions{}, &out)
	return out, err
}

// VideoUpdate is the editable subset of a video.
type VideoUpdate struct {
	Title string `json:"video_title"`
}

// UpdateVideo saves edited fields and returns the stored video.
func (s Session) UpdateVideo(ctx context.Context, id string, update VideoUpdate) (Video, error) {
	var out Video
	err := s.client.decode(ctx, s.token, itemPath(KindVideos, id), RequestOptions{
		Method: http.MethodPatch,
		Body:   update,
	}, &out)
	return out, err
}

// ApprovedVideos loads one page of published videos.
func (s Session) ApprovedVideos(ctx context.Context, page, limit int) (Page[VideoPublication], error) {
	var body struct {
		Videos     []VideoPublication `json:"videos"`
		Pagination Pagination         `json:"pagination"`
	}
	if err := s.client.decode(ctx, s.token, "/admin/videos/approved", RequestOptions{Query: pageQuery(page, limit)}, &body); err != nil {
		return Page[VideoPublication]{}, err
	}
	return Page[VideoPublication]{Items: body.Videos, Pagination: withRequestedPage(body.Pagination, page)}, nil
}

// Decision is the approval request body. An empty reason is omitted.
type Decision struct {
	Status string `json:"approval_status"`
	Reason string `json:"approval_reason,omitempty"`
}

// SubmitDecision sends one approval decision for an article or video.
func (s Session) SubmitDecision(ctx context.Context, kind Kind, id string, decision Decision) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown content kind %q", kind)
	}
	_, err := s.client.Request(ctx, s.token, itemPath(kind, id)+"/approval", RequestOptions{
		Method: http.MethodPatch,
		Body:   decision,
	})
	return err
}

// Users loads one page of platform users.
func (s Session) Users(ctx context.Context, page, limit int) (Page[User], error) {
	var body struct {
		Users      []User     `json:"users"`
		Pagination Pagination `json:"pagination"`
	}
	if err := s.client.decode(ctx, s.token, "/admin/users", RequestOptions{Query: pageQuery(page, limit)}, &body); err != nil {
		return Page[User]{}, err
	}
	return Page[User]{Items: body.Users, Pagination: withRequestedPage(body.Pagination, page)}, nil
}

// UpdateUserRole changes one user's role.
func (s Session) UpdateUserRole(ctx context.Context, id, role string) error {
	_, err := s.client.Request(ctx, s.token, "/admin/users/"+url.PathEscape(id)+"/role", RequestOptions{
		Method: http.MethodPatch,
		Body:   map[string]string{"role": role},
	})
	return err
}

// Admins lists newsroom staff.
func (s Session) Admins(ctx context.Context) ([]Admin, error) {
	var out []Admin
	err := s.client.decode(ctx, s.token, "/admin/admins", RequestOptions{}, &out)
	return out, err
}

func (c *Client) decode(ctx context.Context, token, path string, opts RequestOptions, out any) error {
	raw, err := c.Request(ctx, token, path, opts)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func itemPath(kind Kind, id string) string {
	return "/admin/" + string(kind) + "/" + url.PathEscape(id)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// withRequestedPage fills CurrentPage from the request when the server
// omitted it.
func withRequestedPage(p Pagination, requested int) Pagination {
	if p.CurrentPage == 0 {
		p.CurrentPage = requested
	}
	return p
}
