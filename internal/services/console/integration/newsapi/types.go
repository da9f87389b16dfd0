package newsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Roles a platform user may hold.
const (
	RoleNeedID        = "needID"
	RoleGeneral       = "general"
	RoleJournalist    = "journalist"
	RoleThoughtLeader = "thoughtleader"
	RoleContributor   = "contributor"
	RoleAdmin         = "admin"
)

// UserRoles lists the roles an admin can assign, in display order.
var UserRoles = []string{RoleNeedID, RoleGeneral, RoleJournalist, RoleThoughtLeader, RoleContributor}

// ValidUserRole reports whether role is assignable from the console.
func ValidUserRole(role string) bool {
	for _, r := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Approval statuses accepted by the approval endpoints.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// SignInResult is returned by POST /signin.
type SignInResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// AdminIdentity is decoded from GET /verify-admin.
type AdminIdentity struct {
	IsAdmin bool   `json:"isAdmin"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// Stats is the dashboard summary. Missing fields decode as zero.
type Stats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalArticles     int `json:"totalArticles"`
	PublishedArticles int `json:"publishedArticles"`
	TotalComments     int `json:"totalComments"`
	ArticlesThisMonth int `json:"articlesThisMonth"`
	TotalContributors int `json:"totalContributors"`
}

// Journalist is a journalist account or application.
type Journalist struct {
	ID                 string    `json:"_id"`
	FirstName          string    `json:"firstname"`
	LastName           string    `json:"lastname"`
	DisplayName        string    `json:"displayName"`
	Email              string    `json:"email"`
	PhoneCountryCode   string    `json:"phone_country_code"`
	PhoneNumber        string    `json:"phone_number"`
	ProfilePicture     string    `json:"profile_picture"`
	Affiliation        string    `json:"journalist_affiliation"`
	AreaOfExpertise    string    `json:"area_of_expertise"`
	Description        string    `json:"journalist_description"`
	CityOfResidence    string    `json:"city_of_residence"`
	CountryOfResidence string    `json:"country_of_residence"`
	CreatedOn          Timestamp `json:"created_on"`
}

// FullName prefers first and last name, then the display name.
func (j Journalist) FullName() string {
	name := strings.TrimSpace(j.FirstName + " " + j.LastName)
	if name == "" {
		return strings.TrimSpace(j.DisplayName)
	}
	return name
}

// Phone joins the country code and number.
func (j Journalist) Phone() string {
	return strings.TrimSpace(strings.TrimSpace(j.PhoneCountryCode) + " " + strings.TrimSpace(j.PhoneNumber))
}

// JournalistRef is a journalist_id field: either a bare id or a populated
// journalist document.
type JournalistRef struct {
	ID         string
	Journalist *Journalist
}

// UnmarshalJSON accepts a string id, an object or null.
func (r *JournalistRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = JournalistRef{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode journalist id: %w", err)
		}
		*r = JournalistRef{ID: id}
		return nil
	case data[0] == '{':
		var j Journalist
		if err := json.Unmarshal(data, &j); err != nil {
			return fmt.Errorf("decode journalist: %w", err)
		}
		*r = JournalistRef{ID: j.ID, Journalist: &j}
		return nil
	default:
		return fmt.Errorf("journalist reference must be a string or object, got %s", data)
	}
}

// MarshalJSON writes the populated document when present, else the id.
func (r JournalistRef) MarshalJSON() ([]byte, error) {
	if r.Journalist != nil {
		return json.Marshal(r.Journalist)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// Name returns the populated journalist's name, or "".
func (r JournalistRef) Name() string {
	if r.Journalist == nil {
		return ""
	}
	return r.Journalist.FullName()
}

// Article is a submitted or published article.
type Article struct {
	ID          string        `json:"_id"`
	Title       string        `json:"article_title"`
	Content     string        `json:"article_content"`
	Highlight   string        `json:"article_highlight"`
	FrontImage  string        `json:"article_front_image"`
	OtherImages []string      `json:"article_other_images"`
	ProofImage  string        `json:"article_proof_image"`
	ProofText   string        `json:"article_proof_text"`
	Group       string        `json:"article_group"`
	City        string        `json:"concerned_city"`
	Country     string        `json:"concerned_country"`
	Location    string        `json:"location"`
	Journalist  JournalistRef `json:"journalist_id"`
	CreatedOn   Timestamp     `json:"created_on"`
	PublishedOn Timestamp     `json:"published_on"`
}

// Video is a submitted or published video.
type Video struct {
	ID         string        `json:"_id"`
	Title      string        `json:"video_title"`
	Link       string        `json:"video_link"`
	Group      string        `json:"video_group"`
	ProofText  string        `json:"video_proof_text"`
	Location   string        `json:"location"`
	Journalist JournalistRef `json:"journalist_id"`
	CreatedOn  Timestamp     `json:"created_on"`
}

// Publisher is the admin who approved a publication.
type Publisher struct {
	ID          string `json:"_id"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	DisplayName string `json:"displayName"`
}

// Name prefers the display name, then first and last name.
func (p *Publisher) Name() string {
	if p == nil {
		return ""
	}
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ArticlePublication is one approved-articles row.
type ArticlePublication struct {
	ID         string     `json:"_id"`
	Article    *Article   `json:"article_id"`
	Publisher  *Publisher `json:"publisher_id"`
	AssignedOn Timestamp  `json:"assigned_on"`
}

// VideoPublication is one approved-videos row.
type VideoPublication struct {
	ID         string     `json:"_id"`
	Video      *Video     `json:"video_id"`
	Publisher  *Publisher `json:"publisher_id"`
	AssignedOn Timestamp  `json:"assigned_on"`
}

// User is a platform account.
type User struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	VerifiedEmail bool      `json:"verifiedEmail"`
	CreatedOn     Timestamp `json:"created_on"`
}

// Admin is a newsroom staff account.
type Admin struct {
	ID                     string `json:"_id"`
	FirstName              string `json:"firstname"`
	LastName               string `json:"lastname"`
	DisplayName            string `json:"displayName"`
	Department             string `json:"department"`
	Position               string `json:"position"`
	ArticleGroup           string `json:"article_group"`
	EmploymentStatus       string `json:"employment_status"`
	TotalArticlesPublished int    `json:"total_articles_published"`
}

// FullName prefers first and last name, then the display name.
func (a Admin) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return strings.TrimSpace(a.DisplayName)
	}
	return name
}

// Pagination is the server-reported page window.
type Pagination struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"page"`
}

// DisplayPage clamps CurrentPage into [1, max(Pages,1)].
func (p Pagination) DisplayPage() int {
	last := p.Pages
	if last < 1 {
		last = 1
	}
	switch {
	case p.CurrentPage < 1:
		return 1
	case p.CurrentPage > last:
		return last
	default:
		return p.CurrentPage
	}
}

// HasPrev reports whether a previous page link applies.
func (p Pagination) HasPrev() bool {
	return p.DisplayPage() > 1
}

// HasNext reports whether a next page link applies.
func (p Pagination) HasNext() bool {
	return p.DisplayPage() < p.Pages
}

// Page is a paginated collection.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// ValidateResetTokenResult is returned by GET /validate-reset-token/{token}.
type ValidateResetTokenResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

// Timestamp decodes the API's date fields, tolerating empty and null values.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts RFC 3339 strings, a few close variants, epoch
// milliseconds, "" and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		var millis int64
		if err := json.Unmarshal(data, &millis); err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("decode timestamp: unsupported format %q", raw)
}

// MarshalJSON writes RFC 3339 or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
