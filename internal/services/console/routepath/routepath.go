// Package routepath holds the console's URL layout.
package routepath

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	Root         = "/"
	StaticPrefix = "/static/"
	Healthz      = "/healthz"
)

const (
	Login         = "/login"
	Logout        = "/logout"
	ResetPassword = "/reset-password"
)

const (
	Admin       = "/admin"
	AdminPrefix = "/admin/"
)

const (
	JournalistsPending = "/admin/journalists/pending"
	JournalistsPrefix  = "/admin/journalists/"
)

// Content families share one layout under /admin/<kind>.
const (
	KindArticles = "articles"
	KindVideos   = "videos"
)

const (
	ArticlesPending  = "/admin/articles/pending"
	ArticlesApproved = "/admin/articles/approved"
	ArticlesPrefix   = "/admin/articles/"
)

const (
	VideosPending  = "/admin/videos/pending"
	VideosApproved = "/admin/videos/approved"
	VideosPrefix   = "/admin/videos/"
)

const (
	Users       = "/admin/users"
	UsersPrefix = "/admin/users/"
	Admins      = "/admin/admins"
)

// EditParam switches an item page into edit mode.
const EditParam = "edit"

// IDParam names the path wildcard in parameterized patterns.
const IDParam = "id"

const (
	JournalistApprovePattern = JournalistsPrefix + "{" + IDParam + "}/approve"
	UserRolePattern          = UsersPrefix + "{" + IDParam + "}/role"
)

// ItemPattern matches the detail page of any item of kind.
func ItemPattern(kind string) string {
	return Admin + "/" + kind + "/{" + IDParam + "}"
}

// ItemApprovalPattern matches decision posts for kind.
func ItemApprovalPattern(kind string) string {
	return ItemPattern(kind) + "/approval"
}

func JournalistApprove(journalistID string) string {
	return JournalistsPrefix + escapeSegment(journalistID) + "/approve"
}

// Pending returns the review queue for a content family.
func Pending(kind string) string {
	return Admin + "/" + escapeSegment(kind) + "/pending"
}

// Approved returns the published listing for a content family.
func Approved(kind string) string {
	return Admin + "/" + escapeSegment(kind) + "/approved"
}

// ApprovedPage returns the published listing at page.
func ApprovedPage(kind string, page int) string {
	return withPage(Approved(kind), page)
}

// Item returns the detail page of one article or video.
func Item(kind, itemID string) string {
	return Admin + "/" + escapeSegment(kind) + "/" + escapeSegment(itemID)
}

// ItemEdit returns the detail page in edit mode.
func ItemEdit(kind, itemID string) string {
	return Item(kind, itemID) + "?" + EditParam + "=1"
}

// ItemApproval is where moderation decisions are posted.
func ItemApproval(kind, itemID string) string {
	return Item(kind, itemID) + "/approval"
}

func Article(articleID string) string {
	return Item(KindArticles, articleID)
}

func Video(videoID string) string {
	return Item(KindVideos, videoID)
}

func UsersPage(page int) string {
	return withPage(Users, page)
}

func UserRole(userID string) string {
	return UsersPrefix + escapeSegment(userID) + "/role"
}

func withPage(path string, page int) string {
	if page <= 1 {
		return path
	}
	return path + "?page=" + strconv.Itoa(page)
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
