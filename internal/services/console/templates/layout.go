package templates

import (
	"strings"

	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
)

// AppName is shown in titles and the console header.
const AppName = "Sikiya"

// StylesheetPath and ScriptPath are served from the embedded static tree.
const (
	StylesheetPath = routepath.StaticPrefix + "console.css"
	ScriptPath     = routepath.StaticPrefix + "console.js"
)

type navItem struct {
	key  string
	path string
}

var navItems = []navItem{
	{key: "nav.dashboard", path: routepath.Admin},
	{key: "nav.journalists_pending", path: routepath.JournalistsPending},
	{key: "nav.articles_pending", path: routepath.ArticlesPending},
	{key: "nav.articles_approved", path: routepath.ArticlesApproved},
	{key: "nav.videos_pending", path: routepath.VideosPending},
	{key: "nav.videos_approved", path: routepath.VideosApproved},
	{key: "nav.users", path: routepath.Users},
	{key: "nav.admins", path: routepath.Admins},
}

// ComposePageTitle appends the application name.
func ComposePageTitle(title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return AppName
	case strings.HasSuffix(title, " | "+AppName):
		return title
	default:
		return title + " | " + AppName
	}
}

// documentLang falls back to French, the console's default locale.
func documentLang(page PageContext) string {
	if page.Lang == "" {
		return "fr-FR"
	}
	return page.Lang
}

func brandLabel(loc Localizer) string {
	return AppName + " · " + T(loc, "console.title")
}

// isActive matches the nav entry for path; the dashboard only matches itself.
func isActive(current, item string) bool {
	if item == routepath.Admin {
		return current == routepath.Admin
	}
	return current == item || strings.HasPrefix(current, item+"/")
}

func flashText(loc Localizer, notice flash.Notice) string {
	if notice.Arg != "" {
		return T(loc, notice.Key, notice.Arg)
	}
	return T(loc, notice.Key)
}
