package templates

import "github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"

// DashboardView is the console landing page.
type DashboardView struct {
	Stats newsapi.Stats
	Error string
}

type statTile struct {
	key   string
	value int
}

func statTiles(stats newsapi.Stats) []statTile {
	return []statTile{
		{key: "dashboard.total_users", value: stats.TotalUsers},
		{key: "dashboard.total_articles", value: stats.TotalArticles},
		{key: "dashboard.published_articles", value: stats.PublishedArticles},
		{key: "dashboard.total_comments", value: stats.TotalComments},
		{key: "dashboard.articles_this_month", value: stats.ArticlesThisMonth},
		{key: "dashboard.total_contributors", value: stats.TotalContributors},
	}
}
