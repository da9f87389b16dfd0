package console

import (
	"strings"

	"github.com/sikiya/sikiya-console/internal/platform/excerpt"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/moderation"
	"github.com/sikiya/sikiya-console/internal/services/console/templates"
)

const (
	excerptWidth     = 180
	descriptionWidth = 240
	dateLayout       = "2006-01-02"
)

func formatDate(ts newsapi.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(dateLayout)
}

func joinLocation(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func articleLocation(a newsapi.Article) string {
	if loc := joinLocation(a.City, a.Country); loc != "" {
		return loc
	}
	return strings.TrimSpace(a.Location)
}

func (h *handler) journalistRow(j newsapi.Journalist) templates.JournalistRow {
	picture, _ := h.cdn.Resolve(j.ProfilePicture)
	return templates.JournalistRow{
		ID:          j.ID,
		Name:        j.FullName(),
		Email:       j.Email,
		Phone:       j.Phone(),
		Affiliation: j.Affiliation,
		Expertise:   j.AreaOfExpertise,
		Residence:   joinLocation(j.CityOfResidence, j.CountryOfResidence),
		Description: excerpt.Summary(j.Description, descriptionWidth),
		PictureURL:  picture,
		AppliedOn:   formatDate(j.CreatedOn),
	}
}

func (h *handler) articleRow(a newsapi.Article) templates.ContentRow {
	image, _ := h.cdn.Resolve(a.FrontImage)
	excerptSource := a.Highlight
	if strings.TrimSpace(excerptSource) == "" {
		excerptSource = a.Content
	}
	return templates.ContentRow{
		ID:       a.ID,
		Title:    a.Title,
		Excerpt:  excerpt.Summary(excerptSource, excerptWidth),
		ImageURL: image,
		Author:   a.Journalist.Name(),
		Location: articleLocation(a),
		Date:     formatDate(a.CreatedOn),
		Linked:   true,
	}
}

func (h *handler) videoRow(v newsapi.Video) templates.ContentRow {
	link, _ := h.cdn.Resolve(v.Link)
	return templates.ContentRow{
		ID:       v.ID,
		Title:    v.Title,
		VideoURL: link,
		Author:   v.Journalist.Name(),
		Location: strings.TrimSpace(v.Location),
		Date:     formatDate(v.CreatedOn),
		Linked:   true,
	}
}

// Published rows are not linked: the detail page reviews pending items.
func (h *handler) articlePublicationRow(p newsapi.ArticlePublication) templates.ContentRow {
	row := templates.ContentRow{ID: p.ID, Publisher: p.Publisher.Name(), Date: formatDate(p.AssignedOn)}
	if p.Article != nil {
		row = h.articleRow(*p.Article)
		row.Publisher = p.Publisher.Name()
		if !p.AssignedOn.IsZero() {
			row.Date = formatDate(p.AssignedOn)
		}
	}
	row.Linked = false
	return row
}

func (h *handler) videoPublicationRow(p newsapi.VideoPublication) templates.ContentRow {
	row := templates.ContentRow{ID: p.ID, Publisher: p.Publisher.Name(), Date: formatDate(p.AssignedOn)}
	if p.Video != nil {
		row = h.videoRow(*p.Video)
		row.Publisher = p.Publisher.Name()
		if !p.AssignedOn.IsZero() {
			row.Date = formatDate(p.AssignedOn)
		}
	}
	row.Linked = false
	return row
}

func (h *handler) articleDetail(view *templates.DetailView, a newsapi.Article) {
	view.Loaded = true
	view.Title = a.Title
	view.Highlight = a.Highlight
	view.Body = templates.Markdown(a.Content)
	view.Images = h.cdn.ResolveAll(append([]string{a.FrontImage}, a.OtherImages...))
	view.ProofImage, _ = h.cdn.Resolve(a.ProofImage)
	view.ProofText = a.ProofText
	view.Group = a.Group
	view.Location = articleLocation(a)
	view.Author = a.Journalist.Name()
	view.CreatedOn = formatDate(a.CreatedOn)
	draft := moderation.ArticleDraftFrom(a)
	view.Draft = templates.DraftForm{Title: draft.Title, Content: draft.Content, Highlight: draft.Highlight}
}

func (h *handler) videoDetail(view *templates.DetailView, v newsapi.Video) {
	view.Loaded = true
	view.Title = v.Title
	view.VideoURL, _ = h.cdn.Resolve(v.Link)
	view.ProofText = v.ProofText
	view.Group = v.Group
	view.Location = strings.TrimSpace(v.Location)
	view.Author = v.Journalist.Name()
	view.CreatedOn = formatDate(v.CreatedOn)
	view.Draft = templates.DraftForm{Title: moderation.VideoDraftFrom(v).Title}
}

func userRow(u newsapi.User) templates.UserRow {
	return templates.UserRow{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Verified:  u.VerifiedEmail,
		CreatedOn: formatDate(u.CreatedOn),
	}
}

func adminRow(a newsapi.Admin) templates.AdminRow {
	return templates.AdminRow{
		Name:              a.FullName(),
		Department:        a.Department,
		Position:          a.Position,
		Group:             a.ArticleGroup,
		Status:            a.EmploymentStatus,
		ArticlesPublished: a.TotalArticlesPublished,
	}
}

// pagination turns the server window into pager links built by pageURL.
func pagination(p newsapi.Pagination, pageURL func(int) string) templates.PaginationView {
	current := p.DisplayPage()
	view := templates.PaginationView{Page: current, Pages: p.Pages, Total: p.Total}
	if p.HasPrev() {
		view.PrevURL = pageURL(current - 1)
	}
	if p.HasNext() {
		view.NextURL = pageURL(current + 1)
	}
	return view
}
