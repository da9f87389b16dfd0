package templates

// JournalistRow is one pending journalist application.
type JournalistRow struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Affiliation string
	Expertise   string
	Residence   string
	Description string
	PictureURL  string
	AppliedOn   string
}

// JournalistsView lists pending journalist applications.
type JournalistsView struct {
	Items []JournalistRow
	Error string
}
