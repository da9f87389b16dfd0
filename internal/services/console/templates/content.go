package templates

// ContentRow summarizes one article or video in a listing.
type ContentRow struct {
	ID        string
	Title     string
	Excerpt   string
	ImageURL  string
	VideoURL  string
	Author    string
	Publisher string
	Location  string
	Date      string
	// Linked rows open the detail page; published rows do not.
	Linked bool
}

// ContentListView is a pending queue.
type ContentListView struct {
	Items []ContentRow
	Error string
}

// PaginationView drives the pager under paged listings.
type PaginationView struct {
	Page    int
	Pages   int
	Total   int
	PrevURL string
	NextURL string
}

// ApprovedView is one page of published content.
type ApprovedView struct {
	Items      []ContentRow
	Pagination PaginationView
	Error      string
}
