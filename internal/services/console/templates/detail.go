package templates

import "github.com/a-h/templ"

// DraftForm holds the edit form values. Videos only use Title.
type DraftForm struct {
	Title     string
	Content   string
	Highlight string
}

// DecisionForm holds the approval form values as entered.
type DecisionForm struct {
	Status string
	Reason string
	Error  string
}

// DetailView is the review page of one article or video.
type DetailView struct {
	Kind string
	ID   string
	// Loaded is false when the item could not be fetched.
	Loaded     bool
	Title      string
	Highlight  string
	Body       templ.Component
	Images     []string
	ProofImage string
	ProofText  string
	VideoURL   string
	Group      string
	Location   string
	Author     string
	CreatedOn  string
	Editing    bool
	// DecisionOnly re-renders just the decision form, from posted values.
	DecisionOnly bool
	Draft        DraftForm
	DraftError   string
	Decision     DecisionForm
	Error        string
}

func detailTitle(page PageContext, view DetailView) string {
	if view.Title != "" {
		return view.Title
	}
	return T(page.Loc, view.Kind+".detail_title")
}
