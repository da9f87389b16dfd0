package templates

import (
	"net/url"

	"golang.org/x/text/message"

	"github.com/sikiya/sikiya-console/internal/services/console/platform/flash"
)

// Localizer provides translated strings for components.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// T returns a translated string or the key if no localizer is available.
func T(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if keyString, ok := key.(string); ok {
			return keyString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

// Operator is the verified admin shown in the console chrome.
type Operator struct {
	Email string
	Role  string
}

// LanguageLink is one entry of the language switcher.
type LanguageLink struct {
	Code   string
	URL    string
	Active bool
}

// PageContext provides shared layout context for console pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery url.Values
	// CSRFToken is echoed in every form as csrfFieldName.
	CSRFToken string
	// Operator is nil on public pages.
	Operator  *Operator
	Flash     *flash.Notice
	Languages []LanguageLink
}

// csrfFieldName matches the gorilla/csrf default form field.
const csrfFieldName = "gorilla.csrf.Token"
