// Package i18n resolves the console language for each request.
package i18n

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sikiya/sikiya-console/internal/platform/i18n/catalog"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the operator's language preference.
	LangCookieName = "sikiya-language"
)

var (
	french  = language.MustParse("fr-FR")
	english = language.MustParse("en-US")
)

// French first: it is the default.
var supportedTags = []language.Tag{french, english}

var tagMatcher = language.NewMatcher(supportedTags)

func init() {
	// Importing the catalog registers its messages with x/text/message.
	_ = catalog.Default()
}

// Supported returns the supported language tags, default first.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return french
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag picks the request language from ?lang=, the preference cookie,
// then Accept-Language. The bool reports whether ?lang= should be persisted.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}
	if value := strings.TrimSpace(r.URL.Query().Get(LangParam)); value != "" {
		if tag, ok := parseTag(value); ok {
			return tag, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := parseTag(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := tagMatcher.Match(tags...)
			if confidence != language.No {
				return supportedTags[index], false
			}
		}
	}
	return Default(), false
}

// SetLanguageCookie persists tag as the operator's preference.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// LanguageURL returns path with the lang parameter set to tag.
func LanguageURL(path string, query url.Values, tag language.Tag) string {
	values := url.Values{}
	for key, vals := range query {
		values[key] = append([]string(nil), vals...)
	}
	values.Set(LangParam, ShortCode(tag))
	return path + "?" + values.Encode()
}

// ShortCode returns the two-letter code shown in the language switcher.
func ShortCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// parseTag accepts full tags ("fr-FR") and bare languages ("fr").
func parseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Tag{}, false
	}
	parsedBase, _ := parsed.Base()
	for _, tag := range supportedTags {
		if base, _ := tag.Base(); base == parsedBase {
			return tag, true
		}
	}
	return language.Tag{}, false
}
