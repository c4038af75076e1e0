package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

// Normalize reduces a language tag to its base, e.g. "hi-IN" to "hi".
// Unparsable tags are returned lowercased.
func Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}

// MatchLanguage picks the supported language best matching an Accept-Language header.
// It reports false when none matches.
func MatchLanguage(acceptLanguage string) (string, bool) {
	if strings.TrimSpace(acceptLanguage) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return Supported[idx], true
}
