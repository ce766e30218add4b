// Package i18n resolves the active UI locale and renders user-facing
// notifications from a message catalog.
package i18n

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when neither config nor environment name one.
const DefaultLocale = "de-CH"

// supported lists the catalog languages; the first entry is the fallback.
var supported = []language.Tag{language.German, language.English, language.French, language.Italian}

var matcher = language.NewMatcher(supported)

// Locale is the active UI locale, e.g. de-CH.
type Locale struct {
	code    string
	tag     language.Tag
	printer *message.Printer
}

// DetectLocale resolves a locale from the POSIX environment, falling back
// to DefaultLocale.
func DetectLocale() Locale {
	raw := os.Getenv("LC_ALL")
	if raw == "" {
		raw = os.Getenv("LC_MESSAGES")
	}
	if raw == "" {
		raw = os.Getenv("LANG")
	}
	return NewLocale(raw)
}

// NewLocale accepts a BCP 47 tag ("fr-CH") or a POSIX locale
// ("fr_CH.UTF-8"). Empty or unparseable input yields DefaultLocale.
func NewLocale(raw string) Locale {
	if idx := strings.IndexByte(raw, '.'); idx != -1 {
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")

	tag, err := language.Parse(raw)
	if err != nil || tag == language.Und || raw == "C" || raw == "POSIX" {
		raw = DefaultLocale
		tag = language.MustParse(DefaultLocale)
	}

	_, idx, _ := matcher.Match(tag)
	return Locale{
		code:    raw,
		tag:     tag,
		printer: message.NewPrinter(supported[idx], message.Catalog(messages)),
	}
}

// String returns the locale as configured, e.g. "de-CH".
func (l Locale) String() string { return l.code }

// Tag returns the parsed language tag.
func (l Locale) Tag() language.Tag { return l.tag }

// Language returns the two-letter language segment used in location paths.
func (l Locale) Language() string {
	if len(l.code) < 2 {
		return ""
	}
	return strings.ToLower(l.code[:2])
}

// Contains reports whether the user locale (e.g. "fr") already appears in
// the active locale string.
func (l Locale) Contains(userLocale string) bool {
	return userLocale != "" && strings.Contains(strings.ToLower(l.code), strings.ToLower(userLocale))
}

// Printer returns a printer bound to the locale's catalog language.
func (l Locale) Printer() *message.Printer {
	if l.printer == nil {
		return NewLocale(l.code).printer
	}
	return l.printer
}

// T renders the catalog entry for key.
func (l Locale) T(key Key, args ...any) string {
	return l.Printer().Sprintf(string(key), args...)
}

// FormatDate formats t with the locale's preferred day layout.
func (l Locale) FormatDate(t time.Time) string {
	return t.Format(l.dateLayout())
}

// FormatShortDate is the compact day header used in week grids.
func (l Locale) FormatShortDate(t time.Time) string {
	base, _ := l.tag.Base()
	switch base.String() {
	case "en":
		return t.Format("Mon 1/2")
	default:
		return t.Format("Mon 02.01.")
	}
}

// FormatNumber formats v with locale grouping.
func (l Locale) FormatNumber(v int) string {
	return l.Printer().Sprint(number.Decimal(v))
}

const (
	layoutMDY    = "Jan 2, 2006"
	layoutDMY    = "2 Jan 2006"
	layoutDMYDot = "2.1.2006"
)

func (l Locale) dateLayout() string {
	region, _ := l.tag.Region()
	switch region.String() {
	case "US":
		return layoutMDY
	case "CH", "DE", "AT":
		return layoutDMYDot
	}
	base, _ := l.tag.Base()
	switch base.String() {
	case "de":
		return layoutDMYDot
	case "en":
		return layoutMDY
	}
	return layoutDMY
}
