package placeholder

import (
	"fmt"
	"regexp"
)

// Prefix is the unique marker embedded in compiled output wherever a value
// must be resolved during localization. The hex suffix keeps it from
// colliding with anything a bundler or minifier could plausibly emit.
const Prefix = "_LOCSTR_f8a91c2e7d40"

// Placeholder labels. The label character after the prefix selects how the
// placeholder is resolved.
const (
	// LabelLocalized marks a translatable string; the trailing digits are
	// the serial number used for string-table lookup.
	LabelLocalized = "A"
	// LabelLocaleName is replaced with the name of the locale being rendered.
	LabelLocaleName = "B"
	// LabelJsonp is replaced with a runtime expression resolving the locale
	// tag of an asynchronously loaded chunk. An optional +token+ segment
	// names the chunk-id variable spliced into the expression.
	LabelJsonp = "C"
)

// placeholderRegex matches any placeholder: prefix, label character,
// optional +token+ segment, and a serial number. The label group is
// deliberately broad so that an unknown label is detected by the parser
// instead of being silently skipped.
var placeholderRegex = regexp.MustCompile(Prefix + `_(\w)(?:\+([^+]+)\+)?_(\d+)`)

// localizedRegex matches only localized-string placeholders (label A).
var localizedRegex = regexp.MustCompile(Prefix + `_` + LabelLocalized + `_\d+`)

// ContainsLocalized reports whether text carries any localized-string
// placeholder. Locale-name and chunk-mapping placeholders do not count; an
// asset holding only those is still rendered a single time.
func ContainsLocalized(text string) bool {
	return localizedRegex.MatchString(text)
}

// FormatLocalized returns the placeholder text for a localized string with
// the given serial number.
func FormatLocalized(serial int) string {
	return fmt.Sprintf("%s_%s_%d", Prefix, LabelLocalized, serial)
}

// FormatLocaleName returns the placeholder text for the locale-name span.
func FormatLocaleName() string {
	return fmt.Sprintf("%s_%s_0", Prefix, LabelLocaleName)
}

// FormatJsonp returns the placeholder text for a JSONP chunk-mapping span.
// token names the runtime variable holding the chunk id.
func FormatJsonp(token string) string {
	return fmt.Sprintf("%s_%s+%s+_0", Prefix, LabelJsonp, token)
}
