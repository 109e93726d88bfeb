// Package reconstruct renders parsed reconstruction plans into per-locale
// asset content and drives the full content+filename processing of a
// compiled asset.
package reconstruct

import (
	"fmt"
	"strings"

	"bundle-localizer/internal/placeholder"
)

// Substitution texts for recoverable data issues. They are deliberately
// loud so a defective build is visible in its output instead of crashing.
const (
	MissingValue      = "-- MISSING STRING --"
	NotLocalizedValue = "-- NOT EXPECTED TO BE LOCALIZED --"
)

// valueEscaper rewrites quote characters in substituted translations to
// their escaped Unicode form so a value cannot break out of the string
// literal surrounding its placeholder.
var valueEscaper = strings.NewReplacer(`"`, `\u0022`, `'`, `\u0027`)

// Rendered is one locale's rendering of a plan: the final text and its
// size in bytes.
type Rendered struct {
	Content string
	Size    int
}

// RenderLocalized renders the plan once per requested locale. A localized
// element missing its value for a locale falls back to the default locale
// when fillMissing is set; otherwise it is reported as an issue and
// substituted with MissingValue. Substituted translation values are
// quote-escaped.
//
// Size is tracked incrementally as initialSize plus the per-element delta
// between substituted and placeholder lengths, never by re-measuring the
// output. Rendering is deterministic per locale and independent across
// locales.
func RenderLocalized(plan placeholder.Plan, locales []string, fillMissing bool, defaultLocale string, initialSize int) (map[string]Rendered, []string, error) {
	out := make(map[string]Rendered, len(locales))
	var issues []string

	for _, locale := range locales {
		var b strings.Builder
		sizeDiff := 0

		for _, el := range plan {
			switch el.Kind {
			case placeholder.KindStatic:
				b.WriteString(el.Text)

			case placeholder.KindLocalized:
				value, ok := el.String.Values[locale]
				if !ok {
					if fillMissing {
						value = el.String.Values[defaultLocale]
					} else {
						issues = append(issues, fmt.Sprintf(
							"the string %q in %q is missing in locale %q",
							el.String.Name, el.String.SourceFile, locale,
						))
						value = MissingValue
					}
				}
				value = valueEscaper.Replace(value)
				b.WriteString(value)
				sizeDiff += len(value) - el.PlaceholderLen

			case placeholder.KindDynamic:
				value, err := el.Resolver.Resolve(locale, el.Token)
				if err != nil {
					return nil, nil, fmt.Errorf("resolve dynamic span for locale %q: %w", locale, err)
				}
				b.WriteString(value)
				sizeDiff += len(value) - el.PlaceholderLen
			}
		}

		out[locale] = Rendered{Content: b.String(), Size: initialSize + sizeDiff}
	}

	return out, issues, nil
}

// RenderNonLocalized renders a plan for an asset that must not contain
// locale-varying content. Localized elements are always an issue and are
// substituted with NotLocalizedValue; dynamic spans resolve against
// noStringsLocale. Size accounting matches RenderLocalized.
func RenderNonLocalized(plan placeholder.Plan, initialSize int, noStringsLocale string) (Rendered, []string, error) {
	var (
		b      strings.Builder
		issues []string
	)
	sizeDiff := 0

	for _, el := range plan {
		switch el.Kind {
		case placeholder.KindStatic:
			b.WriteString(el.Text)

		case placeholder.KindLocalized:
			issues = append(issues, fmt.Sprintf(
				"the string %q in %q appeared in an asset that is not expected to contain localized strings",
				el.String.Name, el.String.SourceFile,
			))
			b.WriteString(NotLocalizedValue)
			sizeDiff += len(NotLocalizedValue) - el.PlaceholderLen

		case placeholder.KindDynamic:
			value, err := el.Resolver.Resolve(noStringsLocale, el.Token)
			if err != nil {
				return Rendered{}, nil, fmt.Errorf("resolve dynamic span: %w", err)
			}
			b.WriteString(value)
			sizeDiff += len(value) - el.PlaceholderLen
		}
	}

	return Rendered{Content: b.String(), Size: initialSize + sizeDiff}, issues, nil
}
