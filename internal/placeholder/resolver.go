package placeholder

import (
	"encoding/json"
	"fmt"
)

type resolverKind int

const (
	resolverIdentity resolverKind = iota
	resolverConstant
	resolverQuoted
	resolverIndexed
)

// LocaleResolver produces the locale-dependent value of a dynamic span.
// It is a closed set of variants rather than an opaque function so plans
// stay inspectable and testable without hidden capture semantics.
type LocaleResolver struct {
	kind resolverKind

	// constant is the fixed locale name for resolverConstant.
	constant string

	// mapping and noStringsLocale back resolverIndexed: chunk id → index
	// into the runtime array [locale, noStringsLocale].
	mapping         map[string]int
	noStringsLocale string
}

// IdentityLocale returns a resolver producing the locale name itself.
// It backs locale-name placeholders, which sit inside already-quoted text.
func IdentityLocale() LocaleResolver {
	return LocaleResolver{kind: resolverIdentity}
}

// ConstantLocale returns a resolver producing the given locale name as a
// JSON string literal, regardless of the locale being rendered. Used when
// no reachable async chunk carries localized content.
func ConstantLocale(name string) LocaleResolver {
	return LocaleResolver{kind: resolverConstant, constant: name}
}

// QuotedLocale returns a resolver producing the rendered locale as a JSON
// string literal. Used when every reachable async chunk carries localized
// content.
func QuotedLocale() LocaleResolver {
	return LocaleResolver{kind: resolverQuoted}
}

// IndexedLocale returns a resolver producing a runtime indexing expression
// for a mixed chunk set. mapping takes each chunk id to 0 (has localized
// content) or 1 (does not); the expression indexes the two-element array
// [locale, noStringsLocale] with the mapping entry for the chunk id held
// by the token variable.
func IndexedLocale(mapping map[string]int, noStringsLocale string) LocaleResolver {
	return LocaleResolver{
		kind:            resolverIndexed,
		mapping:         mapping,
		noStringsLocale: noStringsLocale,
	}
}

// Resolve produces the substitution text for the given locale. token is the
// chunk-id variable name carried by the placeholder; it is only meaningful
// for the indexed variant. The result of the constant, quoted, and indexed
// variants is valid source text in the artifact's output language, since it
// is spliced directly into the asset.
func (r LocaleResolver) Resolve(locale, token string) (string, error) {
	switch r.kind {
	case resolverIdentity:
		return locale, nil
	case resolverConstant:
		return jsonLiteral(r.constant), nil
	case resolverQuoted:
		return jsonLiteral(locale), nil
	case resolverIndexed:
		if locale == "" {
			return "", fmt.Errorf("missing locale name for chunk mapping expression")
		}
		arr, err := json.Marshal([2]string{locale, r.noStringsLocale})
		if err != nil {
			return "", fmt.Errorf("marshal locale array: %w", err)
		}
		mapping, err := json.Marshal(r.mapping)
		if err != nil {
			return "", fmt.Errorf("marshal chunk mapping: %w", err)
		}
		return fmt.Sprintf("(%s)[%s[%s]]", arr, mapping, token), nil
	default:
		return "", fmt.Errorf("unknown locale resolver kind %d", r.kind)
	}
}

func jsonLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
