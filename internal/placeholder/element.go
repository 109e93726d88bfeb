package placeholder

// Kind discriminates the variants of a reconstruction element.
type Kind int

const (
	// KindStatic is an immutable literal span copied verbatim into every
	// rendered output.
	KindStatic Kind = iota
	// KindLocalized is a reference to a translatable string resolved per
	// locale from its value map.
	KindLocalized
	// KindDynamic is a computed span whose value depends on the locale
	// being rendered.
	KindDynamic
)

// StringData holds everything known about one translatable string.
type StringData struct {
	// Name is the string's key within its source file.
	Name string
	// SourceFile is the translation file the string was defined in.
	SourceFile string
	// Values maps locale code to translated text.
	Values map[string]string
}

// StringTable resolves serial numbers to string data. It is populated by an
// external loading step before any asset is parsed.
type StringTable interface {
	Lookup(serial int) (StringData, bool)
}

// Element is one entry of a reconstruction plan. Kind is fixed at parse
// time; only locale-dependent values are computed later, so the same plan
// is parsed once and rendered once per locale.
type Element struct {
	Kind Kind

	// Text is the literal span for KindStatic. For a localized placeholder
	// whose serial is absent from the string table it holds the raw
	// placeholder text so the defect stays visible in the output.
	Text string

	// Serial and String are set for KindLocalized.
	Serial int
	String StringData

	// Resolver and Token are set for KindDynamic.
	Resolver LocaleResolver
	Token    string

	// PlaceholderLen is the length of the original placeholder text,
	// used for incremental size accounting.
	PlaceholderLen int
}

// Plan is an ordered sequence of elements. Concatenating the rendered form
// of each element in order, for a given locale, yields that locale's asset
// content.
type Plan []Element

func staticElement(text string) Element {
	return Element{Kind: KindStatic, Text: text}
}
