package reconstruct

import (
	"fmt"
	"strings"

	"bundle-localizer/internal/chunkmap"
	"bundle-localizer/internal/placeholder"
)

// Asset is an immutable compiled artifact: a filename, its content, and
// its size in bytes. Rendering produces new Asset values; nothing is
// mutated in place.
type Asset struct {
	Name    string
	Content string
	Size    int
}

// NewAsset builds an asset whose size is the content's byte length.
func NewAsset(name, content string) Asset {
	return Asset{Name: name, Content: content, Size: len(content)}
}

// LocalizedOptions parameterizes ProcessLocalizedAsset.
type LocalizedOptions struct {
	Locales         []string
	FillMissing     bool
	DefaultLocale   string
	NoStringsLocale string

	Table placeholder.StringTable

	// ChunkID and Graph supply the chunk metadata backing chunk-mapping
	// placeholders in the asset content. A nil Graph declares the asset
	// must not contain them.
	ChunkID string
	Graph   chunkmap.ChunkGraph
}

// ProcessLocalizedAsset parses an asset's content and filename as two
// independent plans and renders both once per locale, pairing each
// locale's rendered filename with its rendered content. Filenames never
// contain chunk-mapping placeholders; one appearing there is a contract
// violation.
//
// All recoverable issues from both parses and all renders are returned
// together; artifacts for every locale are produced even when issues are
// present. The error return is reserved for contract violations, which
// abort the whole asset.
func ProcessLocalizedAsset(asset Asset, opts LocalizedOptions) (map[string]Asset, []string, error) {
	var jsonp *placeholder.LocaleResolver
	if opts.Graph != nil {
		resolver, err := chunkmap.DeriveResolver(opts.ChunkID, opts.Graph, opts.NoStringsLocale)
		if err != nil {
			return nil, nil, err
		}
		jsonp = &resolver
	}

	contentPlan, contentIssues, err := placeholder.Parse(asset.Content, opts.Table, jsonp)
	if err != nil {
		return nil, nil, fmt.Errorf("parse asset %q: %w", asset.Name, err)
	}
	namePlan, nameIssues, err := placeholder.Parse(asset.Name, opts.Table, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("parse asset name %q: %w", asset.Name, err)
	}

	contents, renderIssues, err := RenderLocalized(contentPlan, opts.Locales, opts.FillMissing, opts.DefaultLocale, asset.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("render asset %q: %w", asset.Name, err)
	}
	names, nameRenderIssues, err := RenderLocalized(namePlan, opts.Locales, opts.FillMissing, opts.DefaultLocale, len(asset.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("render asset name %q: %w", asset.Name, err)
	}

	artifacts := make(map[string]Asset, len(opts.Locales))
	for _, locale := range opts.Locales {
		artifacts[locale] = Asset{
			Name:    names[locale].Content,
			Content: contents[locale].Content,
			Size:    contents[locale].Size,
		}
	}

	issues := concatIssues(contentIssues, nameIssues, renderIssues, nameRenderIssues)
	return artifacts, issues, nil
}

// NonLocalizedOptions parameterizes ProcessNonLocalizedAsset.
type NonLocalizedOptions struct {
	NoStringsLocale string

	Table placeholder.StringTable

	ChunkID string
	Graph   chunkmap.ChunkGraph
}

// ProcessNonLocalizedAsset is the single-output analogue of
// ProcessLocalizedAsset for assets that must not contain locale-varying
// content. Localized placeholders found anywhere in it are reported as
// issues and substituted visibly.
func ProcessNonLocalizedAsset(asset Asset, opts NonLocalizedOptions) (Asset, []string, error) {
	var jsonp *placeholder.LocaleResolver
	if opts.Graph != nil {
		resolver, err := chunkmap.DeriveResolver(opts.ChunkID, opts.Graph, opts.NoStringsLocale)
		if err != nil {
			return Asset{}, nil, err
		}
		jsonp = &resolver
	}

	contentPlan, contentIssues, err := placeholder.Parse(asset.Content, opts.Table, jsonp)
	if err != nil {
		return Asset{}, nil, fmt.Errorf("parse asset %q: %w", asset.Name, err)
	}
	namePlan, nameIssues, err := placeholder.Parse(asset.Name, opts.Table, nil)
	if err != nil {
		return Asset{}, nil, fmt.Errorf("parse asset name %q: %w", asset.Name, err)
	}

	content, renderIssues, err := RenderNonLocalized(contentPlan, asset.Size, opts.NoStringsLocale)
	if err != nil {
		return Asset{}, nil, fmt.Errorf("render asset %q: %w", asset.Name, err)
	}
	name, nameRenderIssues, err := RenderNonLocalized(namePlan, len(asset.Name), opts.NoStringsLocale)
	if err != nil {
		return Asset{}, nil, fmt.Errorf("render asset name %q: %w", asset.Name, err)
	}

	issues := concatIssues(contentIssues, nameIssues, renderIssues, nameRenderIssues)
	return Asset{Name: name.Content, Content: content.Content, Size: content.Size}, issues, nil
}

// AggregateIssues folds every recoverable issue from one asset's full
// processing into a single error, or nil when there are none. The build
// pipeline decides whether the aggregated error fails the build.
func AggregateIssues(assetName string, issues []string) error {
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("localization of %q reported %d issue(s):\n  %s",
		assetName, len(issues), strings.Join(issues, "\n  "))
}

func concatIssues(groups ...[]string) []string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}
