package tm

import (
	"context"
	"fmt"

	"bundle-localizer/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Suggester proposes translation candidates for a string a locale is
// missing, by similarity search over the translation memory.
type Suggester struct {
	store  *Store
	client *EmbeddingClient
}

// NewSuggester creates a suggester over the given store and client.
func NewSuggester(store *Store, client *EmbeddingClient) *Suggester {
	return &Suggester{store: store, client: client}
}

// Suggest embeds the source text and returns the closest memory entries
// for the target locale.
func (s *Suggester) Suggest(ctx context.Context, sourceText, locale string, topK int) ([]Match, error) {
	vector, err := s.client.EmbedQuery(ctx, sourceText)
	if err != nil {
		return nil, fmt.Errorf("embed source text: %w", err)
	}

	matches, err := s.store.Search(ctx, vector, locale, topK)
	if err != nil {
		return nil, fmt.Errorf("search translation memory: %w", err)
	}

	log.Debug().
		Str("text", textutil.Truncate(sourceText, 30)).
		Str("locale", locale).
		Int("matches", len(matches)).
		Msg("Translation memory lookup")

	return matches, nil
}
