// Package retrieval provides candidate retrieval backends behind the
// api.CandidateRetriever interface.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"rfq-engine/pkg/api"
)

// MemoryRetriever serves candidates from an in-memory catalog using keyword
// overlap between the query text and each product's searchable text. The
// catalog is read-only after construction.
type MemoryRetriever struct {
	catalog []api.CandidateProduct
	texts   []string
	logger  zerolog.Logger
}

var _ api.CandidateRetriever = (*MemoryRetriever)(nil)

// NewMemoryRetriever indexes the catalog for keyword retrieval.
func NewMemoryRetriever(catalog []api.CandidateProduct, logger zerolog.Logger) *MemoryRetriever {
	r := &MemoryRetriever{
		catalog: catalog,
		texts:   make([]string, len(catalog)),
		logger:  logger,
	}
	for i, p := range catalog {
		r.texts[i] = searchText(p)
	}
	return r
}

// Retrieve returns catalog products whose text shares keywords with the
// query or the required spec values, most hits first; equal-hit products
// keep catalog order. A query matching nothing falls back to the full
// catalog so scoring can still discriminate.
func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, specs api.SpecList) ([]api.CandidateProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := queryTokens(query, specs)
	if len(tokens) == 0 {
		return append([]api.CandidateProduct(nil), r.catalog...), nil
	}

	type hit struct {
		index int
		count int
	}
	var hits []hit
	for i, text := range r.texts {
		count := 0
		for token := range tokens {
			if strings.Contains(text, token) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{index: i, count: count})
		}
	}

	if len(hits) == 0 {
		r.logger.Debug().Str("query", query).Msg("no keyword hits, falling back to full catalog")
		return append([]api.CandidateProduct(nil), r.catalog...), nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].count > hits[j].count
	})

	out := make([]api.CandidateProduct, 0, len(hits))
	for _, h := range hits {
		out = append(out, r.catalog[h.index])
	}
	return out, nil
}

// Size returns the number of catalog products indexed.
func (r *MemoryRetriever) Size() int { return len(r.catalog) }

func searchText(p api.CandidateProduct) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(p.ProductName))
	b.WriteByte(' ')
	b.WriteString(strings.ToLower(p.Category))
	for _, f := range p.Features {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(f.Name))
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(f.Value))
	}
	return b.String()
}

func queryTokens(query string, specs api.SpecList) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(query)) {
		tokens[w] = struct{}{}
	}
	for _, spec := range specs {
		for _, w := range strings.Fields(strings.ToLower(spec.Value)) {
			tokens[w] = struct{}{}
		}
	}
	return tokens
}
