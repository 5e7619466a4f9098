package elasticsearch

import (
	"context"
	"strings"
)

// Suggest returns distinct listing names starting with prefix, matched
// case-insensitively on the name keyword.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}

	query := map[string]any{
		"query": map[string]any{
			"prefix": map[string]any{
				"name.keyword": map[string]any{"value": prefix, "case_insensitive": true},
			},
		},
		// Over-fetch so duplicates do not starve the limit.
		"size":    limit * 3,
		"_source": []string{"name"},
		"sort":    []any{map[string]any{"popularity": "desc"}, map[string]any{"id": "asc"}},
	}

	resp, err := e.search(ctx, query, "elasticsearch suggest")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	names := make([]string, 0, limit)
	for _, hit := range resp.Hits.Hits {
		name := hit.Source.Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) == limit {
			break
		}
	}
	return names, nil
}
