package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/assistant"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/catalog"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/pagination"
)

const maxAssistantMessage = 500

// AssistRequest is one shopper message.
type AssistRequest struct {
	Message string `json:"message" validate:"max=500"`
	Page    int    `json:"page" validate:"gte=0"`
	PerPage int    `json:"per_page" validate:"gte=0"`
}

// AssistResponse is the assistant's reply and, for searches, the matches.
type AssistResponse struct {
	Reply  string               `json:"reply"`
	Intent assistant.Intent     `json:"intent"`
	Result *domain.SearchResult `json:"result,omitempty"`
}

// Assist interprets a message against the current catalog vocabulary and
// runs the resulting filters through the same search path as Search.
func (s *CatalogService) Assist(ctx context.Context, req AssistRequest) (*AssistResponse, error) {
	if len(req.Message) > maxAssistantMessage {
		return nil, apperrors.InvalidInput(fmt.Sprintf("message must be at most %d bytes", maxAssistantMessage))
	}

	all, err := s.engine.All(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("assist: %w", err)
	}
	categories, locations := catalog.Vocabulary(all)
	intent := assistant.Interpret(req.Message, assistant.Vocabulary{Categories: categories, Locations: locations})
	s.metrics.assisted(string(intent.Action))

	resp := &AssistResponse{Intent: intent}
	if intent.Action != assistant.ActionSearch {
		resp.Reply = intent.Reply(0)
		return resp, nil
	}

	var result *domain.SearchResult
	if intent.Unsatisfiable {
		p := pagination.Params{Page: req.Page, PerPage: req.PerPage}.Normalize()
		result = &domain.SearchResult{
			Listings:          []domain.Listing{},
			Page:              p.Page,
			PerPage:           p.PerPage,
			ActiveFilters:     intent.Filters.ActiveFilters(),
			ActiveFilterCount: len(intent.Filters.ActiveFilters()),
		}
	} else {
		result, err = s.Search(ctx, &domain.SearchQuery{
			Kind:    intent.Kind,
			Filters: intent.Filters,
			Page:    req.Page,
			PerPage: req.PerPage,
		})
		if err != nil {
			return nil, fmt.Errorf("assist: %w", err)
		}
	}
	resp.Result = result
	resp.Reply = intent.Reply(result.Total)

	s.logger.DebugContext(ctx, "assistant message handled",
		slog.String("rules", strings.Join(intent.Rules, ",")),
		slog.Bool("unsatisfiable", intent.Unsatisfiable),
		slog.Int("total", result.Total),
	)
	return resp, nil
}
