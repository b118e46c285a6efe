package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/core/normalize"
	"github.com/kirillkom/policy-navigator/internal/core/ports"
)

// SearchUseCase forwards a query to the external index search and normalizes
// the loosely-shaped hits. It is stateless and, unlike the workflows, lets
// transport errors propagate to the adapter.
type SearchUseCase struct {
	gateway     ports.PipelineGateway
	defaultTopK int
}

func NewSearchUseCase(gateway ports.PipelineGateway, defaultTopK int) *SearchUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &SearchUseCase{
		gateway:     gateway,
		defaultTopK: defaultTopK,
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string, topK int) (*domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query must not be empty"))
	}
	if topK <= 0 {
		topK = uc.defaultTopK
	}

	raw, err := uc.gateway.SearchIndex(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return normalize.SearchHits(value), nil
}
