// Package insight produces the AI results behind the mock backend's
// getAIGeneratedIdeaDetails, getAIRanking and getAIInsight actions.
package insight

import (
	"context"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/types"
)

// ContextLimit is how many ideas are sent as context with an insight question.
const ContextLimit = 15

// Generator defines the interface contract for AI result generation.
type Generator interface {
	IdeaDetails(ctx context.Context, idea, criteriaSummary string, categories []string) (types.GeneratedIdea, error)
	Rank(ctx context.Context, ideas []types.Idea, criteria []catalog.Criterion) ([]types.Ranking, error)
	Answer(ctx context.Context, query string, ideas []types.Idea) (types.Insight, error)
	ModelName() string
}

// LimitContext returns at most ContextLimit ideas from the head of the list.
func LimitContext(ideas []types.Idea) []types.Idea {
	if len(ideas) > ContextLimit {
		return ideas[:ContextLimit]
	}
	return ideas
}
