package insight

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/classify"
	"github.com/hyperengineering/portfolio/internal/types"
)

// Compile-time interface check
var _ Generator = (*Placeholder)(nil)

// Placeholder returns schema-valid simulated results without calling any model.
type Placeholder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholder creates a Placeholder seeded from the runtime source.
func NewPlaceholder() *Placeholder {
	return &Placeholder{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededPlaceholder creates a Placeholder with a reproducible score sequence.
func NewSeededPlaceholder(seed uint64) *Placeholder {
	return &Placeholder{rng: rand.New(rand.NewPCG(seed, seed))}
}

// IdeaDetails returns simulated suggestions. The model is the idea title
// classified into a catalog category.
func (p *Placeholder) IdeaDetails(ctx context.Context, idea, criteriaSummary string, categories []string) (types.GeneratedIdea, error) {
	if err := ctx.Err(); err != nil {
		return types.GeneratedIdea{}, err
	}
	return types.GeneratedIdea{
		Benefit:  fmt.Sprintf("Benefício simulado para %q", idea),
		Audience: "Público-alvo simulado",
		Model:    classify.BusinessModel(idea),
	}, nil
}

// Rank returns random scores in [0, MaxScore] for every submitted idea.
func (p *Placeholder) Rank(ctx context.Context, ideas []types.Idea, criteria []catalog.Criterion) ([]types.Ranking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rankings := make([]types.Ranking, 0, len(ideas))
	for _, idea := range ideas {
		scores := make(types.Scores, types.CriteriaCount)
		for i := range scores {
			scores[i] = p.rng.IntN(types.MaxScore + 1)
		}
		rankings = append(rankings, types.Ranking{ID: idea.ID, Scores: scores})
	}
	return rankings, nil
}

// Answer returns a simulated markdown answer with no grounding sources.
func (p *Placeholder) Answer(ctx context.Context, query string, ideas []types.Idea) (types.Insight, error) {
	if err := ctx.Err(); err != nil {
		return types.Insight{}, err
	}
	return types.Insight{
		Text:            "Esta é uma **análise simulada** sobre sua pergunta.",
		GroundingChunks: []types.GroundingChunk{},
	}, nil
}

// ModelName identifies the placeholder in health responses.
func (p *Placeholder) ModelName() string {
	return "placeholder"
}
