package insight

import (
	"context"
	"testing"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/types"
)

// mockGenerator is a compile-time check that the Generator interface can be implemented.
type mockGenerator struct{}

var _ Generator = (*mockGenerator)(nil)

func (m *mockGenerator) IdeaDetails(ctx context.Context, idea, criteriaSummary string, categories []string) (types.GeneratedIdea, error) {
	return types.GeneratedIdea{}, nil
}
func (m *mockGenerator) Rank(ctx context.Context, ideas []types.Idea, criteria []catalog.Criterion) ([]types.Ranking, error) {
	return nil, nil
}
func (m *mockGenerator) Answer(ctx context.Context, query string, ideas []types.Idea) (types.Insight, error) {
	return types.Insight{}, nil
}
func (m *mockGenerator) ModelName() string {
	return ""
}

func TestLimitContext(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"empty", 0, 0},
		{"under limit", 3, 3},
		{"at limit", ContextLimit, ContextLimit},
		{"over limit", 40, ContextLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas := make([]types.Idea, tt.n)
			for i := range ideas {
				ideas[i].ID = i + 1
			}
			got := LimitContext(ideas)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			if tt.want > 0 && got[0].ID != 1 {
				t.Errorf("first id = %d, want head of list", got[0].ID)
			}
		})
	}
}
