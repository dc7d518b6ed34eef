package portfolio

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hyperengineering/portfolio/internal/classify"
	"github.com/hyperengineering/portfolio/internal/types"
)

// Filter selects ideas for the explorer view. Zero-valued fields match everything.
type Filter struct {
	Cluster       string
	BusinessModel string
	Band          classify.Band
	Status        types.Status
}

// Match reports whether idea passes the filter. The business model is
// compared after classification and the status after applying the default.
func (f Filter) Match(idea types.Idea) bool {
	if f.Cluster != "" && !strings.EqualFold(strings.TrimSpace(idea.Cluster), strings.TrimSpace(f.Cluster)) {
		return false
	}
	if f.BusinessModel != "" && classify.BusinessModel(idea.BusinessModel) != f.BusinessModel {
		return false
	}
	if f.Band != "" && classify.Priority(idea.Total()) != f.Band {
		return false
	}
	if f.Status != "" && idea.EffectiveStatus() != f.Status {
		return false
	}
	return true
}

// Filter returns the matching ideas, most recent (highest id) first.
func (s *Store) Filter(f Filter) []types.Idea {
	var out []types.Idea
	for _, idea := range s.Ideas() {
		if f.Match(idea) {
			out = append(out, idea)
		}
	}
	slices.SortFunc(out, func(a, b types.Idea) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// Clusters returns the distinct cluster labels in use, sorted.
func (s *Store) Clusters() []string {
	seen := map[string]bool{}
	var out []string
	for _, idea := range s.Ideas() {
		if !seen[idea.Cluster] {
			seen[idea.Cluster] = true
			out = append(out, idea.Cluster)
		}
	}
	slices.Sort(out)
	return out
}

// RankedIdea pairs an idea with its total and priority band.
type RankedIdea struct {
	types.Idea
	TotalScore int           `json:"total"`
	Band       classify.Band `json:"band"`
}

// Prioritized returns all ideas ordered by total score, highest first.
// Ties keep id order.
func (s *Store) Prioritized() []RankedIdea {
	ideas := s.Ideas()
	out := make([]RankedIdea, len(ideas))
	for i, idea := range ideas {
		total := idea.Total()
		out[i] = RankedIdea{Idea: idea, TotalScore: total, Band: classify.Priority(total)}
	}
	slices.SortStableFunc(out, func(a, b RankedIdea) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ClusterCount is one slice of the cluster distribution.
type ClusterCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Overview summarises the portfolio.
type Overview struct {
	TotalIdeas          int            `json:"total_ideas"`
	TotalClusters       int            `json:"total_clusters"`
	TotalBusinessModels int            `json:"total_business_models"`
	ClusterDistribution []ClusterCount `json:"cluster_distribution"`
}

// Overview counts ideas, distinct clusters and distinct classified business
// models. The distribution is sorted by count, largest first.
func (s *Store) Overview() Overview {
	ideas := s.Ideas()

	counts := map[string]int{}
	models := map[string]bool{}
	for _, idea := range ideas {
		counts[idea.Cluster]++
		models[classify.BusinessModel(idea.BusinessModel)] = true
	}

	dist := make([]ClusterCount, 0, len(counts))
	for name, n := range counts {
		dist = append(dist, ClusterCount{Name: name, Count: n})
	}
	slices.SortFunc(dist, func(a, b ClusterCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return Overview{
		TotalIdeas:          len(ideas),
		TotalClusters:       len(counts),
		TotalBusinessModels: len(models),
		ClusterDistribution: dist,
	}
}
