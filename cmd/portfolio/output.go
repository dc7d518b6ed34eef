package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/classify"
	"github.com/hyperengineering/portfolio/internal/types"
)

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter creates a tabwriter with standard formatting.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// truncate shortens s to max runes for table cells.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func printIdeaTable(w io.Writer, ideas []types.Idea) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ID\tSERVICE\tCLUSTER\tMODEL\tSTATUS\tTOTAL\tPRIORITY")
	for _, idea := range ideas {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			idea.ID,
			truncate(idea.Service, 40),
			truncate(idea.Cluster, 24),
			classify.BusinessModel(idea.BusinessModel),
			idea.EffectiveStatus().Label(),
			idea.Total(),
			classify.Priority(idea.Total()),
		)
	}
	return tw.Flush()
}

func printIdea(w io.Writer, idea types.Idea) error {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "ID:\t%d\n", idea.ID)
	fmt.Fprintf(tw, "Service:\t%s\n", idea.Service)
	fmt.Fprintf(tw, "Need:\t%s\n", idea.Need)
	fmt.Fprintf(tw, "Audience:\t%s\n", idea.TargetAudience)
	fmt.Fprintf(tw, "Cluster:\t%s\n", idea.Cluster)
	fmt.Fprintf(tw, "Model:\t%s\n", classify.BusinessModel(idea.BusinessModel))
	fmt.Fprintf(tw, "Status:\t%s\n", idea.EffectiveStatus().Label())
	fmt.Fprintf(tw, "Creator:\t%s\n", idea.CreatorName)
	fmt.Fprintf(tw, "Created:\t%s\n", idea.CreationDate)
	fmt.Fprintf(tw, "Revenue:\t%s\n", strconv.FormatFloat(idea.RevenueEstimate, 'f', -1, 64))

	scores := types.NormalizeScores(idea.Scores)
	for i, c := range catalog.Criteria() {
		fmt.Fprintf(tw, "  %s:\t%d\n", c.ShortTitle, scores[i])
	}
	fmt.Fprintf(tw, "Total:\t%d (%s)\n", idea.Total(), classify.Priority(idea.Total()))
	return tw.Flush()
}

// parseScores reads "a,b,c,d,e" into one score per criterion.
func parseScores(raw string) (types.Scores, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != types.CriteriaCount {
		return nil, fmt.Errorf("scores: expected %d comma-separated values, got %d", types.CriteriaCount, len(parts))
	}
	out := make(types.Scores, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("scores: %q is not an integer", p)
		}
		if n < 0 || n > types.MaxScore {
			return nil, fmt.Errorf("scores: %d is outside 0..%d", n, types.MaxScore)
		}
		out[i] = n
	}
	return out, nil
}

// parseStatus accepts a status by value or display label, ignoring case.
func parseStatus(raw string) (types.Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range types.Statuses() {
		if strings.EqualFold(raw, string(s)) || strings.EqualFold(raw, s.Label()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (valid: %s)", raw, joinStatuses())
}

func joinStatuses() string {
	names := make([]string, 0, len(types.Statuses()))
	for _, s := range types.Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// parseBand accepts a priority band label, ignoring case.
func parseBand(raw string) (classify.Band, error) {
	for _, b := range classify.Bands() {
		if strings.EqualFold(strings.TrimSpace(raw), string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown priority band %q", raw)
}

// parseBusinessModel resolves raw to one of the fixed categories.
func parseBusinessModel(raw string) (string, error) {
	model, ok := classify.MatchBusinessModel(raw)
	if !ok {
		return "", fmt.Errorf("unknown business model %q (valid: %s)", raw, strings.Join(catalog.BusinessModelCategories(), ", "))
	}
	return model, nil
}

// clusterLabel maps a cluster id or title onto the short title ideas are
// filed under. Unknown labels pass through unchanged.
func clusterLabel(raw string) string {
	if c, ok := catalog.FindCluster(raw); ok {
		return c.ShortTitle
	}
	return strings.TrimSpace(raw)
}
