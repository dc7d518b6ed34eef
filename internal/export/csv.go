// Package export renders the idea list as a spreadsheet-friendly CSV file.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/classify"
	"github.com/hyperengineering/portfolio/internal/types"
)

// DefaultFilename is the file name used when the caller does not choose one.
const DefaultFilename = "ideias_priorizadas.csv"

const (
	bom       = "\uFEFF"
	delimiter = ";"
)

// Headers returns the fixed header row, with one column per criterion.
func Headers() []string {
	headers := []string{
		"ID", "Serviço", "Benefício Principal", "Público-Alvo", "Cluster",
		"Modelo de Negócio", "Status", "Criador", "Data de Criação",
	}
	for _, c := range catalog.Criteria() {
		headers = append(headers, c.Title)
	}
	return append(headers, "Estimativa Faturamento", "Pontuação Total")
}

// Row returns the unquoted cell values for one idea. Creation dates are
// rendered dd/mm/yyyy in loc.
func Row(idea types.Idea, loc *time.Location) []string {
	scores := types.NormalizeScores(idea.Scores)
	row := []string{
		strconv.Itoa(idea.ID),
		idea.Service,
		idea.Need,
		idea.TargetAudience,
		idea.Cluster,
		classify.BusinessModel(idea.BusinessModel),
		string(idea.EffectiveStatus()),
		idea.CreatorName,
		formatDate(idea.CreationDate, loc),
	}
	for _, s := range scores {
		row = append(row, strconv.Itoa(s))
	}
	return append(row,
		strconv.FormatFloat(max(idea.RevenueEstimate, 0), 'f', -1, 64),
		strconv.Itoa(scores.Total()),
	)
}

// WriteCSV writes the BOM, the header row and one row per idea. Every data
// cell is double-quoted with embedded quotes doubled; rows end with "\n".
// A nil loc means time.Local.
func WriteCSV(w io.Writer, ideas []types.Idea, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(bom + strings.Join(Headers(), delimiter)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, idea := range ideas {
		cells := Row(idea, loc)
		for i, c := range cells {
			cells[i] = quote(c)
		}
		if _, err := bw.WriteString("\n" + strings.Join(cells, delimiter)); err != nil {
			return fmt.Errorf("write row %d: %w", idea.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatDate renders an ISO 8601 timestamp or date as dd/mm/yyyy.
// Unparseable values are passed through unchanged.
func formatDate(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc).Format("02/01/2006")
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t.Format("02/01/2006")
	}
	return raw
}
