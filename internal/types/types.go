package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CriteriaCount is the number of fixed evaluation criteria an idea is scored on.
const CriteriaCount = 5

// MaxScore is the highest score a single criterion can receive.
const MaxScore = 5

// Status represents the workflow state of an idea
type Status string

const (
	StatusEvaluation Status = "avaliação"
	StatusApproved   Status = "aprovada"
	StatusCancelled  Status = "cancelada"
	StatusCompleted  Status = "finalizada"
)

// DefaultStatus is applied when an idea carries no (or an unknown) status.
const DefaultStatus = StatusEvaluation

// Statuses returns all valid statuses in display order.
func Statuses() []Status {
	return []Status{StatusEvaluation, StatusApproved, StatusCancelled, StatusCompleted}
}

// Valid reports whether s is one of the four workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusEvaluation, StatusApproved, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Label returns the capitalised display label.
func (s Status) Label() string {
	switch s {
	case StatusEvaluation:
		return "Avaliação"
	case StatusApproved:
		return "Aprovada"
	case StatusCancelled:
		return "Cancelada"
	case StatusCompleted:
		return "Finalizada"
	}
	return string(s)
}

// Scores holds one score per criterion.
// Decoding is lenient: rows written by hand into the backing sheet may carry
// numeric strings, nulls or no array at all. Anything unusable decodes to nil
// and is replaced by NormalizeScores.
type Scores []int

// UnmarshalJSON implements json.Unmarshaler for Scores.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*s = nil
		return nil
	}

	out := make(Scores, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				*s = nil
				return nil
			}
			out = append(out, int(parsed))
		default:
			*s = nil
			return nil
		}
	}
	*s = out
	return nil
}

// NormalizeScores returns a sequence of exactly CriteriaCount entries, each
// clamped to [0, MaxScore]. A sequence of the wrong length becomes all zeros.
func NormalizeScores(raw []int) Scores {
	out := make(Scores, CriteriaCount)
	if len(raw) != CriteriaCount {
		return out
	}
	for i, v := range raw {
		switch {
		case v < 0:
			out[i] = 0
		case v > MaxScore:
			out[i] = MaxScore
		default:
			out[i] = v
		}
	}
	return out
}

// Total sums the scores.
func (s Scores) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Idea is a candidate service offering under evaluation.
type Idea struct {
	ID              int     `json:"id"`
	Service         string  `json:"service"`
	Need            string  `json:"need"`
	Cluster         string  `json:"cluster"`
	BusinessModel   string  `json:"businessModel"`
	TargetAudience  string  `json:"targetAudience,omitempty"`
	Status          Status  `json:"status,omitempty"`
	CreatorName     string  `json:"creatorName,omitempty"`
	CreationDate    string  `json:"creationDate,omitempty"`
	Scores          Scores  `json:"scores"`
	RevenueEstimate float64 `json:"revenueEstimate"`
}

// Total returns the sum of the idea's scores.
func (i Idea) Total() int {
	return i.Scores.Total()
}

// EffectiveStatus returns the idea's status, falling back to DefaultStatus.
func (i Idea) EffectiveStatus() Status {
	if i.Status.Valid() {
		return i.Status
	}
	return DefaultStatus
}

// Normalize returns a copy of the idea safe to admit into memory: scores have
// exactly CriteriaCount entries, the status is valid and revenue is non-negative.
func Normalize(i Idea) Idea {
	i.Scores = NormalizeScores(i.Scores)
	i.Status = i.EffectiveStatus()
	if i.RevenueEstimate < 0 {
		i.RevenueEstimate = 0
	}
	return i
}

// NewIdea carries the caller-supplied fields of an idea being created.
// The backend assigns id, creation date, scores and revenue estimate.
type NewIdea struct {
	Service        string `json:"service"`
	Need           string `json:"need"`
	Cluster        string `json:"cluster"`
	BusinessModel  string `json:"businessModel"`
	TargetAudience string `json:"targetAudience,omitempty"`
	Status         Status `json:"status,omitempty"`
	CreatorName    string `json:"creatorName,omitempty"`
}

// IdeaRow is the flattened representation written to the backing sheet.
type IdeaRow struct {
	ID                  int     `json:"id"`
	Service             string  `json:"service"`
	Need                string  `json:"need"`
	Cluster             string  `json:"cluster"`
	BusinessModel       string  `json:"businessModel"`
	TargetAudience      string  `json:"targetAudience"`
	Status              Status  `json:"status"`
	CreatorName         string  `json:"creatorName"`
	CreationDate        string  `json:"creationDate"`
	ScoreAlignment      int     `json:"score_alinhamento"`
	ScoreCustomerValue  int     `json:"score_valor_cliente"`
	ScoreFinancial      int     `json:"score_impacto_fin"`
	ScoreFeasibility    int     `json:"score_viabilidade"`
	ScoreCompetitiveAdv int     `json:"score_vantagem_comp"`
	RevenueEstimate     float64 `json:"revenue_estimate"`
}

// ToRow flattens an idea into its sheet row.
func ToRow(i Idea) IdeaRow {
	s := NormalizeScores(i.Scores)
	return IdeaRow{
		ID:                  i.ID,
		Service:             i.Service,
		Need:                i.Need,
		Cluster:             i.Cluster,
		BusinessModel:       i.BusinessModel,
		TargetAudience:      i.TargetAudience,
		Status:              i.EffectiveStatus(),
		CreatorName:         i.CreatorName,
		CreationDate:        i.CreationDate,
		ScoreAlignment:      s[0],
		ScoreCustomerValue:  s[1],
		ScoreFinancial:      s[2],
		ScoreFeasibility:    s[3],
		ScoreCompetitiveAdv: s[4],
		RevenueEstimate:     i.RevenueEstimate,
	}
}

// FromRow rebuilds an idea from its sheet row.
func FromRow(r IdeaRow) Idea {
	return Idea{
		ID:              r.ID,
		Service:         r.Service,
		Need:            r.Need,
		Cluster:         r.Cluster,
		BusinessModel:   r.BusinessModel,
		TargetAudience:  r.TargetAudience,
		Status:          r.Status,
		CreatorName:     r.CreatorName,
		CreationDate:    r.CreationDate,
		Scores:          Scores{r.ScoreAlignment, r.ScoreCustomerValue, r.ScoreFinancial, r.ScoreFeasibility, r.ScoreCompetitiveAdv},
		RevenueEstimate: r.RevenueEstimate,
	}
}

// User identifies an authenticated person.
type User struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// AuthResult is returned by loginUser and registerUser.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Session is the persisted authentication state. Both fields are empty when logged out.
type Session struct {
	User  *User  `yaml:"user"`
	Token string `yaml:"token"`
}

// GeneratedIdea holds AI suggestions for a raw idea title.
type GeneratedIdea struct {
	Benefit  string `json:"beneficio"`
	Audience string `json:"publico"`
	Model    string `json:"modelo"`
}

// Ranking is one entry of the sparse id -> scores mapping returned by getAIRanking.
type Ranking struct {
	ID     int    `json:"id"`
	Scores Scores `json:"scores"`
}

// GroundingChunk is a web source cited by an insight answer.
type GroundingChunk struct {
	Web struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web"`
}

// Insight is a free-text answer to a user question.
type Insight struct {
	Text            string           `json:"text"`
	GroundingChunks []GroundingChunk `json:"groundingChunks"`
}

// BulkUpdateResult reports how many ideas a bulk update touched.
type BulkUpdateResult struct {
	UpdatedCount int `json:"updatedCount"`
}

// DeleteResult echoes the deleted id.
type DeleteResult struct {
	ID int `json:"id"`
}

// HealthResponse is served by the dev backend's health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Backend   string `json:"backend"`
	IdeaCount int    `json:"idea_count"`
	AIModel   string `json:"ai_model"`
}
