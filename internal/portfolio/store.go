// Package portfolio holds the authoritative in-memory idea list and keeps it
// in sync with the backend.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hyperengineering/portfolio/internal/classify"
	"github.com/hyperengineering/portfolio/internal/export"
	"github.com/hyperengineering/portfolio/internal/insight"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/hyperengineering/portfolio/internal/validation"
)

var (
	ErrNothingToExport = errors.New("Não há dados para baixar.")
	ErrIdeaNotFound    = errors.New("ideia não encontrada")
)

// Phase is the state of the collection-level load.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseErrored Phase = "errored"
)

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	Phase        Phase
	Ideas        []types.Idea
	Error        string
	Pending      map[int]bool
	Creating     int
	Ranking      bool
	Notification *Notification
}

// Store is the domain synchronization store. Every mutation is
// confirm-then-apply: the in-memory list changes only after the backend
// accepts the call. Overlapping operations are not serialised; the last
// response to arrive wins.
type Store struct {
	api *rpc.API

	mu           sync.Mutex
	phase        Phase
	ideas        []types.Idea
	errMsg       string
	pending      map[int]int
	creating     int
	ranking      bool
	notification *Notification
	expiry       *time.Timer

	ttl      time.Duration
	now      func() time.Time
	listener func(Notification)
	location *time.Location
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithNotificationTTL overrides how long notifications stay current.
func WithNotificationTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

// WithListener registers a callback invoked for every notification.
func WithListener(fn func(Notification)) Option {
	return func(s *Store) {
		s.listener = fn
	}
}

// WithClock overrides the clock used for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocation sets the time zone used for exported dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		s.location = loc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store that reaches the backend through caller, normally an
// auth.Gate.
func New(caller rpc.Caller, opts ...Option) *Store {
	s := &Store{
		api:      rpc.NewAPI(caller),
		phase:    PhaseIdle,
		pending:  make(map[int]int),
		ttl:      DefaultNotificationTTL,
		now:      time.Now,
		location: time.Local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the pending notification expiry timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expiry != nil {
		s.expiry.Stop()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:    s.phase,
		Ideas:    append([]types.Idea{}, s.ideas...),
		Error:    s.errMsg,
		Pending:  make(map[int]bool, len(s.pending)),
		Creating: s.creating,
		Ranking:  s.ranking,
	}
	for id := range s.pending {
		snap.Pending[id] = true
	}
	if s.notification != nil {
		n := *s.notification
		snap.Notification = &n
	}
	return snap
}

// Ideas returns a copy of the current list.
func (s *Store) Ideas() []types.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Idea{}, s.ideas...)
}

// Get returns the idea with the given id.
func (s *Store) Get(id int) (types.Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.ideas[i], true
	}
	return types.Idea{}, false
}

// indexOf returns the position of id, or -1. Caller must hold s.mu.
func (s *Store) indexOf(id int) int {
	for i, idea := range s.ideas {
		if idea.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) markPending(ids ...int) func() {
	s.mu.Lock()
	for _, id := range ids {
		s.pending[id]++
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, id := range ids {
			if s.pending[id] <= 1 {
				delete(s.pending, id)
			} else {
				s.pending[id]--
			}
		}
	}
}

// Load fetches the full list: idle → loading → ready | errored. Scores are
// normalised before admission. The outcome is reported through state only.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.errMsg = ""
	s.mu.Unlock()

	ideas, err := s.api.GetServices(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhaseErrored
		s.errMsg = err.Error()
		s.logger.Warn("load failed", "error", err)
		return err
	}

	s.ideas = make([]types.Idea, len(ideas))
	for i, idea := range ideas {
		s.ideas[i] = types.Normalize(idea)
	}
	s.phase = PhaseReady
	s.logger.Debug("ideas loaded", "count", len(s.ideas))
	return nil
}

// Refresh reloads the list and notifies the outcome.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		s.notify(SeverityError, err.Error())
		return err
	}
	s.notify(SeveritySuccess, "Dados sincronizados com sucesso!")
	return nil
}

// Create validates the idea, sends it and appends the backend's record.
func (s *Store) Create(ctx context.Context, idea types.NewIdea) (types.Idea, error) {
	if err := validation.ValidateNewIdea(idea); err != nil {
		s.notify(SeverityError, fmt.Sprintf("Falha ao adicionar a ideia: %v", err))
		return types.Idea{}, err
	}

	s.mu.Lock()
	s.creating++
	s.mu.Unlock()

	created, err := s.api.AddService(ctx, idea)

	s.mu.Lock()
	s.creating--
	if err == nil {
		created = types.Normalize(created)
		s.ideas = append(s.ideas, created)
	}
	s.mu.Unlock()

	if err != nil {
		s.notify(SeverityError, fmt.Sprintf("Falha ao adicionar a ideia: %v", err))
		return types.Idea{}, err
	}
	s.notify(SeveritySuccess, "Ideia adicionada com sucesso!")
	return created, nil
}

// Update sends the full record and replaces the in-memory copy on confirmation.
func (s *Store) Update(ctx context.Context, idea types.Idea) (types.Idea, error) {
	const failPrefix = "Falha ao salvar a ideia"
	if err := validation.ValidateIdea(idea); err != nil {
		s.notify(SeverityError, fmt.Sprintf("%s: %v", failPrefix, err))
		return types.Idea{}, err
	}
	return s.update(ctx, idea, "Ideia salva com sucesso!", failPrefix)
}

// SetStatus changes one idea's workflow status, confirm-then-apply. Only the
// status is checked; the rest of the row is sent as the backend holds it.
func (s *Store) SetStatus(ctx context.Context, id int, status types.Status) (types.Idea, error) {
	idea, ok := s.Get(id)
	if !ok {
		err := fmt.Errorf("%w: %d", ErrIdeaNotFound, id)
		s.notify(SeverityError, fmt.Sprintf("Falha ao atualizar o status: %v", err))
		return types.Idea{}, err
	}
	if !status.Valid() {
		var c validation.Collector
		c.Add(validation.ValidateRequired("status", string(status)))
		c.Add(validation.ValidateStatus("status", status))
		err := c.Err()
		s.notify(SeverityError, fmt.Sprintf("Falha ao atualizar o status: %v", err))
		return types.Idea{}, err
	}

	idea.Status = status
	return s.update(ctx, idea,
		fmt.Sprintf("Status atualizado para %s.", status.Label()),
		"Falha ao atualizar o status")
}

func (s *Store) update(ctx context.Context, idea types.Idea, okMsg, failPrefix string) (types.Idea, error) {
	idea = types.Normalize(idea)

	done := s.markPending(idea.ID)
	confirmed, err := s.api.UpdateService(ctx, idea)
	done()

	if err != nil {
		s.notify(SeverityError, fmt.Sprintf("%s: %v", failPrefix, err))
		return types.Idea{}, err
	}

	// Prefer the backend's record; fall back to what was sent when the
	// response does not describe the same idea.
	result := idea
	if confirmed.ID == idea.ID {
		result = types.Normalize(confirmed)
	}

	s.mu.Lock()
	if i := s.indexOf(idea.ID); i >= 0 {
		s.ideas[i] = result
	}
	s.mu.Unlock()

	s.notify(SeveritySuccess, okMsg)
	return result, nil
}

// Delete removes the idea on confirmation.
func (s *Store) Delete(ctx context.Context, id int) error {
	done := s.markPending(id)
	_, err := s.api.DeleteService(ctx, id)
	done()

	if err != nil {
		s.notify(SeverityError, fmt.Sprintf("Falha ao excluir a ideia: %v", err))
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
	}
	s.mu.Unlock()

	s.notify(SeveritySuccess, "Ideia excluída com sucesso.")
	return nil
}

// ApplyAIRanking scores the full list with the AI, applies the returned
// scores to matching ids and persists the changed ideas in one bulk update.
// When the persist fails the local scores stay applied. It returns how many
// ideas were re-scored.
func (s *Store) ApplyAIRanking(ctx context.Context) (int, error) {
	s.mu.Lock()
	if len(s.ideas) == 0 {
		s.mu.Unlock()
		s.notify(SeverityInfo, "Não há ideias para analisar.")
		return 0, nil
	}
	current := append([]types.Idea{}, s.ideas...)
	s.ranking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.ranking = false
		s.mu.Unlock()
	}()

	rankings, err := s.api.Rank(ctx, current)
	if err != nil {
		s.notify(SeverityError, fmt.Sprintf("Falha na análise da IA: %v", err))
		return 0, err
	}

	scores := make(map[int]types.Scores, len(rankings))
	for _, r := range rankings {
		scores[r.ID] = types.NormalizeScores(r.Scores)
	}

	var changed []types.Idea
	var ids []int
	s.mu.Lock()
	for i, idea := range s.ideas {
		if sc, ok := scores[idea.ID]; ok {
			s.ideas[i].Scores = sc
			changed = append(changed, s.ideas[i])
			ids = append(ids, idea.ID)
		}
	}
	s.mu.Unlock()

	if len(changed) == 0 {
		s.notify(SeverityInfo, "A IA não retornou notas para as ideias atuais.")
		return 0, nil
	}

	done := s.markPending(ids...)
	_, err = s.api.BulkUpdateServices(ctx, changed)
	done()

	if err != nil {
		s.logger.Warn("ranking applied locally but not persisted", "count", len(changed), "error", err)
		s.notify(SeverityError, fmt.Sprintf("Falha ao salvar o ranking: %v", err))
		return len(changed), err
	}

	s.notify(SeveritySuccess, "Ranking salvo com sucesso!")
	return len(changed), nil
}

// GenerateIdeaDetails asks the AI to flesh out a raw idea title. The
// suggested business model is normalised into a fixed category.
func (s *Store) GenerateIdeaDetails(ctx context.Context, idea string) (types.GeneratedIdea, error) {
	if err := validation.ValidateQuery("idea", idea); err != nil {
		return types.GeneratedIdea{}, err
	}

	details, err := s.api.GenerateIdeaDetails(ctx, idea)
	if err != nil {
		return types.GeneratedIdea{}, err
	}
	details.Model = classify.BusinessModel(details.Model)
	return details, nil
}

// Ask answers a free-text question using the head of the list as context.
func (s *Store) Ask(ctx context.Context, query string) (types.Insight, error) {
	if err := validation.ValidateQuery("query", query); err != nil {
		return types.Insight{}, err
	}

	s.mu.Lock()
	sample := append([]types.Idea{}, insight.LimitContext(s.ideas)...)
	s.mu.Unlock()

	answer, err := s.api.Insight(ctx, query, sample)
	if err != nil {
		return types.Insight{}, err
	}
	if answer.GroundingChunks == nil {
		answer.GroundingChunks = []types.GroundingChunk{}
	}
	return answer, nil
}

// ExportCSV writes the list as CSV. An empty list is not exported.
func (s *Store) ExportCSV(w io.Writer) error {
	ideas := s.Ideas()
	if len(ideas) == 0 {
		s.notify(SeverityInfo, ErrNothingToExport.Error())
		return ErrNothingToExport
	}

	if err := export.WriteCSV(w, ideas, s.location); err != nil {
		s.notify(SeverityError, fmt.Sprintf("Falha ao exportar: %v", err))
		return err
	}
	s.notify(SeveritySuccess, "Planilha exportada com sucesso.")
	return nil
}
