// Package mock provides an in-process implementation of the portfolio backend
// contract, used when no real endpoint is configured and by the dev server.
package mock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/portfolio/internal/insight"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/store"
	"github.com/hyperengineering/portfolio/internal/types"
)

// Compile-time interface check
var _ rpc.Service = (*Backend)(nil)

const (
	DefaultLatencyMin = 300 * time.Millisecond
	DefaultLatencyMax = 700 * time.Millisecond
	DefaultTokenTTL   = 24 * time.Hour
)

// Backend implements rpc.Service against an in-memory idea list and a user table.
type Backend struct {
	mu     sync.Mutex
	ideas  []types.Idea
	nextID int

	users          store.UserStore
	generator      insight.Generator
	tokens         *TokenService
	requireSession bool

	latencyMin time.Duration
	latencyMax time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithIdeas seeds the idea list. Scores are normalised on the way in.
func WithIdeas(ideas []types.Idea) Option {
	return func(b *Backend) {
		b.ideas = make([]types.Idea, len(ideas))
		for i, idea := range ideas {
			b.ideas[i] = types.Normalize(idea)
		}
	}
}

// WithLatency sets the simulated latency range. Zero disables the delay.
func WithLatency(lo, hi time.Duration) Option {
	return func(b *Backend) {
		b.latencyMin = lo
		b.latencyMax = hi
	}
}

// WithUsers sets the user table.
func WithUsers(users store.UserStore) Option {
	return func(b *Backend) {
		b.users = users
	}
}

// WithGenerator sets the generator behind the AI actions.
func WithGenerator(g insight.Generator) Option {
	return func(b *Backend) {
		b.generator = g
	}
}

// WithSecret sets the HS256 secret used to sign session tokens.
func WithSecret(secret []byte) Option {
	return func(b *Backend) {
		b.tokens.secret = secret
	}
}

// WithTokenTTL sets how long issued session tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.tokens.ttl = ttl
	}
}

// RequireSession makes protected actions validate their session token.
func RequireSession(require bool) Option {
	return func(b *Backend) {
		b.requireSession = require
	}
}

// WithClock overrides the clock used for creation dates and tokens.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
		b.tokens.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// New creates a Backend. Without options it starts empty, uses the
// placeholder generator, an in-memory user table and the default latency.
func New(opts ...Option) *Backend {
	b := &Backend{
		users:      &memoryUsers{},
		generator:  insight.NewPlaceholder(),
		tokens:     NewTokenService([]byte("portfolio-mock-secret"), DefaultTokenTTL),
		latencyMin: DefaultLatencyMin,
		latencyMax: DefaultLatencyMax,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	highest := 0
	for _, idea := range b.ideas {
		highest = max(highest, idea.ID)
	}
	b.nextID = highest + 1
	return b
}

// Count returns the number of ideas held.
func (b *Backend) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ideas)
}

// ModelName returns the name of the generator model.
func (b *Backend) ModelName() string {
	return b.generator.ModelName()
}

// delay sleeps a uniformly random duration in [latencyMin, latencyMax].
func (b *Backend) delay(ctx context.Context) error {
	d := b.latencyMin
	if b.latencyMax > b.latencyMin {
		d += rand.N(b.latencyMax - b.latencyMin + 1)
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// begin applies latency and, when required, session validation.
func (b *Backend) begin(ctx context.Context, auth rpc.Auth) error {
	if err := b.delay(ctx); err != nil {
		return err
	}
	if !b.requireSession {
		return nil
	}
	if _, err := b.tokens.Validate(auth.SessionToken); err != nil {
		b.logger.Debug("session rejected", "error", err)
		return ErrInvalidSession
	}
	return nil
}

// GetServices returns a copy of the idea list.
func (b *Backend) GetServices(ctx context.Context, p rpc.Auth) ([]types.Idea, error) {
	if err := b.begin(ctx, p); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.Idea{}, b.ideas...), nil
}

// AddService appends a new idea with a backend-assigned id and creation date,
// zero scores and zero revenue.
func (b *Backend) AddService(ctx context.Context, p rpc.AddServicePayload) (types.Idea, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return types.Idea{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	idea := types.Normalize(types.Idea{
		ID:             b.nextID,
		Service:        p.Service.Service,
		Need:           p.Service.Need,
		Cluster:        p.Service.Cluster,
		BusinessModel:  p.Service.BusinessModel,
		TargetAudience: p.Service.TargetAudience,
		Status:         p.Service.Status,
		CreatorName:    p.Service.CreatorName,
		CreationDate:   b.now().UTC().Format(time.RFC3339),
	})
	b.nextID++
	b.ideas = append(b.ideas, idea)

	b.logger.Debug("idea added", "id", idea.ID)
	return idea, nil
}

// merge replaces the idea at index i with row, keeping id and creation date.
// Caller must hold b.mu.
func (b *Backend) merge(i int, row types.IdeaRow) types.Idea {
	current := b.ideas[i]
	updated := types.Normalize(types.FromRow(row))
	updated.ID = current.ID
	updated.CreationDate = current.CreationDate
	b.ideas[i] = updated
	return updated
}

// indexOf returns the position of id, or -1. Caller must hold b.mu.
func (b *Backend) indexOf(id int) int {
	for i, idea := range b.ideas {
		if idea.ID == id {
			return i
		}
	}
	return -1
}

// UpdateService merges the row into the idea with the same id.
func (b *Backend) UpdateService(ctx context.Context, p rpc.UpdateServicePayload) (types.Idea, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return types.Idea{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(p.Service.ID)
	if i < 0 {
		return types.Idea{}, fmt.Errorf("Serviço com id %d não encontrado.", p.Service.ID)
	}
	return b.merge(i, p.Service), nil
}

// BulkUpdateServices merges each row whose id exists and skips the rest.
// The count reports ideas actually updated.
func (b *Backend) BulkUpdateServices(ctx context.Context, p rpc.BulkUpdatePayload) (types.BulkUpdateResult, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return types.BulkUpdateResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	updated := 0
	for _, row := range p.Services {
		if i := b.indexOf(row.ID); i >= 0 {
			b.merge(i, row)
			updated++
		}
	}
	return types.BulkUpdateResult{UpdatedCount: updated}, nil
}

// DeleteService removes the idea with the given id. Unknown ids are not an error.
func (b *Backend) DeleteService(ctx context.Context, p rpc.DeletePayload) (types.DeleteResult, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return types.DeleteResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(p.ID); i >= 0 {
		b.ideas = append(b.ideas[:i], b.ideas[i+1:]...)
	}
	return types.DeleteResult{ID: p.ID}, nil
}

// GenerateIdeaDetails delegates to the generator.
func (b *Backend) GenerateIdeaDetails(ctx context.Context, p rpc.IdeaDetailsPayload) (types.GeneratedIdea, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return types.GeneratedIdea{}, err
	}
	if strings.TrimSpace(p.Idea) == "" {
		return types.GeneratedIdea{}, errors.New("Descreva a ideia para gerar os detalhes.")
	}
	return b.generator.IdeaDetails(ctx, p.Idea, p.CriteriaSummary, p.BusinessModelCategories)
}

// RankServices delegates to the generator with the submitted ideas.
func (b *Backend) RankServices(ctx context.Context, p rpc.RankingPayload) ([]types.Ranking, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return nil, err
	}
	return b.generator.Rank(ctx, p.Services, p.Criteria)
}

// Insight delegates to the generator with at most insight.ContextLimit ideas.
func (b *Backend) Insight(ctx context.Context, p rpc.InsightPayload) (types.Insight, error) {
	if err := b.begin(ctx, p.Auth); err != nil {
		return types.Insight{}, err
	}
	if strings.TrimSpace(p.UserQuery) == "" {
		return types.Insight{}, errors.New("A pergunta não pode estar vazia.")
	}
	return b.generator.Answer(ctx, p.UserQuery, insight.LimitContext(p.Services))
}

// LoginUser authenticates a registered user. Passwords are required but not verified.
func (b *Backend) LoginUser(ctx context.Context, p rpc.LoginPayload) (types.AuthResult, error) {
	if err := b.delay(ctx); err != nil {
		return types.AuthResult{}, err
	}
	if strings.TrimSpace(p.Email) == "" || p.Password == "" {
		return types.AuthResult{}, errors.New("E-mail e senha são obrigatórios.")
	}

	user, err := b.users.GetUser(ctx, p.Email)
	if errors.Is(err, store.ErrNotFound) {
		return types.AuthResult{}, errors.New("Usuário não encontrado.")
	}
	if err != nil {
		return types.AuthResult{}, fmt.Errorf("login: %w", err)
	}
	return b.authenticate(*user)
}

// RegisterUser creates a user and authenticates it.
func (b *Backend) RegisterUser(ctx context.Context, p rpc.RegisterPayload) (types.AuthResult, error) {
	if err := b.delay(ctx); err != nil {
		return types.AuthResult{}, err
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" || p.Password == "" {
		return types.AuthResult{}, errors.New("Nome, e-mail e senha são obrigatórios.")
	}

	user := types.User{Name: strings.TrimSpace(p.Name), Email: strings.TrimSpace(p.Email)}
	err := b.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicateUser) {
		return types.AuthResult{}, errors.New("E-mail já cadastrado.")
	}
	if err != nil {
		return types.AuthResult{}, fmt.Errorf("register: %w", err)
	}

	b.logger.Info("user registered", "email", user.Email)
	return b.authenticate(user)
}

func (b *Backend) authenticate(user types.User) (types.AuthResult, error) {
	token, err := b.tokens.Issue(user)
	if err != nil {
		return types.AuthResult{}, err
	}
	return types.AuthResult{User: user, Token: token}, nil
}
