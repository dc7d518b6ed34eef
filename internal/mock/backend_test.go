package mock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/store"
	"github.com/hyperengineering/portfolio/internal/types"
)

var fixedNow = time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

func newTestBackend(opts ...Option) *Backend {
	base := []Option{WithLatency(0, 0), WithClock(func() time.Time { return fixedNow })}
	return New(append(base, opts...)...)
}

func TestBackend_AddToEmptyList(t *testing.T) {
	// Given: An empty backend
	b := newTestBackend()
	ctx := context.Background()

	// When: A service is added with caller-supplied status only
	created, err := b.AddService(ctx, rpc.AddServicePayload{Service: types.NewIdea{
		Service:        "Instalação de Painéis Solares",
		Need:           "Energia mais barata",
		Cluster:        "Casa Inteligente",
		BusinessModel:  "Pacote de Serviço",
		TargetAudience: "Residências",
		CreatorName:    "Ana",
	}})

	// Then: The backend assigns id 1, zero scores, zero revenue and a creation date
	if err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}
	if len(created.Scores) != types.CriteriaCount || created.Total() != 0 {
		t.Errorf("Scores = %v, want five zeros", created.Scores)
	}
	if created.RevenueEstimate != 0 {
		t.Errorf("RevenueEstimate = %v, want 0", created.RevenueEstimate)
	}
	if created.CreationDate != "2024-05-17T12:00:00Z" {
		t.Errorf("CreationDate = %q", created.CreationDate)
	}
	if created.Status != types.StatusEvaluation {
		t.Errorf("Status = %q, want default", created.Status)
	}

	// And: Every submitted field comes back on fetch
	list, _ := b.GetServices(ctx, rpc.Auth{})
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}
	got := list[0]
	fields := []struct{ name, got, want string }{
		{"Service", got.Service, "Instalação de Painéis Solares"},
		{"Need", got.Need, "Energia mais barata"},
		{"Cluster", got.Cluster, "Casa Inteligente"},
		{"BusinessModel", got.BusinessModel, "Pacote de Serviço"},
		{"TargetAudience", got.TargetAudience, "Residências"},
		{"CreatorName", got.CreatorName, "Ana"},
	}
	if got.ID != created.ID {
		t.Errorf("ID = %d, want %d", got.ID, created.ID)
	}
	for _, f := range fields {
		if f.got != f.want {
			t.Errorf("%s = %q, want %q", f.name, f.got, f.want)
		}
	}
}

func TestBackend_NextIDFollowsSeed(t *testing.T) {
	b := newTestBackend(WithIdeas(SampleIdeas()))

	created, err := b.AddService(context.Background(), rpc.AddServicePayload{Service: types.NewIdea{Service: "Nova"}})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 4 {
		t.Errorf("ID = %d, want 4", created.ID)
	}
}

func TestBackend_AddAcceptsBlankTitle(t *testing.T) {
	b := newTestBackend()
	created, err := b.AddService(context.Background(), rpc.AddServicePayload{})
	if err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if created.ID != 1 || b.Count() != 1 {
		t.Errorf("created = %+v, count = %d", created, b.Count())
	}
}

func TestBackend_GetServicesReturnsCopy(t *testing.T) {
	b := newTestBackend(WithIdeas(SampleIdeas()))
	ctx := context.Background()

	list, _ := b.GetServices(ctx, rpc.Auth{})
	list[0].Service = "mutated"

	again, _ := b.GetServices(ctx, rpc.Auth{})
	if again[0].Service == "mutated" {
		t.Error("GetServices exposed internal state")
	}
}

func TestBackend_UpdateUnknownID(t *testing.T) {
	// Given: The sample list
	b := newTestBackend(WithIdeas(SampleIdeas()))

	// When: Updating an id that does not exist
	_, err := b.UpdateService(context.Background(), rpc.UpdateServicePayload{Service: types.IdeaRow{ID: 999}})

	// Then: The failure names the id
	if err == nil || !strings.Contains(err.Error(), "999") || !strings.Contains(err.Error(), "não encontrado") {
		t.Errorf("error = %v, want not-found for 999", err)
	}
}

func TestBackend_UpdateKeepsCreationDate(t *testing.T) {
	b := newTestBackend(WithIdeas(SampleIdeas()))
	ctx := context.Background()

	idea := SampleIdeas()[1]
	idea.Status = types.StatusApproved
	idea.Scores = types.Scores{1, 1, 1, 1, 1}
	idea.CreationDate = "2030-01-01T00:00:00Z"

	updated, err := b.UpdateService(ctx, rpc.UpdateServicePayload{Service: types.ToRow(idea)})
	if err != nil {
		t.Fatalf("UpdateService: %v", err)
	}
	if updated.CreationDate != "2023-10-02T11:30:00Z" {
		t.Errorf("CreationDate = %q, want unchanged", updated.CreationDate)
	}
	if updated.Status != types.StatusApproved || updated.Total() != 5 {
		t.Errorf("updated = %+v", updated)
	}
}

func TestBackend_BulkUpdateCountsMatches(t *testing.T) {
	b := newTestBackend(WithIdeas(SampleIdeas()))

	rows := []types.IdeaRow{
		types.ToRow(types.Idea{ID: 1, Service: "A", Scores: types.Scores{5, 5, 5, 5, 5}}),
		types.ToRow(types.Idea{ID: 42, Service: "ghost"}),
		types.ToRow(types.Idea{ID: 3, Service: "C"}),
	}
	res, err := b.BulkUpdateServices(context.Background(), rpc.BulkUpdatePayload{Services: rows})
	if err != nil {
		t.Fatalf("BulkUpdateServices: %v", err)
	}
	if res.UpdatedCount != 2 {
		t.Errorf("UpdatedCount = %d, want 2", res.UpdatedCount)
	}
	if b.Count() != 3 {
		t.Errorf("Count = %d, unmatched row must not be inserted", b.Count())
	}
}

func TestBackend_DeleteIsIdempotent(t *testing.T) {
	b := newTestBackend(WithIdeas(SampleIdeas()))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := b.DeleteService(ctx, rpc.DeletePayload{ID: 2})
		if err != nil {
			t.Fatalf("DeleteService #%d: %v", i+1, err)
		}
		if res.ID != 2 {
			t.Errorf("res.ID = %d, want 2", res.ID)
		}
	}
	if b.Count() != 2 {
		t.Errorf("Count = %d, want 2", b.Count())
	}
}

func TestBackend_AIActions(t *testing.T) {
	b := newTestBackend(WithIdeas(SampleIdeas()))
	ctx := context.Background()

	details, err := b.GenerateIdeaDetails(ctx, rpc.IdeaDetailsPayload{
		Idea:                    "Reparo expresso",
		CriteriaSummary:         catalog.CriteriaSummary(),
		BusinessModelCategories: catalog.BusinessModelCategories(),
	})
	if err != nil || details.Model == "" {
		t.Errorf("GenerateIdeaDetails = %+v, %v", details, err)
	}

	rankings, err := b.RankServices(ctx, rpc.RankingPayload{Services: SampleIdeas(), Criteria: catalog.Criteria()})
	if err != nil || len(rankings) != 3 {
		t.Errorf("RankServices = %+v, %v", rankings, err)
	}

	answer, err := b.Insight(ctx, rpc.InsightPayload{UserQuery: "Qual ideia priorizar?", Services: SampleIdeas()})
	if err != nil || answer.Text == "" {
		t.Errorf("Insight = %+v, %v", answer, err)
	}

	if _, err := b.Insight(ctx, rpc.InsightPayload{UserQuery: "  "}); err == nil {
		t.Error("Insight with empty query should fail")
	}
	if _, err := b.GenerateIdeaDetails(ctx, rpc.IdeaDetailsPayload{}); err == nil {
		t.Error("GenerateIdeaDetails with empty idea should fail")
	}
}

func TestBackend_RegisterAndLogin(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	// Given: A registered user
	reg, err := b.RegisterUser(ctx, rpc.RegisterPayload{Name: "Ana", Email: "ana@example.com", Password: "x"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if reg.Token == "" || reg.User.Name != "Ana" {
		t.Errorf("register result = %+v", reg)
	}

	// When: Logging in with a password that was never stored
	got, err := b.LoginUser(ctx, rpc.LoginPayload{Email: "ana@example.com", Password: "anything"})

	// Then: The user is authenticated with a verifiable token
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	claims, err := b.tokens.Validate(got.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "ana@example.com" || claims.Name != "Ana" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestBackend_AuthFailures(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"login unknown", func() error {
			_, err := b.LoginUser(ctx, rpc.LoginPayload{Email: "x@example.com", Password: "p"})
			return err
		}, "Usuário não encontrado."},
		{"login missing password", func() error {
			_, err := b.LoginUser(ctx, rpc.LoginPayload{Email: "x@example.com"})
			return err
		}, "E-mail e senha são obrigatórios."},
		{"register missing name", func() error {
			_, err := b.RegisterUser(ctx, rpc.RegisterPayload{Email: "x@example.com", Password: "p"})
			return err
		}, "Nome, e-mail e senha são obrigatórios."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBackend_RegisterDuplicate(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	if _, err := b.RegisterUser(ctx, rpc.RegisterPayload{Name: "Ana", Email: "ana@example.com", Password: "x"}); err != nil {
		t.Fatal(err)
	}
	_, err := b.RegisterUser(ctx, rpc.RegisterPayload{Name: "Ana 2", Email: "ANA@example.com", Password: "y"})
	if err == nil || err.Error() != "E-mail já cadastrado." {
		t.Errorf("error = %v, want duplicate message", err)
	}
}

func TestBackend_WithSQLiteUsers(t *testing.T) {
	users, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer users.Close()

	b := newTestBackend(WithUsers(users))
	ctx := context.Background()

	if _, err := b.RegisterUser(ctx, rpc.RegisterPayload{Name: "Ana", Email: "ana@example.com", Password: "x"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if n, _ := users.CountUsers(ctx); n != 1 {
		t.Errorf("CountUsers = %d, want 1", n)
	}
}

func TestBackend_RequireSession(t *testing.T) {
	b := newTestBackend(RequireSession(true), WithSecret([]byte("s3cret")))
	ctx := context.Background()

	// Given: No token
	_, err := b.GetServices(ctx, rpc.Auth{})
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("no token: error = %v, want ErrInvalidSession", err)
	}

	// Given: A token from another secret
	other := newTestBackend(WithSecret([]byte("other")))
	foreign, _ := other.RegisterUser(ctx, rpc.RegisterPayload{Name: "Eve", Email: "eve@example.com", Password: "x"})
	if _, err := b.GetServices(ctx, rpc.Auth{SessionToken: foreign.Token}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("foreign token: error = %v, want ErrInvalidSession", err)
	}

	// Given: A token issued by this backend
	own, _ := b.RegisterUser(ctx, rpc.RegisterPayload{Name: "Ana", Email: "ana@example.com", Password: "x"})
	if _, err := b.GetServices(ctx, rpc.Auth{SessionToken: own.Token}); err != nil {
		t.Errorf("own token: %v", err)
	}
}

func TestBackend_ExpiredSession(t *testing.T) {
	now := fixedNow
	b := New(WithLatency(0, 0), RequireSession(true), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	res, err := b.RegisterUser(ctx, rpc.RegisterPayload{Name: "Ana", Email: "ana@example.com", Password: "x"})
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(DefaultTokenTTL + time.Minute)
	if _, err := b.GetServices(ctx, rpc.Auth{SessionToken: res.Token}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("error = %v, want ErrInvalidSession after expiry", err)
	}
}

func TestBackend_LatencyHonoursContext(t *testing.T) {
	b := New(WithLatency(time.Hour, time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := b.GetServices(ctx, rpc.Auth{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("latency did not honour cancellation")
	}
}

func TestBackend_LatencyWithinRange(t *testing.T) {
	b := New(WithLatency(5*time.Millisecond, 15*time.Millisecond))

	start := time.Now()
	if _, err := b.GetServices(context.Background(), rpc.Auth{}); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the minimum latency", elapsed)
	}
}

func TestBackend_ConcurrentAdds(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.AddService(ctx, rpc.AddServicePayload{Service: types.NewIdea{Service: "x"}})
		}()
	}
	wg.Wait()

	list, _ := b.GetServices(ctx, rpc.Auth{})
	seen := map[int]bool{}
	for _, idea := range list {
		if seen[idea.ID] {
			t.Fatalf("duplicate id %d", idea.ID)
		}
		seen[idea.ID] = true
	}
	if len(list) != 20 {
		t.Errorf("len = %d, want 20", len(list))
	}
}

func TestBackend_DispatchUnknownAction(t *testing.T) {
	resp := rpc.Dispatch(context.Background(), newTestBackend(), rpc.Request{Action: "dropTables"})
	if resp.Success {
		t.Error("unknown action should produce a failure envelope")
	}
}

func TestBackend_ThroughClientFallback(t *testing.T) {
	// Given: A client with no endpoint, falling back to the mock
	client := rpc.NewClient("", rpc.WithFallback(newTestBackend(WithIdeas(SampleIdeas()))))
	api := rpc.NewAPI(client)
	ctx := context.Background()

	// When: Updating an unknown id through the full encoding path
	_, err := api.UpdateService(ctx, types.Idea{ID: 999, Service: "x"})

	// Then: The backend message surfaces as an application error
	var appErr *rpc.ApplicationError
	if !errors.As(err, &appErr) || appErr.Message != "Serviço com id 999 não encontrado." {
		t.Errorf("error = %v", err)
	}

	ideas, err := api.GetServices(ctx)
	if err != nil || len(ideas) != 3 {
		t.Errorf("GetServices = %d ideas, %v", len(ideas), err)
	}
}
