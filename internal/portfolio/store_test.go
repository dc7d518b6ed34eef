package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/portfolio/internal/mock"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/hyperengineering/portfolio/internal/validation"
)

// scriptedCaller implements rpc.Caller with canned JSON results per action.
type scriptedCaller struct {
	mu        sync.Mutex
	responses map[rpc.Action]string
	errs      map[rpc.Action]error
	calls     []rpc.Action
	payloads  map[rpc.Action]any
	started   chan rpc.Action
	release   chan struct{}
}

func newScriptedCaller() *scriptedCaller {
	return &scriptedCaller{
		responses: map[rpc.Action]string{},
		errs:      map[rpc.Action]error{},
		payloads:  map[rpc.Action]any{},
	}
}

func (c *scriptedCaller) Call(ctx context.Context, action rpc.Action, payload any, out any) error {
	c.mu.Lock()
	c.calls = append(c.calls, action)
	c.payloads[action] = payload
	started, release := c.started, c.release
	resp, err := c.responses[action], c.errs[action]
	c.mu.Unlock()

	if started != nil {
		started <- action
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return err
	}
	if resp != "" && out != nil {
		return json.Unmarshal([]byte(resp), out)
	}
	return nil
}

func (c *scriptedCaller) callCount(action rpc.Action) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.calls {
		if a == action {
			n++
		}
	}
	return n
}

// notifications collects every notification a store emits.
type notifications struct {
	mu  sync.Mutex
	all []Notification
}

func (n *notifications) add(x Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, x)
}

func (n *notifications) list() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.all...)
}

func newMockStore(t *testing.T, ideas []types.Idea) (*Store, *notifications) {
	t.Helper()
	backend := mock.New(mock.WithLatency(0, 0), mock.WithIdeas(ideas))
	client := rpc.NewClient("", rpc.WithFallback(backend))
	seen := &notifications{}
	s := New(client, WithListener(seen.add))
	t.Cleanup(s.Close)
	return s, seen
}

func validNewIdea() types.NewIdea {
	return types.NewIdea{
		Service:       "Instalação de Carregador Veicular",
		Need:          "Carregar o carro elétrico em casa",
		Cluster:       "Casa Inteligente",
		BusinessModel: "Pacote de Serviço",
	}
}

func TestStore_LoadNormalisesScores(t *testing.T) {
	// Given: A backend returning partially written rows
	caller := newScriptedCaller()
	caller.responses[rpc.ActionGetServices] = `[
		{"id": 1, "service": "A", "scores": [1, 2, 3]},
		{"id": 2, "service": "B", "scores": "corrompido"},
		{"id": 3, "service": "C", "scores": ["5", 4, 9, -2, 1]},
		{"id": 4, "service": "D"}
	]`
	seen := &notifications{}
	s := New(caller, WithListener(seen.add))
	defer s.Close()

	// When: Loading
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Then: Every idea has exactly five scores in range
	snap := s.Snapshot()
	if snap.Phase != PhaseReady {
		t.Errorf("Phase = %s, want ready", snap.Phase)
	}
	want := []int{0, 0, 5 + 4 + 5 + 0 + 1, 0}
	for i, idea := range snap.Ideas {
		if len(idea.Scores) != types.CriteriaCount {
			t.Errorf("idea %d has %d scores", idea.ID, len(idea.Scores))
		}
		if idea.Total() != want[i] {
			t.Errorf("idea %d total = %d, want %d", idea.ID, idea.Total(), want[i])
		}
	}
	if len(seen.list()) != 0 {
		t.Error("Load must not notify")
	}
}

func TestStore_LoadError(t *testing.T) {
	caller := newScriptedCaller()
	caller.errs[rpc.ActionGetServices] = &rpc.CommunicationError{Action: rpc.ActionGetServices, Err: errors.New("connection refused")}
	s := New(caller)
	defer s.Close()

	err := s.Load(context.Background())
	if !rpc.IsCommunication(err) {
		t.Fatalf("error = %v, want CommunicationError", err)
	}
	snap := s.Snapshot()
	if snap.Phase != PhaseErrored || !strings.Contains(snap.Error, "Verifique sua conexão") {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestStore_RefreshNotifiesOnce(t *testing.T) {
	s, seen := newMockStore(t, mock.SampleIdeas())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := seen.list()
	if len(got) != 1 || got[0].Severity != SeveritySuccess || got[0].Message != "Dados sincronizados com sucesso!" {
		t.Errorf("notifications = %+v", got)
	}
	if len(s.Ideas()) != 3 {
		t.Errorf("ideas = %d, want 3", len(s.Ideas()))
	}
}

func TestStore_CreateOnEmptyList(t *testing.T) {
	// Given: An empty backend
	s, seen := newMockStore(t, nil)
	ctx := context.Background()
	s.Load(ctx)

	// When: Creating an idea
	created, err := s.Create(ctx, validNewIdea())

	// Then: The backend's record is appended
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 1 || created.Total() != 0 || created.RevenueEstimate != 0 {
		t.Errorf("created = %+v", created)
	}
	ideas := s.Ideas()
	if len(ideas) != 1 || ideas[0].ID != 1 {
		t.Errorf("ideas = %+v", ideas)
	}
	if n := seen.list(); len(n) != 1 || n[0].Severity != SeveritySuccess {
		t.Errorf("notifications = %+v", n)
	}
}

func TestStore_CreateValidationBlocksCall(t *testing.T) {
	caller := newScriptedCaller()
	seen := &notifications{}
	s := New(caller, WithListener(seen.add))
	defer s.Close()

	_, err := s.Create(context.Background(), types.NewIdea{Service: "Sem necessidade"})

	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *validation.Error", err)
	}
	if caller.callCount(rpc.ActionAddService) != 0 {
		t.Error("backend called despite validation failure")
	}
	if n := seen.list(); len(n) != 1 || n[0].Severity != SeverityError {
		t.Errorf("notifications = %+v", n)
	}
}

func TestStore_CreateFailureLeavesListUntouched(t *testing.T) {
	caller := newScriptedCaller()
	caller.responses[rpc.ActionGetServices] = `[{"id": 1, "service": "A"}]`
	caller.errs[rpc.ActionAddService] = &rpc.ApplicationError{Message: "Planilha bloqueada."}
	seen := &notifications{}
	s := New(caller, WithListener(seen.add))
	defer s.Close()
	s.Load(context.Background())

	_, err := s.Create(context.Background(), validNewIdea())
	if err == nil {
		t.Fatal("Create should fail")
	}
	if len(s.Ideas()) != 1 {
		t.Errorf("ideas = %d, want 1", len(s.Ideas()))
	}
	n := seen.list()
	if len(n) != 1 || !strings.Contains(n[0].Message, "Planilha bloqueada.") {
		t.Errorf("notifications = %+v", n)
	}
}

func TestStore_UpdateUnknownIDKeepsState(t *testing.T) {
	// Given: The sample list
	s, seen := newMockStore(t, mock.SampleIdeas())
	ctx := context.Background()
	s.Load(ctx)
	before := s.Ideas()

	// When: Updating an id the backend does not know
	ghost := before[0]
	ghost.ID = 999
	_, err := s.Update(ctx, ghost)

	// Then: The failure propagates and memory is unchanged
	if err == nil || !strings.Contains(err.Error(), "não encontrado") {
		t.Fatalf("error = %v, want not-found", err)
	}
	after := s.Ideas()
	if len(after) != len(before) || after[0].Service != before[0].Service {
		t.Error("in-memory list changed after failed update")
	}
	if n := seen.list(); len(n) != 1 || n[0].Severity != SeverityError {
		t.Errorf("notifications = %+v", n)
	}
}

func TestStore_UpdateReplacesOnConfirmation(t *testing.T) {
	s, _ := newMockStore(t, mock.SampleIdeas())
	ctx := context.Background()
	s.Load(ctx)

	idea, _ := s.Get(3)
	idea.Service = "Aluguel de VR para Eventos"
	idea.Scores = types.Scores{5, 5, 5, 5, 5}

	updated, err := s.Update(ctx, idea)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CreationDate != "2023-10-03T14:00:00Z" {
		t.Errorf("CreationDate = %q", updated.CreationDate)
	}
	got, _ := s.Get(3)
	if got.Service != "Aluguel de VR para Eventos" || got.Total() != 25 {
		t.Errorf("stored = %+v", got)
	}
}

func TestStore_SetStatus(t *testing.T) {
	s, seen := newMockStore(t, mock.SampleIdeas())
	ctx := context.Background()
	s.Load(ctx)

	if _, err := s.SetStatus(ctx, 2, types.StatusCompleted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := s.Get(2)
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q", got.Status)
	}
	if n := seen.list(); n[len(n)-1].Message != "Status atualizado para Finalizada." {
		t.Errorf("last notification = %q", n[len(n)-1].Message)
	}

	if _, err := s.SetStatus(ctx, 2, "arquivada"); err == nil {
		t.Error("invalid status should fail")
	}
	if _, err := s.SetStatus(ctx, 404, types.StatusApproved); !errors.Is(err, ErrIdeaNotFound) {
		t.Errorf("error = %v, want ErrIdeaNotFound", err)
	}
}

func TestStore_SetStatusOnSparseRow(t *testing.T) {
	// Given: A row the backend holds without need or cluster
	sparse := types.Idea{ID: 7, Service: "Limpeza de placas", BusinessModel: "Pacote"}
	s, _ := newMockStore(t, []types.Idea{sparse})
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// When: Only its status changes
	updated, err := s.SetStatus(ctx, 7, types.StatusApproved)

	// Then: The row is sent as held and the new status is applied
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := s.Get(7)
	if got.Status != types.StatusApproved || updated.Status != types.StatusApproved {
		t.Errorf("Status = %q, want aprovada", got.Status)
	}
	if got.Need != "" || got.Cluster != "" || got.Service != "Limpeza de placas" {
		t.Errorf("row changed beyond status: %+v", got)
	}

	// And: A full edit of the same row is still validated locally
	var verr *validation.Error
	if _, err := s.Update(ctx, got); !errors.As(err, &verr) {
		t.Errorf("Update error = %v, want *validation.Error", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s, seen := newMockStore(t, mock.SampleIdeas())
	ctx := context.Background()
	s.Load(ctx)

	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(1); ok {
		t.Error("idea 1 still present")
	}
	if err := s.Delete(ctx, 1); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if len(seen.list()) != 2 {
		t.Errorf("notifications = %d, want one per delete", len(seen.list()))
	}
}

func TestStore_PendingWhileInFlight(t *testing.T) {
	caller := newScriptedCaller()
	caller.responses[rpc.ActionGetServices] = `[{"id": 5, "service": "A", "need": "n", "cluster": "c", "businessModel": "Locação"}]`
	s := New(caller)
	defer s.Close()
	s.Load(context.Background())

	caller.mu.Lock()
	caller.started = make(chan rpc.Action)
	caller.release = make(chan struct{})
	caller.mu.Unlock()

	done := make(chan error)
	go func() {
		done <- s.Delete(context.Background(), 5)
	}()

	<-caller.started
	if !s.Snapshot().Pending[5] {
		t.Error("id 5 not pending while delete is in flight")
	}
	if len(s.Ideas()) != 1 {
		t.Error("idea removed before confirmation")
	}

	close(caller.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Pending[5] {
		t.Error("id 5 still pending after completion")
	}
}

func TestStore_ApplyAIRankingEmpty(t *testing.T) {
	caller := newScriptedCaller()
	seen := &notifications{}
	s := New(caller, WithListener(seen.add))
	defer s.Close()

	n, err := s.ApplyAIRanking(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("ApplyAIRanking = %d, %v", n, err)
	}
	if caller.callCount(rpc.ActionRanking) != 0 {
		t.Error("ranking called on empty list")
	}
	if got := seen.list(); len(got) != 1 || got[0].Severity != SeverityInfo {
		t.Errorf("notifications = %+v", got)
	}
}

func TestStore_ApplyAIRankingPersists(t *testing.T) {
	s, seen := newMockStore(t, mock.SampleIdeas())
	ctx := context.Background()
	s.Load(ctx)

	n, err := s.ApplyAIRanking(ctx)
	if err != nil {
		t.Fatalf("ApplyAIRanking: %v", err)
	}
	if n != 3 {
		t.Errorf("re-scored = %d, want 3", n)
	}
	if got := seen.list(); len(got) != 1 || got[0].Severity != SeveritySuccess {
		t.Errorf("notifications = %+v", got)
	}
	if s.Snapshot().Ranking {
		t.Error("ranking flag left set")
	}
}

func TestStore_ApplyAIRankingPartialFailure(t *testing.T) {
	// Given: A sparse ranking and a failing bulk update
	caller := newScriptedCaller()
	caller.responses[rpc.ActionGetServices] = `[
		{"id": 1, "service": "A", "scores": [1,1,1,1,1]},
		{"id": 2, "service": "B", "scores": [2,2,2,2,2]}
	]`
	caller.responses[rpc.ActionRanking] = `[{"id": 2, "scores": [5,5,5,5,9]}, {"id": 99, "scores": [5,5,5,5,5]}]`
	caller.errs[rpc.ActionBulkUpdateServices] = &rpc.ApplicationError{Message: "Cota excedida."}
	seen := &notifications{}
	s := New(caller, WithListener(seen.add))
	defer s.Close()
	s.Load(context.Background())

	// When: Applying the ranking
	n, err := s.ApplyAIRanking(context.Background())

	// Then: The error propagates, local scores stay applied, one notification
	if err == nil {
		t.Fatal("expected persist error")
	}
	if n != 1 {
		t.Errorf("re-scored = %d, want 1", n)
	}
	one, _ := s.Get(1)
	two, _ := s.Get(2)
	if one.Total() != 5 {
		t.Errorf("unmatched idea changed: %v", one.Scores)
	}
	if two.Total() != 25 {
		t.Errorf("matched idea scores = %v, want normalised AI scores", two.Scores)
	}
	got := seen.list()
	if len(got) != 1 || got[0].Severity != SeverityError || !strings.Contains(got[0].Message, "Cota excedida.") {
		t.Errorf("notifications = %+v", got)
	}

	payload, ok := caller.payloads[rpc.ActionBulkUpdateServices].(rpc.BulkUpdatePayload)
	if !ok || len(payload.Services) != 1 || payload.Services[0].ID != 2 {
		t.Errorf("bulk payload = %+v, want only changed ideas", caller.payloads[rpc.ActionBulkUpdateServices])
	}
}

func TestStore_NotificationExpires(t *testing.T) {
	s, _ := newMockStore(t, mock.SampleIdeas())
	s.ttl = 30 * time.Millisecond

	s.Refresh(context.Background())
	if s.Notification() == nil {
		t.Fatal("no current notification after refresh")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Notification() != nil {
		if time.Now().After(deadline) {
			t.Fatal("notification did not expire")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStore_NewerNotificationSupersedes(t *testing.T) {
	s, _ := newMockStore(t, mock.SampleIdeas())
	s.ttl = 100 * time.Millisecond

	first := s.notify(SeverityInfo, "primeira")
	time.Sleep(60 * time.Millisecond)
	second := s.notify(SeverityInfo, "segunda")

	if first.ID == second.ID {
		t.Fatal("notification ids must differ")
	}

	// The first notification's expiry must not clear the second.
	time.Sleep(60 * time.Millisecond)
	current := s.Notification()
	if current == nil || current.ID != second.ID {
		t.Errorf("current = %+v, want the newer notification", current)
	}
}

func TestStore_ExportCSV(t *testing.T) {
	empty, seen := newMockStore(t, nil)
	var buf bytes.Buffer
	if err := empty.ExportCSV(&buf); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("error = %v, want ErrNothingToExport", err)
	}
	if buf.Len() != 0 {
		t.Error("empty export wrote data")
	}
	if n := seen.list(); len(n) != 1 || n[0].Severity != SeverityInfo {
		t.Errorf("notifications = %+v", n)
	}

	s, _ := newMockStore(t, mock.SampleIdeas())
	s.Load(context.Background())
	if err := s.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("row separators = %d, want 3", lines)
	}
}

func TestStore_AskSendsHeadOfList(t *testing.T) {
	caller := newScriptedCaller()
	var rows []string
	for i := 1; i <= 20; i++ {
		rows = append(rows, fmt.Sprintf(`{"id": %d}`, i))
	}
	caller.responses[rpc.ActionGetServices] = "[" + strings.Join(rows, ",") + "]"
	caller.responses[rpc.ActionInsight] = `{"text": "resposta"}`
	s := New(caller)
	defer s.Close()
	s.Load(context.Background())

	answer, err := s.Ask(context.Background(), "Quais ideias priorizar?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != "resposta" || answer.GroundingChunks == nil {
		t.Errorf("answer = %+v", answer)
	}

	payload := caller.payloads[rpc.ActionInsight].(rpc.InsightPayload)
	if len(payload.Services) != 15 || payload.Services[0].ID != 1 || payload.Services[14].ID != 15 {
		t.Errorf("context ideas = %d", len(payload.Services))
	}

	if _, err := s.Ask(context.Background(), "   "); err == nil {
		t.Error("empty question should fail validation")
	}
}

func TestStore_GenerateIdeaDetailsNormalisesModel(t *testing.T) {
	caller := newScriptedCaller()
	caller.responses[rpc.ActionGenerateIdeaDetails] = `{"beneficio": "b", "publico": "p", "modelo": "Aluguel mensal com locação de equipamentos"}`
	s := New(caller)
	defer s.Close()

	got, err := s.GenerateIdeaDetails(context.Background(), "Aluguel de drones")
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "Locação" {
		t.Errorf("Model = %q, want Locação", got.Model)
	}
}
