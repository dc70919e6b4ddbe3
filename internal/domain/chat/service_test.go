package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/assistant"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
	"github.com/ericlbarreto/conta-ai/internal/domain/document/parser"
)

type fakeUpstream struct {
	mu      sync.Mutex
	answer  string
	err     error
	delay   time.Duration
	asked   []string
	gotDocs int
}

func (f *fakeUpstream) Ask(_ context.Context, question string, docs []document.Document) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, question)
	f.gotDocs = len(docs)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeArchive) SaveTurn(_ context.Context, _ string, turn Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, turn.Text)
	return nil
}

func (f *fakeArchive) counts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int, len(f.texts))
	for _, text := range f.texts {
		counts[text]++
	}
	return counts
}

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(analysis.NewExtractor(), logger)
}

func sessionWithCSV(t *testing.T, csv string) *Session {
	t.Helper()
	s := NewSession("test")
	ds := analysis.NewExtractor().Extract(parser.ParseCSV(csv))
	s.AddDocument(document.Document{Name: "upload.csv", Kind: document.KindCSV, RawContent: csv, Dataset: ds})
	return s
}

func TestSendRecognizedIntent(t *testing.T) {
	svc := newTestService()
	s := sessionWithCSV(t, "mes,receita,despesa\nJaneiro,1000,800\nFevereiro,1200,900")

	turn := svc.Send(context.Background(), s, "Qual foi o lucro líquido?")

	assert.Equal(t, RoleAssistant, turn.Role)
	assert.Contains(t, turn.Text, "Análise de Lucro Líquido")
	assert.Contains(t, turn.Text, "R$500,00")

	turns := s.History()
	require.Len(t, turns, 2)
	assert.Equal(t, "Qual foi o lucro líquido?", turns[0].Text)
}

func TestSendNoDocuments(t *testing.T) {
	svc := newTestService()
	s := NewSession("empty")

	turn := svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
	assert.Contains(t, turn.Text, "ContaBot Pro")
}

func TestSendDefaultIntent(t *testing.T) {
	t.Run("without upstream renders the capabilities message", func(t *testing.T) {
		svc := newTestService()
		s := sessionWithCSV(t, "mes,receita\nJaneiro,1000")

		turn := svc.Send(context.Background(), s, "me fale sobre o assunto")
		assert.Contains(t, turn.Text, "Como posso ajudar?")
	})

	t.Run("with upstream forwards the question and documents", func(t *testing.T) {
		up := &fakeUpstream{answer: "resposta remota"}
		svc := newTestService().WithUpstream(up)
		s := sessionWithCSV(t, "mes,receita\nJaneiro,1000")

		turn := svc.Send(context.Background(), s, "me fale sobre o assunto")
		assert.Equal(t, "resposta remota", turn.Text)
		assert.Equal(t, []string{"me fale sobre o assunto"}, up.asked)
		assert.Equal(t, 1, up.gotDocs)
	})

	t.Run("recognized intents never reach the upstream", func(t *testing.T) {
		up := &fakeUpstream{answer: "nunca"}
		svc := newTestService().WithUpstream(up)
		s := sessionWithCSV(t, "mes,receita\nJaneiro,1000")

		svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
		assert.Empty(t, up.asked)
	})

	t.Run("upstream failure surfaces the fixed message once", func(t *testing.T) {
		up := &fakeUpstream{err: fmt.Errorf("%w: 429", assistant.ErrUpstreamRateLimited)}
		svc := newTestService().WithUpstream(up)
		s := sessionWithCSV(t, "mes,receita\nJaneiro,1000")

		turn := svc.Send(context.Background(), s, "me fale sobre o assunto")
		assert.Contains(t, turn.Text, "Limite de uso atingido")
		assert.Len(t, up.asked, 1)
	})
}

func TestSendMergesDocuments(t *testing.T) {
	svc := newTestService()
	s := NewSession("multi")

	extractor := analysis.NewExtractor()
	for i, csv := range []string{
		"mes,receita,despesa\nJaneiro,1000,800",
		"mes,receita,despesa\nFevereiro,1200,900",
	} {
		ds := extractor.Extract(parser.ParseCSV(csv))
		s.AddDocument(document.Document{Name: fmt.Sprintf("doc-%d.csv", i), Dataset: ds})
	}

	turn := svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
	assert.Contains(t, turn.Text, "R$500,00")
	assert.Contains(t, turn.Text, "R$2.200,00")
}

func TestSendSyntheticExcludedFromMerge(t *testing.T) {
	svc := newTestService()
	s := NewSession("mix")

	extractor := analysis.NewExtractor()
	s.AddDocument(document.Document{Name: "vazio.pdf", Dataset: analysis.SampleDataset()})
	s.AddDocument(document.Document{
		Name:    "real.csv",
		Dataset: extractor.Extract(parser.ParseCSV("mes,receita,despesa\nJaneiro,1000,800")),
	})

	turn := svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
	assert.Contains(t, turn.Text, "R$200,00")
	assert.NotContains(t, turn.Text, "Valores de demonstração")
}

func TestSendConcurrentKeepsSubmissionOrder(t *testing.T) {
	svc := newTestService()
	s := sessionWithCSV(t, "mes,receita,despesa\nJaneiro,1000,800")

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
		}()
	}
	wg.Wait()

	turns := s.History()
	require.Len(t, turns, 2*n)

	// All user turns precede their replies pairwise is not guaranteed
	// under concurrency, but replies commit in the same order questions
	// were submitted: the i-th assistant turn answers the i-th user turn.
	users, replies := 0, 0
	for _, turn := range turns {
		if turn.Role == RoleUser {
			users++
		} else {
			replies++
			assert.LessOrEqual(t, replies, users)
		}
	}
	assert.Equal(t, n, users)
	assert.Equal(t, n, replies)
}

func TestSendArchivesEachTurnOnce(t *testing.T) {
	up := &fakeUpstream{answer: "resposta remota", delay: 50 * time.Millisecond}
	sink := &fakeArchive{}
	svc := newTestService().WithUpstream(up).WithArchive(sink)
	s := sessionWithCSV(t, "mes,receita,despesa\nJaneiro,1000,800")

	// The first question goes to the slow upstream; the second is
	// answered locally and finishes first.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.Send(context.Background(), s, "me conte uma curiosidade")
	}()
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
	}()
	wg.Wait()

	counts := sink.counts()
	assert.Equal(t, 1, counts["me conte uma curiosidade"])
	assert.Equal(t, 1, counts["Qual foi o lucro líquido?"])
	assert.Equal(t, 1, counts["resposta remota"])

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 4, total)
}

func TestArchiveFailureDoesNotBlockReply(t *testing.T) {
	svc := newTestService().WithArchive(failingArchive{})
	s := sessionWithCSV(t, "mes,receita,despesa\nJaneiro,1000,800")

	turn := svc.Send(context.Background(), s, "Qual foi o lucro líquido?")
	assert.Contains(t, turn.Text, "Análise de Lucro Líquido")
	assert.Len(t, s.History(), 2)
}

type failingArchive struct{}

func (failingArchive) SaveTurn(context.Context, string, Turn) error {
	return fmt.Errorf("archive unavailable")
}

func TestAcknowledgeUpload(t *testing.T) {
	sink := &fakeArchive{}
	svc := newTestService().WithArchive(sink)
	s := NewSession("up")

	docs := []document.Document{
		{Name: "balancete.csv"},
		{Name: "dre.pdf"},
	}
	turn := svc.AcknowledgeUpload(context.Background(), s, docs)

	assert.Contains(t, turn.Text, "Arquivos enviados com sucesso")
	assert.Contains(t, turn.Text, "📎 balancete.csv")
	assert.Contains(t, turn.Text, "📎 dre.pdf")
	require.Len(t, s.History(), 1)
	assert.Equal(t, RoleAssistant, s.History()[0].Role)
	require.Len(t, sink.texts, 1)
	assert.Equal(t, turn.Text, sink.texts[0])
}
