// Package e2etest provides end-to-end tests for the full upload and chat
// flow over the HTTP surface.
package e2etest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/charts"
	"github.com/ericlbarreto/conta-ai/internal/domain/chat"
	chathandler "github.com/ericlbarreto/conta-ai/internal/domain/chat/handler"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
	"github.com/ericlbarreto/conta-ai/internal/observability/metrics"
	"github.com/ericlbarreto/conta-ai/pkg/storage"
)

const statementCSV = "mes,receita,despesa\n" +
	"Janeiro,10000,7000\n" +
	"Fevereiro,12000,8000\n" +
	"Março,11000,7500"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := analysis.NewExtractor()

	search, err := document.NewSearchIndex()
	require.NoError(t, err)
	t.Cleanup(func() { search.Close() })

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	m := metrics.New()
	h := chathandler.NewChatHandler(
		chat.NewRegistry(),
		chat.NewService(extractor, logger).WithMetrics(m),
		document.NewProcessor(extractor, logger).WithMetrics(m),
		search,
		charts.NewEngine(),
		logger,
		10<<20,
	).WithStorage(store).WithMetrics(m)

	handler := chathandler.Chain(h.Routes(),
		chathandler.RequestID(),
		chathandler.AccessLog(logger),
		chathandler.RateLimit(1000, 1000),
		chathandler.Observe(m),
	)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func upload(t *testing.T, srv *httptest.Server, session, name, content string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Session-Id", session)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func ask(t *testing.T, srv *httptest.Server, session, message string) string {
	t.Helper()

	payload := fmt.Sprintf(`{"message":%q}`, message)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/chat", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("X-Session-Id", session)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reply chat.Turn `json:"resposta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Reply.Text
}

func TestUploadAndChatFlow(t *testing.T) {
	srv := newServer(t)

	uploaded := upload(t, srv, "e2e", "balancete.csv", statementCSV)
	docs := uploaded["documentos"].([]any)
	require.Len(t, docs, 1)

	t.Run("net profit question", func(t *testing.T) {
		out := ask(t, srv, "e2e", "Qual foi o lucro líquido?")
		assert.Contains(t, out, "Análise de Lucro Líquido")
		assert.Contains(t, out, "R$33.000,00")
		assert.Contains(t, out, "R$10.500,00")
	})

	t.Run("period question", func(t *testing.T) {
		out := ask(t, srv, "e2e", "como foi fevereiro?")
		assert.Contains(t, out, "Resultado de Fevereiro")
		assert.Contains(t, out, "R$12.000,00")
	})

	t.Run("summary question", func(t *testing.T) {
		out := ask(t, srv, "e2e", "me dá um resumo")
		assert.Contains(t, out, "Resumo Executivo")
		assert.Contains(t, out, "**3 meses**")
	})

	t.Run("history holds the transcript", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/chat/history", nil)
		require.NoError(t, err)
		req.Header.Set("X-Session-Id", "e2e")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Turns []chat.Turn `json:"mensagens"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		// Upload ack plus three question/answer pairs
		assert.Len(t, body.Turns, 7)
	})
}

func TestChartsAndExport(t *testing.T) {
	srv := newServer(t)
	upload(t, srv, "e2e", "balancete.csv", statementCSV)

	t.Run("charts", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/charts", nil)
		require.NoError(t, err)
		req.Header.Set("X-Session-Id", "e2e")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Charts []charts.Spec `json:"graficos"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Charts, 4)
	})

	t.Run("csv export", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/export.csv", nil)
		require.NoError(t, err)
		req.Header.Set("X-Session-Id", "e2e")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Janeiro,10000,7000,3000")
	})
}

func TestDownloadOriginalDocument(t *testing.T) {
	srv := newServer(t)
	uploaded := upload(t, srv, "e2e", "balancete.csv", statementCSV)

	docs := uploaded["documentos"].([]any)
	id := docs[0].(map[string]any)["id"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/documents/"+id+"/download", nil)
	require.NoError(t, err)
	req.Header.Set("X-Session-Id", "e2e")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, statementCSV, string(data))

	t.Run("other sessions cannot download it", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/documents/"+id+"/download", nil)
		require.NoError(t, err)
		req.Header.Set("X-Session-Id", "intruso")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestSyntheticFallbackEndToEnd(t *testing.T) {
	srv := newServer(t)

	uploaded := upload(t, srv, "e2e", "rabisco.pdf", "isto não é um pdf")
	docs := uploaded["documentos"].([]any)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].(map[string]any)["dadosDemonstracao"].(bool))

	out := ask(t, srv, "e2e", "Qual foi o lucro líquido?")
	assert.Contains(t, out, "Valores de demonstração")
}
