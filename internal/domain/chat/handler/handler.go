// Package handler exposes the chat assistant over HTTP.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/archive"
	"github.com/ericlbarreto/conta-ai/internal/domain/charts"
	"github.com/ericlbarreto/conta-ai/internal/domain/chat"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
	"github.com/ericlbarreto/conta-ai/internal/observability/metrics"
	"github.com/ericlbarreto/conta-ai/pkg/storage"
)

const (
	sessionHeader  = "X-Session-Id"
	defaultSession = "default"
)

// ChatHandler implements the HTTP endpoints of the assistant.
type ChatHandler struct {
	sessions  *chat.Registry
	svc       *chat.Service
	processor *document.Processor
	search    *document.SearchIndex
	charts    *charts.Engine
	repo      *archive.Repository
	store     storage.Storage
	metrics   *metrics.Metrics
	logger    *slog.Logger

	maxUploadBytes int64
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(
	sessions *chat.Registry,
	svc *chat.Service,
	processor *document.Processor,
	search *document.SearchIndex,
	engine *charts.Engine,
	logger *slog.Logger,
	maxUploadBytes int64,
) *ChatHandler {
	return &ChatHandler{
		sessions:       sessions,
		svc:            svc,
		processor:      processor,
		search:         search,
		charts:         engine,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// WithArchive enables write-behind persistence of documents and turns.
func (h *ChatHandler) WithArchive(repo *archive.Repository) *ChatHandler {
	h.repo = repo
	return h
}

// WithStorage retains the raw bytes of uploads for later download.
func (h *ChatHandler) WithStorage(store storage.Storage) *ChatHandler {
	h.store = store
	return h
}

// WithMetrics enables request instrumentation.
func (h *ChatHandler) WithMetrics(m *metrics.Metrics) *ChatHandler {
	h.metrics = m
	return h
}

// Routes registers every endpoint on a fresh mux.
func (h *ChatHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /v1/documents", h.UploadDocuments)
	mux.HandleFunc("GET /v1/documents/search", h.SearchDocuments)
	mux.HandleFunc("GET /v1/documents/{id}/download", h.DownloadDocument)
	mux.HandleFunc("POST /v1/chat", h.SendMessage)
	mux.HandleFunc("GET /v1/chat/history", h.History)
	mux.HandleFunc("DELETE /v1/chat/history", h.ClearHistory)
	mux.HandleFunc("GET /v1/charts", h.Charts)
	mux.HandleFunc("GET /v1/export.csv", h.ExportCSV)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}

	return mux
}

func (h *ChatHandler) session(r *http.Request) *chat.Session {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id = defaultSession
	}
	return h.sessions.Get(id)
}

// Health reports liveness.
func (h *ChatHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	Documents []documentInfo `json:"documentos"`
	Reply     chat.Turn      `json:"resposta"`
}

type documentInfo struct {
	ID        string `json:"id"`
	Name      string `json:"nome"`
	Kind      string `json:"tipo"`
	SizeBytes int64  `json:"tamanho"`
	Synthetic bool   `json:"dadosDemonstracao"`
}

// UploadDocuments ingests one or more files from a multipart form.
func (h *ChatHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "formulário multipart inválido")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "nenhum arquivo enviado")
		return
	}

	files := make([]document.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "arquivo excede o tamanho máximo")
			return
		}
		data, err := readMultipartFile(fh)
		if err != nil {
			h.logger.Warn("failed to read upload", slog.String("file", fh.Filename), slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "não foi possível ler o arquivo enviado")
			return
		}
		files = append(files, document.File{Name: fh.Filename, Data: data})
	}

	session := h.session(r)
	docs := h.processor.ProcessAll(r.Context(), files)

	infos := make([]documentInfo, 0, len(docs))
	for i, doc := range docs {
		session.AddDocument(doc)
		if h.store != nil {
			contentType := headers[i].Header.Get("Content-Type")
			if _, err := h.store.Save(r.Context(), session.ID(), doc.ID, doc.Name, contentType, bytes.NewReader(files[i].Data)); err != nil {
				h.logger.Warn("failed to retain upload", slog.String("name", doc.Name), slog.Any("error", err))
			}
		}
		if err := h.search.Index(doc); err != nil {
			h.logger.Warn("failed to index document", slog.String("name", doc.Name), slog.Any("error", err))
		}
		if h.repo != nil {
			if err := h.repo.SaveDocument(r.Context(), session.ID(), doc); err != nil {
				h.logger.Warn("failed to archive document", slog.String("name", doc.Name), slog.Any("error", err))
			}
		}
		infos = append(infos, documentInfo{
			ID:        doc.ID.String(),
			Name:      doc.Name,
			Kind:      string(doc.Kind),
			SizeBytes: doc.SizeBytes,
			Synthetic: doc.Dataset.Synthetic,
		})
	}

	reply := h.svc.AcknowledgeUpload(r.Context(), session, docs)

	writeJSON(w, http.StatusCreated, uploadResponse{Documents: infos, Reply: reply})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply chat.Turn `json:"resposta"`
}

// SendMessage answers one user question.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "mensagem vazia")
		return
	}

	session := h.session(r)
	reply := h.svc.Send(r.Context(), session, req.Message)

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type historyResponse struct {
	Turns []chat.Turn `json:"mensagens"`
}

// History returns the transcript of the session. When the in-memory
// session holds nothing, for instance after a janitor purge or a restart,
// the archived transcript is served instead.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	turns := session.History()

	if len(turns) == 0 && h.repo != nil {
		archived, err := h.repo.ListTurns(r.Context(), session.ID(), 0)
		if err != nil {
			h.logger.Warn("failed to read archived history",
				slog.String("session", session.ID()),
				slog.Any("error", err),
			)
		} else {
			turns = archived
		}
	}

	writeJSON(w, http.StatusOK, historyResponse{Turns: turns})
}

// ClearHistory wipes the transcript but keeps uploaded documents.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.session(r).ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// Charts returns chart suggestions for the merged dataset.
func (h *ChatHandler) Charts(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	ds := h.svc.MergedDataset(session)
	writeJSON(w, http.StatusOK, map[string]any{"graficos": h.charts.Suggest(ds)})
}

// SearchDocuments runs a full-text query over indexed documents.
func (h *ChatHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "parâmetro q obrigatório")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "parâmetro limit inválido")
			return
		}
		limit = n
	}

	results, err := h.search.Search(query, limit)
	if err != nil {
		h.logger.Error("search failed", slog.String("query", query), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "falha na busca")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resultados": results})
}

// DownloadDocument streams the original bytes of an uploaded document.
func (h *ChatHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "retenção de arquivos desabilitada")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id de documento inválido")
		return
	}

	session := h.session(r)
	rc, info, err := h.store.Open(r.Context(), session.ID(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "documento não encontrado")
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("document download interrupted", slog.Any("error", err))
	}
}

// ExportCSV streams the merged dataset as a CSV download.
func (h *ChatHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	ds := h.svc.MergedDataset(session)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="resultados.csv"`)
	if err := analysis.WriteCSV(ds, w); err != nil {
		h.logger.Error("csv export failed", slog.Any("error", err))
	}
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"erro": message})
}
