package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/assistant"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
	"github.com/ericlbarreto/conta-ai/internal/observability/metrics"
)

// Upstream is the remote assistant used for questions no local template
// answers.
type Upstream interface {
	Ask(ctx context.Context, question string, docs []document.Document) (string, error)
}

// TurnArchive persists transcript turns. Failures are logged and never
// block the conversation.
type TurnArchive interface {
	SaveTurn(ctx context.Context, sessionID string, turn Turn) error
}

// Service answers chat questions. Recognized intents are served by the
// local composer from the merged session dataset; only the Default intent
// goes upstream, and only when an upstream is configured. Upstream
// failures surface as fixed user-facing messages and are never retried.
type Service struct {
	classifier *Classifier
	composer   *Composer
	extractor  *analysis.Extractor
	upstream   Upstream
	archive    TurnArchive
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// NewService wires the classifier and composer around the extractor used
// for dataset merging.
func NewService(extractor *analysis.Extractor, logger *slog.Logger) *Service {
	return &Service{
		classifier: NewClassifier(),
		composer:   NewComposer(),
		extractor:  extractor,
		logger:     logger,
		tracer:     otel.Tracer("chat"),
	}
}

// WithUpstream attaches a remote assistant for Default-intent questions.
func (s *Service) WithUpstream(u Upstream) *Service {
	s.upstream = u
	return s
}

// WithArchive attaches write-behind persistence of transcript turns.
func (s *Service) WithArchive(a TurnArchive) *Service {
	s.archive = a
	return s
}

// WithMetrics attaches prometheus instrumentation.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// MergedDataset merges every per-document dataset of the session.
func (s *Service) MergedDataset(session *Session) analysis.Dataset {
	return s.extractor.Merge(session.Datasets()...)
}

// Send answers one question. The user turn enters the transcript at
// submission; the reply is committed in submission order regardless of
// how long composing it takes.
func (s *Service) Send(ctx context.Context, session *Session, text string) Turn {
	ctx, span := s.tracer.Start(ctx, "chat.send")
	defer span.End()

	ticket, question := session.Begin(text)
	s.archiveTurn(ctx, session.ID(), question)
	ds := s.MergedDataset(session)
	cls := s.classifier.Classify(text, ds)

	span.SetAttributes(attribute.String("chat.intent", cls.Intent.String()))
	s.metrics.QueryClassified(cls.Intent.String())

	var reply string
	if cls.Intent == IntentDefault && s.upstream != nil {
		answer, err := s.upstream.Ask(ctx, text, session.Documents())
		if err != nil {
			s.logger.Warn("upstream assistant failed",
				slog.String("session", session.ID()),
				slog.Any("error", err),
			)
			s.metrics.UpstreamError(assistant.ErrorKind(err))
			reply = assistant.UserMessage(err)
		} else {
			reply = answer
		}
	} else {
		reply = s.composer.Compose(cls, ds)
	}

	turn := Turn{
		ID:        uuid.New(),
		Role:      RoleAssistant,
		Text:      reply,
		Timestamp: time.Now(),
	}
	session.Commit(ticket, turn)
	s.archiveTurn(ctx, session.ID(), turn)

	s.logger.Info("question answered",
		slog.String("session", session.ID()),
		slog.String("intent", cls.Intent.String()),
	)
	return turn
}

func (s *Service) archiveTurn(ctx context.Context, sessionID string, turn Turn) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveTurn(ctx, sessionID, turn); err != nil {
		s.logger.Warn("failed to archive turn",
			slog.String("session", sessionID),
			slog.Any("error", err),
		)
	}
}

// AcknowledgeUpload appends the upload confirmation to the transcript,
// going through the same ticket sequencing as questions.
func (s *Service) AcknowledgeUpload(ctx context.Context, session *Session, docs []document.Document) Turn {
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, fmt.Sprintf("📎 %s", doc.Name))
	}

	text := fmt.Sprintf(`✅ **Arquivos enviados com sucesso!**

%s

Agora você pode fazer perguntas sobre seus documentos. 🚀`, strings.Join(names, "\n"))

	turn := Turn{
		ID:        uuid.New(),
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: time.Now(),
	}

	session.Commit(session.Reserve(), turn)
	s.archiveTurn(ctx, session.ID(), turn)
	return turn
}
