package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/document/parser"
	"github.com/ericlbarreto/conta-ai/internal/observability/metrics"
)

// File is an uploaded file before processing.
type File struct {
	Name string
	Data []byte
}

// Processor parses uploaded files and extracts their datasets. Parse
// failures degrade the document instead of rejecting the upload: the
// extractor then falls back to the sample dataset.
type Processor struct {
	extractor *analysis.Extractor
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewProcessor creates a processor around the given extractor.
func NewProcessor(extractor *analysis.Extractor, logger *slog.Logger) *Processor {
	return &Processor{
		extractor: extractor,
		logger:    logger,
		tracer:    otel.Tracer("document"),
	}
}

// WithMetrics attaches prometheus instrumentation.
func (p *Processor) WithMetrics(m *metrics.Metrics) *Processor {
	p.metrics = m
	return p
}

// Process turns one uploaded file into a Document.
func (p *Processor) Process(ctx context.Context, name string, data []byte) Document {
	_, span := p.tracer.Start(ctx, "document.process",
		trace.WithAttributes(attribute.String("document.name", name)))
	defer span.End()

	kind := KindFromFilename(name)

	var rows []parser.TabularRow
	var raw string
	switch kind {
	case KindCSV:
		raw = string(data)
		rows = parser.ParseCSV(raw)
	case KindSpreadsheet:
		parsed, err := parser.ParseExcel(bytes.NewReader(data))
		if err != nil {
			p.logger.Warn("excel parse failed, extracting nothing",
				slog.String("name", name),
				slog.Any("error", err),
			)
		}
		rows = parsed
		raw = fmt.Sprintf("Arquivo Excel: %s", name)
	default:
		text, err := parser.ParsePDF(data)
		if err != nil {
			p.logger.Warn("pdf text extraction failed",
				slog.String("name", name),
				slog.Any("error", err),
			)
		}
		raw = text
		rows = parser.ParseCSV(text)
	}

	ds := p.extractor.Extract(rows)
	p.metrics.DocumentProcessed(string(kind), ds.Synthetic)
	span.SetAttributes(attribute.Bool("document.synthetic", ds.Synthetic))

	p.logger.Info("document processed",
		slog.String("name", name),
		slog.String("kind", string(kind)),
		slog.Int("rows", len(rows)),
		slog.Bool("synthetic", ds.Synthetic),
	)

	return Document{
		ID:         uuid.New(),
		Name:       name,
		Kind:       kind,
		SizeBytes:  int64(len(data)),
		UploadedAt: time.Now(),
		RawContent: raw,
		Dataset:    ds,
	}
}

// ProcessAll processes files concurrently on a bounded worker pool.
// Results are returned in input order.
func (p *Processor) ProcessAll(ctx context.Context, files []File) []Document {
	if len(files) == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}

	docs := make([]Document, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				docs[i] = p.Process(ctx, files[i].Name, files[i].Data)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return docs
}
