// Package document models uploaded files and turns them into financial
// datasets.
package document

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
)

// Kind is the broad file category a document was parsed as.
type Kind string

const (
	KindPDF         Kind = "pdf"
	KindSpreadsheet Kind = "spreadsheet"
	KindCSV         Kind = "csv"
)

// KindFromFilename derives the kind from the file extension. Unknown
// extensions are treated as PDF, the most permissive text path.
func KindFromFilename(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return KindCSV
	case ".xlsx", ".xls":
		return KindSpreadsheet
	default:
		return KindPDF
	}
}

// Document is one uploaded file after processing. RawContent holds the
// textual content handed to the upstream assistant; Dataset holds the
// extracted figures. Documents live only as long as their session unless
// the archive is enabled.
type Document struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Kind       Kind             `json:"kind"`
	SizeBytes  int64            `json:"sizeBytes"`
	UploadedAt time.Time        `json:"uploadedAt"`
	RawContent string           `json:"-"`
	Dataset    analysis.Dataset `json:"dataset"`
}
