package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/videocraft/videocraft-core/internal/editing"
)

// DataVersion is written into exportInfo.version.
const DataVersion = "1.0"

// ExportInfo describes when and from what a data document was produced.
type ExportInfo struct {
	ExportedAt    string `json:"exportedAt"`
	VideoFilename string `json:"videoFilename"`
	Version       string `json:"version"`
	Source        string `json:"source"`
}

// DataDocument is the canonical project-data JSON document.
type DataDocument struct {
	ExportInfo ExportInfo      `json:"exportInfo"`
	Project    json.RawMessage `json:"project"`
	Editing    editing.Data    `json:"editing"`
	Stats      editing.Stats   `json:"stats"`
}

// NewDataDocument assembles the document for state. project is the
// backend's canonical project payload and is embedded verbatim.
func NewDataDocument(videoFilename string, project json.RawMessage, state editing.State, at time.Time) DataDocument {
	if len(project) == 0 {
		project = json.RawMessage("null")
	}
	return DataDocument{
		ExportInfo: ExportInfo{
			ExportedAt:    at.UTC().Format(time.RFC3339),
			VideoFilename: videoFilename,
			Version:       DataVersion,
			Source:        "backend",
		},
		Project: project,
		Editing: state.Data(),
		Stats:   state.Stats(),
	}
}

// RenderDataDocument encodes doc as indented JSON.
func RenderDataDocument(doc DataDocument) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode data document: %w", err)
	}
	return append(out, '\n'), nil
}

// ParseDataDocument decodes a document written by RenderDataDocument.
func ParseDataDocument(raw []byte) (DataDocument, error) {
	var doc DataDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return DataDocument{}, fmt.Errorf("decode data document: %w", err)
	}
	return doc, nil
}
