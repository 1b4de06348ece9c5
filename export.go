package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GeneratedMessage pairs a classified entry with its rendered text.
type GeneratedMessage struct {
	Index        int    `json:"index"`
	Tiket        string `json:"tiket"`
	Nama         string `json:"nama"`
	TemplateType string `json:"templateType"`
	TemplateName string `json:"templateName"`
	Confidence   int    `json:"confidence"`
	Message      string `json:"message"`
}

// WriteMessagesFile writes a generated batch to the output dir, one
// message per block, numbered the way the agent sees them on screen.
func WriteMessagesFile(messages []GeneratedMessage, outputDir string, ts time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("messages_%s.txt", ts.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("=", 40) + "\n\n")
		}
		fmt.Fprintf(&b, "Pesan %d - %s (%s)\n\n", msg.Index+1, msg.Tiket, msg.TemplateName)
		b.WriteString(msg.Message)
		b.WriteString("\n")
	}
	return path, os.WriteFile(path, []byte(b.String()), 0644)
}

// WriteTemplateExportFile dumps the export document as JSON, named by
// date like the browser download it replaces.
func WriteTemplateExportFile(doc ExportDocument, outputDir string, ts time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("templates-export-%s.json", ts.Format("2006-01-02"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, data, 0644)
}
