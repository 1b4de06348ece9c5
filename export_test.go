package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteMessagesFile(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 8, 29, 10, 30, 45, 0, time.UTC)

	messages := []GeneratedMessage{
		{Index: 0, Tiket: "ABC123", Nama: "Budi", TemplateName: "Ganti SSID", Message: "pesan pertama"},
		{Index: 1, Tiket: "DEF456", Nama: "Sari", TemplateName: "Standard - Default", Message: "pesan kedua"},
	}
	path, err := WriteMessagesFile(messages, dir, ts)
	if err != nil {
		t.Fatalf("WriteMessagesFile: %v", err)
	}
	if filepath.Base(path) != "messages_20260829_103045.txt" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "Pesan 1 - ABC123 (Ganti SSID)") {
		t.Fatalf("missing first header:\n%s", content)
	}
	if !strings.Contains(content, "Pesan 2 - DEF456 (Standard - Default)") {
		t.Fatalf("missing second header:\n%s", content)
	}
	if !strings.Contains(content, strings.Repeat("=", 40)) {
		t.Fatalf("missing separator:\n%s", content)
	}
	if strings.Index(content, "pesan pertama") > strings.Index(content, "pesan kedua") {
		t.Fatalf("messages out of order:\n%s", content)
	}
}

func TestWriteMessagesFileCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	_, err := WriteMessagesFile([]GeneratedMessage{{Tiket: "ABC123", Message: "x"}}, dir, time.Now())
	if err != nil {
		t.Fatalf("WriteMessagesFile with missing dir: %v", err)
	}
}

func TestWriteTemplateExportFile(t *testing.T) {
	dir := t.TempDir()
	catalog := NewCatalog(nil)
	catalog.AddCustom("penutup", "Terima kasih.")
	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	path, err := WriteTemplateExportFile(catalog.Export(ts), dir, ts)
	if err != nil {
		t.Fatalf("WriteTemplateExportFile: %v", err)
	}
	if filepath.Base(path) != "templates-export-2026-08-29.json" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var doc ExportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.Version != "1.0" || doc.Custom["penutup"] != "Terima kasih." {
		t.Fatalf("round-tripped doc = %+v", doc)
	}
}
