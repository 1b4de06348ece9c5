package main

import "strings"

// Template identifiers. Classify never returns anything outside this set.
const (
	TemplateStandard          = "standard"
	TemplateWifiDefault       = "wifi_default"
	TemplateGantiSSIDPassword = "ganti_ssid_password"
	TemplateGantiSSID         = "ganti_ssid"
	TemplateGantiPassword     = "ganti_password"
	TemplateStreamingService  = "streaming_service"
)

var defaultStreamingKeywords = []string{
	"GANGGUAN-ICONPLAY",
	"GANGGUAN-CUBMU",
	"GANGGUAN-VIU",
	"GANGGUAN-VIDIO",
	"ICONPLAY",
	"CUBMU",
	"VIU",
	"VIDIO",
	"STREAMING",
	"OTT",
	"TV",
	"STB",
}

// Misspelled variants are kept as literal entries; matching is plain
// substring containment, never fuzzy.
var defaultResetKeywords = []string{
	"TERRESET",
	"TERESET",
	"RESET",
	"DEFAULT",
	"BAWAAN",
	"PABRIK",
	"KEMBALI KE DEFAULT",
	"TROUBLESHOOT",
	"TROUBLE SHOOT",
	"TROUBLESHOOTING",
	"REBOOT",
	"RESTART",
	"HARD RESET",
	"SOFT RESET",
}

// Brand keywords drive both the quality analyzer's narrow streaming
// check and the confidence boost.
var streamingBrandKeywords = []string{
	"GANGGUAN-ICONPLAY",
	"GANGGUAN-CUBMU",
	"GANGGUAN-VIU",
	"GANGGUAN-VIDIO",
}

var internetIssueKeywords = []string{
	"INTERNET DOWN",
	"NO INTERNET",
	"INTERNET SLOW",
}

type detectionRule struct {
	name  string
	match func(kategori, keperluan string) bool
	then  Classification
}

// Engine is the deterministic template classifier. It is stateless apart
// from its keyword tables, which are fixed at construction.
type Engine struct {
	streaming []string
	reset     []string
	rules     []detectionRule
}

func NewEngine(overrides *KeywordOverrides) *Engine {
	e := &Engine{
		streaming: defaultStreamingKeywords,
		reset:     defaultResetKeywords,
	}
	if overrides != nil {
		e.streaming = appendKeywords(e.streaming, overrides.Streaming)
		e.reset = appendKeywords(e.reset, overrides.Reset)
	}
	e.rules = e.buildRules()
	return e
}

// buildRules returns the rule table in evaluation order. First match
// wins; ordering is the only tie-break between overlapping keyword sets.
func (e *Engine) buildRules() []detectionRule {
	return []detectionRule{
		{
			name: "streaming service",
			match: func(kategori, _ string) bool {
				return containsAny(kategori, e.streaming)
			},
			then: Classification{Template: TemplateStreamingService, Name: "Layanan Streaming"},
		},
		{
			name: "reset condition",
			match: func(kategori, keperluan string) bool {
				return containsAny(kategori, e.reset) || containsAny(keperluan, e.reset)
			},
			then: Classification{Template: TemplateWifiDefault, Name: "WiFi Default"},
		},
		{
			name: "ssid and password",
			match: func(_, keperluan string) bool {
				return (strings.Contains(keperluan, "SSID") && strings.Contains(keperluan, "PASSWORD")) ||
					strings.Contains(keperluan, "SSID DAN PASSWORD") ||
					strings.Contains(keperluan, "SSID & PASSWORD")
			},
			then: Classification{Template: TemplateGantiSSIDPassword, Name: "Ganti SSID+Password"},
		},
		{
			name: "ssid only",
			match: func(_, keperluan string) bool {
				return strings.Contains(keperluan, "SSID") && !strings.Contains(keperluan, "PASSWORD")
			},
			then: Classification{Template: TemplateGantiSSID, Name: "Ganti SSID"},
		},
		{
			name: "password only",
			match: func(_, keperluan string) bool {
				return strings.Contains(keperluan, "PASSWORD") && !strings.Contains(keperluan, "SSID")
			},
			then: Classification{Template: TemplateGantiPassword, Name: "Ganti Password"},
		},
		{
			name: "internet issue confirmation",
			match: func(kategori, keperluan string) bool {
				return containsAny(kategori, internetIssueKeywords) &&
					strings.Contains(keperluan, "KONFIRMASI KENDALA USER")
			},
			then: Classification{Template: TemplateStandard, Name: "Standard - Internet Issue"},
		},
		{
			name: "lain-lain confirmation",
			match: func(kategori, keperluan string) bool {
				return strings.Contains(kategori, "LAIN-LAIN") &&
					strings.Contains(keperluan, "KONFIRMASI KENDALA USER")
			},
			then: Classification{Template: TemplateStandard, Name: "Standard - Lain-lain"},
		},
	}
}

// Classify maps free-text category and purpose to a template. It always
// returns a classification; unmatched input falls back to standard.
func (e *Engine) Classify(kategori, keperluan string) Classification {
	kategoriUpper := normalizeText(kategori)
	keperluanUpper := normalizeText(keperluan)

	for _, rule := range e.rules {
		if rule.match(kategoriUpper, keperluanUpper) {
			return rule.then
		}
	}
	return Classification{Template: TemplateStandard, Name: "Standard - Default"}
}

// Confidence scores a classification 0-100. The base of 80 reflects the
// ordered-rule design; exact keyword hits add a capped boost. The score
// is advisory only and never alters the classification.
func (e *Engine) Confidence(kategori, keperluan string, c Classification) int {
	kategoriUpper := normalizeText(kategori)
	keperluanUpper := normalizeText(keperluan)

	confidence := 80

	if c.Template == TemplateStreamingService && containsAny(kategoriUpper, streamingBrandKeywords) {
		confidence += 15
	}
	if c.Template == TemplateWifiDefault && strings.Contains(keperluanUpper, "TERRESET") {
		confidence += 15
	}

	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

// BatchDetect classifies entries in order, assigning each its 0-based
// input position. Entries are never dropped or reordered.
func (e *Engine) BatchDetect(entries []TicketEntry) []ClassifiedEntry {
	out := make([]ClassifiedEntry, 0, len(entries))
	for i, entry := range entries {
		c := e.Classify(entry.Kategori, entry.Keperluan)
		out = append(out, ClassifiedEntry{
			TicketEntry:  entry,
			Index:        i,
			TemplateType: c.Template,
			TemplateName: c.Name,
			Confidence:   e.Confidence(entry.Kategori, entry.Keperluan, c),
		})
	}
	return out
}

// AnalyzeDataQuality inspects a classified batch for format errors and
// likely misclassifications. Warnings are advisory; the analyzer never
// fails.
func (e *Engine) AnalyzeDataQuality(entries []ClassifiedEntry) QualityReport {
	warnings := []QualityWarning{}

	for i, entry := range entries {
		if !IsValidTicket(entry.Tiket) {
			warnings = append(warnings, QualityWarning{
				Index:   i + 1,
				Message: "Format tiket tidak valid: " + entry.Tiket,
			})
		}

		// Should be unreachable given rule ordering, but the check is
		// re-derived from the narrower brand set rather than trusting
		// the stored template type.
		kategoriUpper := normalizeText(entry.Kategori)
		if containsAny(kategoriUpper, streamingBrandKeywords) && entry.TemplateType != TemplateStreamingService {
			warnings = append(warnings, QualityWarning{
				Index:   i + 1,
				Message: "Service streaming terdeteksi tetapi template mungkin tidak sesuai: " + entry.Kategori,
			})
		}

		c := e.Classify(entry.Kategori, entry.Keperluan)
		keperluanUpper := normalizeText(entry.Keperluan)
		if c.Template == TemplateStandard &&
			(strings.Contains(keperluanUpper, "SSID") ||
				strings.Contains(keperluanUpper, "PASSWORD") ||
				strings.Contains(keperluanUpper, "RESET")) {
			warnings = append(warnings, QualityWarning{
				Index:   i + 1,
				Message: "Template Standard terdeteksi untuk: \"" + entry.Keperluan + "\"",
			})
		}
	}

	return QualityReport{
		Warnings:     warnings,
		TotalEntries: len(entries),
		HasIssues:    len(warnings) > 0,
	}
}

// ContextSuggestion returns a category hint for the input form.
func (e *Engine) ContextSuggestion(kategori string) string {
	if strings.TrimSpace(kategori) == "" {
		return ""
	}
	kategoriUpper := normalizeText(kategori)

	switch {
	case containsAny(kategoriUpper, []string{"TV", "STB", "REMOTE", "ICONPLAY", "CHANNEL", "GANGGUAN TV"}):
		return "Kemungkinan gangguan streaming - pertimbangkan template Layanan Streaming"
	case containsAny(kategoriUpper, []string{"WIFI", "INTERNET", "JARINGAN", "SINYAL", "HOTSPOT", "ROUTER", "MODEM"}):
		return "Kemungkinan gangguan WiFi - pertimbangkan template WiFi Default"
	case containsAny(kategoriUpper, []string{"INTERNET SLOW", "INTERNET LAMBAT", "KECEPATAN", "BANDWIDTH", "DOWNLOAD"}):
		return "Kemungkinan gangguan internet lambat - template Standard sudah tepat"
	}
	return "Pertimbangkan kategori yang lebih spesifik untuk deteksi template yang optimal"
}

// Stats aggregates a classified batch for the dashboard.
func Stats(entries []ClassifiedEntry) DetectionStats {
	stats := DetectionStats{
		TemplateCounts:     map[string]int{},
		TotalEntries:       len(entries),
		MostCommonTemplate: TemplateStandard,
	}
	if len(entries) == 0 {
		return stats
	}

	totalConfidence := 0
	for _, entry := range entries {
		stats.TemplateCounts[entry.TemplateType]++
		totalConfidence += entry.Confidence
	}
	stats.AverageConfidence = (totalConfidence + len(entries)/2) / len(entries)

	best := 0
	for template, count := range stats.TemplateCounts {
		if count > best || (count == best && template < stats.MostCommonTemplate) {
			best = count
			stats.MostCommonTemplate = template
		}
	}
	return stats
}

func normalizeText(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func appendKeywords(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base)+len(extra))
	for _, k := range base {
		seen[normalizeText(k)] = true
		out = append(out, k)
	}
	for _, k := range extra {
		norm := normalizeText(k)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
