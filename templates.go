package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const customTemplatesKey = "custom_templates"

const templateExportVersion = "1.0"

// KVStore is the injected persistence provider for the catalog. Both
// operations are non-throwing: failures surface as false, never panics.
type KVStore interface {
	Get(key string, out any) bool
	Set(key string, value any) bool
}

var builtinTemplates = map[string]string{
	TemplateStandard: `{salam} pengguna ICONNET atas nama Bpk/Ibu {nama}, sebelumnya kami memohon maaf atas kendala yang Bpk/Ibu alami. Kami dari ICONNET ingin follow-up terkait laporan kendala {kategori} dengan No. Tiket pelaporan {tiket}.

Apakah saat ini Bapak/Ibu kendalanya sudah tertangani?{asp}`,

	TemplateWifiDefault: `{salam}, pengguna ICONNET atas nama Bpk/Ibu {nama}, sebelumnya kami memohon maaf atas kendala yang Bpk/Ibu alami. Kami dari ICONNET ingin follow-up terkait laporan {kategori} dengan No. Tiket pelaporan {tiket}.

Kami informasikan bahwa nama WiFi di lokasi bapak/ibu telah mengalami reset ke pengaturan default. berikut nama wifinya

SSID    : {ssid}
Password : {password}

Jika ada permintaan khusus terkait nama WiFi (SSID) atau password, silakan informasikan kepada kami agar dapat disesuaikan sesuai kebutuhan{asp}`,

	TemplateGantiSSIDPassword: `{salam}, pengguna ICONNET atas nama Bpk/Ibu {nama}, sebelumnya kami memohon maaf atas kendala yang Bpk/Ibu alami. Kami dari ICONNET ingin follow-up terkait laporan kendala LAIN-LAIN dengan No. Tiket pelaporan {tiket}.

SSID dan password WiFi Anda sudah kami perbarui sesuai permintaan:
SSID : {ssid}
Password : {password}

Silakan sambungkan kembali perangkat Anda menggunakan SSID dan Password baru. Apabila masih ada kendala, jangan ragu untuk menghubungi kami.{asp}`,

	TemplateGantiSSID: `{salam}, pengguna ICONNET atas nama Bpk/Ibu {nama}, sebelumnya kami memohon maaf atas kendala yang Bpk/Ibu alami. Kami dari ICONNET ingin follow-up terkait laporan kendala LAIN-LAIN dengan No. Tiket pelaporan {tiket}.

SSID WiFi Anda sudah kami perbarui sesuai permintaan:
SSID: {ssid}

Silakan sambungkan kembali perangkat Anda menggunakan SSID baru. Apabila masih ada kendala, jangan ragu untuk menghubungi kami.{asp}`,

	TemplateGantiPassword: `{salam}, pengguna ICONNET atas nama Bpk/Ibu {nama}, sebelumnya kami memohon maaf atas kendala yang Bpk/Ibu alami. Kami dari ICONNET ingin follow-up terkait laporan kendala LAIN-LAIN dengan No. Tiket pelaporan {tiket}.

Password WiFi Anda sudah kami perbarui sesuai permintaan:
Password: {password}

Silakan sambungkan kembali perangkat Anda menggunakan Password baru. Apabila masih ada kendala, jangan ragu untuk menghubungi kami.{asp}`,

	TemplateStreamingService: `{salam}, pengguna ICONNET atas nama Bpk/Ibu {nama}, sebelumnya kami memohon maaf atas kendala yang Bpk/Ibu alami. Kami dari ICONNET ingin follow-up terkait laporan kendala {kategori} dengan No. Tiket pelaporan {tiket}.

Mohon bantuannya untuk mencoba kembali dan disarankan untuk reboot terlebih dahulu. Jika diperlukan login ulang berikut username dan passwordnya:

Username: {ssid}
Password: {password}

Apakah saat ini Bapak/Ibu kendalanya sudah tertangani?{asp}`,
}

// ExportDocument is the transportable template dump. Import only merges
// the custom map; built-ins travel for reference but are never applied.
type ExportDocument struct {
	BuiltIn    map[string]string `json:"builtIn"`
	Custom     map[string]string `json:"custom"`
	ExportDate string            `json:"exportDate"`
	Version    string            `json:"version"`
}

// Catalog holds the built-in templates plus runtime-added custom ones.
// Custom templates are additive; a custom name never shadows a built-in.
type Catalog struct {
	mu     sync.RWMutex
	custom map[string]string
	store  KVStore
}

func NewCatalog(store KVStore) *Catalog {
	c := &Catalog{
		custom: map[string]string{},
		store:  store,
	}
	if store != nil {
		var saved map[string]string
		if store.Get(customTemplatesKey, &saved) && saved != nil {
			c.custom = saved
		}
	}
	return c
}

// Body returns the template body for id, falling back to the standard
// body when id is unknown.
func (c *Catalog) Body(id string) string {
	if body, ok := builtinTemplates[id]; ok {
		return body
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if body, ok := c.custom[id]; ok {
		return body
	}
	return builtinTemplates[TemplateStandard]
}

// Render substitutes fields into the template body for id. Every
// occurrence of {key} is replaced for each provided key; tokens for
// keys not present in fields stay literal on purpose. The asp field is
// formatted as a separated trailing signature line.
func (c *Catalog) Render(id string, fields map[string]string) string {
	rendered := c.Body(id)
	for key, value := range fields {
		placeholder := "{" + key + "}"
		if key == "asp" {
			rendered = strings.ReplaceAll(rendered, placeholder, formatASP(value))
			continue
		}
		rendered = strings.ReplaceAll(rendered, placeholder, value)
	}
	return rendered
}

// formatASP prefixes a non-empty signature with a dash and separates it
// with a blank line; empty input collapses to nothing so no stray blank
// lines remain.
func formatASP(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "-") {
		trimmed = "-" + trimmed
	}
	return "\n\n" + trimmed
}

// ValidateTemplateData checks the fields every template needs. This is
// the one catalog operation that reports a hard failure; callers treat
// it as a precondition violation.
func ValidateTemplateData(fields map[string]string) error {
	required := []string{"salam", "nama", "tiket", "kategori"}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(fields[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete template data: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Catalog) AddCustom(name, body string) bool {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(body) == "" {
		return false
	}
	if _, isBuiltin := builtinTemplates[name]; isBuiltin {
		return false
	}
	c.mu.Lock()
	c.custom[name] = body
	c.mu.Unlock()
	return c.saveCustom()
}

func (c *Catalog) RemoveCustom(name string) bool {
	c.mu.Lock()
	_, ok := c.custom[name]
	delete(c.custom, name)
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.saveCustom()
}

// All returns the merged built-in and custom template map.
func (c *Catalog) All() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(builtinTemplates)+len(c.custom))
	for id, body := range builtinTemplates {
		out[id] = body
	}
	for name, body := range c.custom {
		out[name] = body
	}
	return out
}

// CustomNames returns the custom template names, sorted.
func (c *Catalog) CustomNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.custom))
	for name := range c.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export serializes the catalog into a transportable document.
func (c *Catalog) Export(now time.Time) ExportDocument {
	c.mu.RLock()
	custom := make(map[string]string, len(c.custom))
	for name, body := range c.custom {
		custom[name] = body
	}
	c.mu.RUnlock()

	builtIn := make(map[string]string, len(builtinTemplates))
	for id, body := range builtinTemplates {
		builtIn[id] = body
	}

	return ExportDocument{
		BuiltIn:    builtIn,
		Custom:     custom,
		ExportDate: now.UTC().Format(time.RFC3339),
		Version:    templateExportVersion,
	}
}

// Import merges the custom templates of an exported document into the
// catalog. Malformed input returns false and leaves the catalog as it
// was; built-ins are never touched.
func (c *Catalog) Import(data []byte) bool {
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	if doc.Custom == nil {
		return false
	}
	c.mu.Lock()
	for name, body := range doc.Custom {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, isBuiltin := builtinTemplates[name]; isBuiltin {
			continue
		}
		c.custom[name] = body
	}
	c.mu.Unlock()
	c.saveCustom()
	return true
}

func (c *Catalog) saveCustom() bool {
	if c.store == nil {
		return true
	}
	c.mu.RLock()
	custom := make(map[string]string, len(c.custom))
	for name, body := range c.custom {
		custom[name] = body
	}
	c.mu.RUnlock()
	return c.store.Set(customTemplatesKey, custom)
}
