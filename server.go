package main

import (
	"database/sql"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type server struct {
	cfg     Config
	db      *sql.DB
	engine  *Engine
	catalog *Catalog
}

// NewRouter wires the JSON API the browser UI talks to.
func NewRouter(cfg Config, db *sql.DB, engine *Engine, catalog *Catalog) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &server{cfg: cfg, db: db, engine: engine, catalog: catalog}

	api := r.Group("/api")
	{
		api.POST("/detect", s.handleDetect)
		api.POST("/batch", s.handleBatch)
		api.POST("/render", s.handleRender)

		api.GET("/templates", s.handleListTemplates)
		api.POST("/templates", s.handleAddTemplate)
		api.DELETE("/templates/:name", s.handleRemoveTemplate)
		api.GET("/templates/export", s.handleExportTemplates)
		api.POST("/templates/import", s.handleImportTemplates)

		api.GET("/tickets", s.handleListTickets)
		api.POST("/tickets", s.handleCreateTicket)
		api.POST("/tickets/refresh", s.handleRefreshTickets)
		api.POST("/tickets/:id/assign", s.handleAssignTicket)

		api.GET("/progress", s.handleGetProgress)
		api.POST("/progress", s.handleSetProgress)
	}
	return r
}

type detectRequest struct {
	Kategori  string `json:"kategori"`
	Keperluan string `json:"keperluan"`
}

func (s *server) handleDetect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	classification := s.engine.Classify(req.Kategori, req.Keperluan)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"template":   classification.Template,
		"name":       classification.Name,
		"confidence": s.engine.Confidence(req.Kategori, req.Keperluan, classification),
		"suggestion": s.engine.ContextSuggestion(req.Kategori),
	})
}

type batchRequest struct {
	Nama      string `json:"nama"`
	Tiket     string `json:"tiket"`
	Kategori  string `json:"kategori"`
	Keperluan string `json:"keperluan"`
	SSID      string `json:"ssid"`
	Password  string `json:"password"`
	ASP       string `json:"asp"`
	SaveFile  bool   `json:"save_file"`
}

func (s *server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	entries, err := ParseEntries(req.Nama, req.Tiket, req.Kategori, req.Keperluan)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	now := time.Now().In(s.cfg.Location)
	classified := s.engine.BatchDetect(entries)

	messages := make([]GeneratedMessage, 0, len(classified))
	for _, entry := range classified {
		fields := map[string]string{
			"salam":    GreetingAt(now),
			"nama":     entry.Nama,
			"tiket":    entry.Tiket,
			"kategori": entry.Kategori,
			"ssid":     req.SSID,
			"password": req.Password,
			"asp":      req.ASP,
		}
		if err := ValidateTemplateData(fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		messages = append(messages, GeneratedMessage{
			Index:        entry.Index,
			Tiket:        entry.Tiket,
			Nama:         entry.Nama,
			TemplateType: entry.TemplateType,
			TemplateName: entry.TemplateName,
			Confidence:   entry.Confidence,
			Message:      s.catalog.Render(entry.TemplateType, fields),
		})
	}

	resp := gin.H{
		"success":  true,
		"messages": messages,
		"quality":  s.engine.AnalyzeDataQuality(classified),
		"stats":    Stats(classified),
	}

	if req.SaveFile {
		path, err := WriteMessagesFile(messages, s.cfg.OutputDir, now)
		if err != nil {
			log.Printf("Error writing messages file: %v", err)
		} else {
			resp["file"] = path
		}
	}
	c.JSON(http.StatusOK, resp)
}

type renderRequest struct {
	Template string            `json:"template"`
	Fields   map[string]string `json:"fields"`
}

func (s *server) handleRender(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if err := ValidateTemplateData(req.Fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": s.catalog.Render(req.Template, req.Fields),
	})
}

func (s *server) handleListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"templates": s.catalog.All(),
		"custom":    s.catalog.CustomNames(),
	})
}

type addTemplateRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

func (s *server) handleAddTemplate(c *gin.Context) {
	var req addTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if !s.catalog.AddCustom(req.Name, req.Body) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "template name or body not accepted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) handleRemoveTemplate(c *gin.Context) {
	if !s.catalog.RemoveCustom(c.Param("name")) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown custom template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) handleExportTemplates(c *gin.Context) {
	now := time.Now().In(s.cfg.Location)
	doc := s.catalog.Export(now)
	resp := gin.H{"success": true, "document": doc}
	if c.Query("save") == "1" {
		path, err := WriteTemplateExportFile(doc, s.cfg.OutputDir, now)
		if err != nil {
			log.Printf("Error writing template export: %v", err)
		} else {
			resp["file"] = path
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleImportTemplates(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unreadable request body"})
		return
	}
	if !s.catalog.Import(data) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "malformed template document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) handleListTickets(c *gin.Context) {
	tickets, err := GetCachedPendingTickets(s.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if tickets == nil {
		tickets = []PendingTicket{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tickets": tickets})
}

func (s *server) handleCreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	ticketID, err := CreateRemoteTicket(s.cfg, req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket_id": ticketID})
}

func (s *server) handleRefreshTickets(c *gin.Context) {
	result, err := FetchAndCacheTickets(s.cfg, s.db)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": FormatFetchSummary(result)})
}

type assignRequest struct {
	PIC string `json:"pic"`
}

func (s *server) handleAssignTicket(c *gin.Context) {
	ticketID := c.Param("id")
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	now := time.Now().In(s.cfg.Location)
	if err := AssignRemoteTicket(s.cfg, ticketID, req.PIC, now); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := UpdateCachedTicketStatus(s.db, ticketID, "IN PROGRESS"); err != nil {
		log.Printf("Error updating cached ticket %s: %v", ticketID, err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) handleGetProgress(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = progressDateKey(time.Now().In(s.cfg.Location))
	}
	sent, err := GetSentProgress(s.db, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "date": date, "sent": sent})
}

type progressRequest struct {
	Tiket string `json:"tiket"`
	Sent  bool   `json:"sent"`
}

func (s *server) handleSetProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tiket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "tiket is required"})
		return
	}
	now := time.Now().In(s.cfg.Location)
	date := progressDateKey(now)

	var err error
	if req.Sent {
		err = MarkSent(s.db, date, req.Tiket, now)
	} else {
		err = UnmarkSent(s.db, date, req.Tiket)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "date": date})
}
