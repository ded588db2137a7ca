package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/logging"
)

type Server struct {
	Config *config.Config
	Engine *core.Engine
	Logger *slog.Logger
}

func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	logger = logging.OrDiscard(logger)
	engine, err := core.NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Server{
		Config: cfg,
		Engine: engine,
		Logger: logger,
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/scan", s.Scan)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type RecordPayload struct {
	ID      string            `json:"id"`
	Source  string            `json:"source"`
	Fields  map[string]string `json:"fields"`
	Context map[string]string `json:"context"`
}

// ScanRequest carries the records to scan. Mode and Threshold, when set,
// override the service configuration for this request only.
type ScanRequest struct {
	Mode      string          `json:"mode"`
	Threshold *float64        `json:"threshold"`
	Records   []RecordPayload `json:"records" binding:"required"`
}

func (s *Server) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if limit := s.Config.Server.MaxRecords; limit > 0 && len(req.Records) > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many records", "max_records": limit})
		return
	}

	engine, err := s.engineFor(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := engine.Run(c.Request.Context(), core.Input{Records: toRecords(req.Records)})
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.Logger.Error("scan failed", "component", "server", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan records"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// engineFor returns the shared engine, or a new one when the request
// overrides mode or threshold.
func (s *Server) engineFor(req ScanRequest) (*core.Engine, error) {
	if req.Mode == "" && req.Threshold == nil {
		return s.Engine, nil
	}
	cfg := s.Config.Clone()
	if req.Mode != "" {
		cfg.Scan.Mode = config.Mode(strings.ToLower(req.Mode))
	}
	if req.Threshold != nil {
		cfg.Scan.Threshold = *req.Threshold
	}
	return core.NewEngine(cfg, s.Logger)
}

func toRecords(in []RecordPayload) []model.Record {
	out := make([]model.Record, 0, len(in))
	for i, p := range in {
		src := model.SourceTag(strings.ToUpper(strings.TrimSpace(p.Source)))
		if src == "" {
			src = model.SourceA
		}
		out = append(out, model.Record{
			ID:      strings.TrimSpace(p.ID),
			Source:  src,
			Fields:  sortedFields(p.Fields),
			Context: sortedFields(p.Context),
			Row:     i + 1,
		})
	}
	return out
}

func sortedFields(m map[string]string) []model.Field {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]model.Field, len(names))
	for i, n := range names {
		fields[i] = model.Field{Name: n, Value: m[n]}
	}
	return fields
}
