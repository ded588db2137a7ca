// Package source loads opportunity records from spreadsheets, CSV exports
// and graph databases.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/driver"
)

type Source interface {
	Load(ctx context.Context) (*Batch, error)
}

// Dialer connects to the graph database at uri.
type Dialer func(ctx context.Context, uri string) (driver.GraphDriver, error)

var graphSchemes = []string{
	"bolt://", "bolt+s://", "bolt+ssc://",
	"neo4j://", "neo4j+s://", "neo4j+ssc://",
	"memgraph://",
}

// IsGraphURI reports whether path names a graph database rather than a file.
func IsGraphURI(path string) bool {
	lower := strings.ToLower(path)
	for _, s := range graphSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// Open picks the loader for cfg.Path: a graph URI, or a file by extension.
// dial may be nil when no graph source is configured.
func Open(tag model.SourceTag, cfg config.SourceConfig, dial Dialer, logger *slog.Logger) (Source, error) {
	if IsGraphURI(cfg.Path) {
		if dial == nil {
			return nil, fmt.Errorf("source %s: no graph connection available for %s", tag, cfg.Path)
		}
		return &GraphSource{Tag: tag, Config: cfg, Dial: dial, Logger: logger}, nil
	}

	switch ext := strings.ToLower(filepath.Ext(cfg.Path)); ext {
	case ".xlsx", ".xlsm":
		return &ExcelSource{Tag: tag, Config: cfg, Logger: logger}, nil
	case ".xls":
		return &XLSSource{Tag: tag, Config: cfg, Logger: logger}, nil
	case ".csv":
		return &CSVSource{Tag: tag, Config: cfg, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("source %s: unsupported file type %q for %s", tag, ext, cfg.Path)
	}
}
