package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/logging"
)

// MemgraphDriver works against Memgraph and Neo4j alike.
type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	logger *slog.Logger
}

func NewMemgraphDriver(ctx context.Context, cfg config.MemgraphConfig, logger *slog.Logger) (*MemgraphDriver, error) {
	logger = logging.OrDiscard(logger).With("component", "driver")

	uri := BoltURI(cfg.URI)
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver for %s: %w", cfg.URI, err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}

	logger.Info("connected to graph database", "uri", cfg.URI)
	return &MemgraphDriver{Driver: d, logger: logger}, nil
}

// BoltURI maps the memgraph:// alias onto bolt://; other URIs pass through.
func BoltURI(uri string) string {
	const alias = "memgraph://"
	if len(uri) >= len(alias) && strings.EqualFold(uri[:len(alias)], alias) {
		return "bolt://" + uri[len(alias):]
	}
	return uri
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indices the opportunity queries rely on.
// Existing indices are reported and ignored.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.logger.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
