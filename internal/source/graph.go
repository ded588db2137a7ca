package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/driver"
)

// GraphSource runs a Cypher query and treats the result columns as the table
// header. The query receives the source tag as $source.
type GraphSource struct {
	Tag    model.SourceTag
	Config config.SourceConfig
	Dial   Dialer
	Logger *slog.Logger
}

func (s *GraphSource) Load(ctx context.Context) (*Batch, error) {
	d, err := s.Dial(ctx, s.Config.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close(ctx) }()

	query := s.Config.Query
	if query == "" {
		query = driver.LoadOpportunitiesQuery
	}
	result, err := d.ExecuteQuery(ctx, query, map[string]interface{}{
		"source": string(s.Tag),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load source %s: %w", s.Tag, err)
	}

	t := &Table{Name: s.Config.Path, Header: result.Keys, FirstRow: 1}
	for _, rec := range result.Records {
		row := make([]string, len(rec.Values))
		for i, v := range rec.Values {
			row[i] = graphValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t.Records(s.Tag, s.Config, s.Logger)
}

func graphValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
