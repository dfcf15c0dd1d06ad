package cache

import (
	"context"

	"github.com/rbalint/candidate-outreach/internal/model"
)

// MappingCache remembers column-mapping answers per header signature so
// re-uploading the same sheet skips the AI round trip.
type MappingCache interface {
	GetMapping(ctx context.Context, key string) (*model.ColumnMapping, error)
	StoreMapping(ctx context.Context, key string, m model.ColumnMapping) error
}
