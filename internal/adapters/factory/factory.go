package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rafaelleal24/shoplist/internal/adapters/config"
	"github.com/rafaelleal24/shoplist/internal/adapters/jsonfile"
	"github.com/rafaelleal24/shoplist/internal/adapters/memory"
	adaptmongo "github.com/rafaelleal24/shoplist/internal/adapters/mongo"
	mongorepo "github.com/rafaelleal24/shoplist/internal/adapters/mongo/repository"
	"github.com/rafaelleal24/shoplist/internal/adapters/postgres"
	"github.com/rafaelleal24/shoplist/internal/core/logger"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

type Kind string

const (
	KindInMemory Kind = "in_memory"
	KindJSON     Kind = "json"
	KindDatabase Kind = "database"
	KindMongo    Kind = "mongo"
)

// fallbackOrder is the fixed probe priority: durable and concurrent-safe
// first, volatile last. In-memory never fails, so the strategy always
// terminates with a working repository. The mongo kind is explicit-only.
var fallbackOrder = []Kind{KindDatabase, KindJSON, KindInMemory}

// ParseKind maps a configured selector onto a Kind, falling back to json
// for unset or unrecognized values. Explicit construction through New is
// strict; configuration parsing deliberately is not.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInMemory:
		return KindInMemory
	case KindJSON:
		return KindJSON
	case KindDatabase:
		return KindDatabase
	case KindMongo:
		return KindMongo
	default:
		return KindJSON
	}
}

// New constructs the requested backend directly. An unknown kind is a
// configuration error.
func New(ctx context.Context, kind Kind, cfg *config.Config) (port.ProductRepository, error) {
	switch kind {
	case KindInMemory:
		return memory.NewProductRepository(), nil
	case KindJSON:
		return jsonfile.NewProductRepository(ctx, cfg.Repository.JSONPath)
	case KindDatabase:
		pool, err := postgres.NewConnection(ctx, cfg.Postgres)
		if err != nil {
			return nil, serviceerrors.NewStorageUnavailableError("postgres unreachable", err)
		}
		return postgres.NewProductRepository(ctx, pool)
	case KindMongo:
		client, err := adaptmongo.NewConnection(cfg.Mongo)
		if err != nil {
			return nil, serviceerrors.NewStorageUnavailableError("mongodb unreachable", err)
		}
		return mongorepo.NewProductRepository(client, client.Database(cfg.Mongo.Database)), nil
	default:
		return nil, serviceerrors.NewConfigurationError(fmt.Sprintf("unknown repository kind: %s", kind))
	}
}

// NewFromConfig builds the backend named by REPOSITORY_KIND.
func NewFromConfig(ctx context.Context, cfg *config.Config) (port.ProductRepository, error) {
	return New(ctx, ParseKind(cfg.Repository.Kind), cfg)
}

// NewWithFallback probes database, then json file, then in-memory, and
// returns the first backend that constructs and answers a liveness
// check. Probe failures are absorbed here and logged; this is the only
// place storage errors are swallowed.
func NewWithFallback(ctx context.Context, cfg *config.Config) port.ProductRepository {
	for _, kind := range fallbackOrder {
		repo, err := probe(ctx, kind, cfg)
		if err != nil {
			logger.Warn(ctx, "Repository backend unavailable, falling back", map[string]any{
				"kind":  string(kind),
				"error": err.Error(),
			})
			continue
		}
		logger.Info(ctx, "Repository backend selected", map[string]any{"kind": string(kind)})
		return repo
	}

	// Unreachable while in-memory stays in fallbackOrder, kept so the
	// function is total.
	return memory.NewProductRepository()
}

// Available reports whether a specific backend kind can be constructed
// and probed right now. All errors are swallowed.
func Available(ctx context.Context, kind Kind, cfg *config.Config) bool {
	_, err := probe(ctx, kind, cfg)
	return err == nil
}

func probe(ctx context.Context, kind Kind, cfg *config.Config) (port.ProductRepository, error) {
	repo, err := New(ctx, kind, cfg)
	if err != nil {
		return nil, err
	}

	// The database kinds answer a dedicated round trip; the others prove
	// themselves with a read of the full dataset.
	switch kind {
	case KindDatabase, KindMongo:
		err = repo.HealthCheck(ctx)
	default:
		_, err = repo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}
