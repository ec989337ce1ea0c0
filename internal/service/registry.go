// Package service implements the orchestration engine on top of ports.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/enterprisearena/arena/internal/domain/platform"
	platformport "github.com/enterprisearena/arena/internal/port/platform"
	"github.com/enterprisearena/arena/internal/resilience"
)

// Registry holds the configured platform connectors. Every connector is
// wrapped in its own circuit breaker so one failing platform cannot drag
// the others down.
type Registry struct {
	connectors map[platform.Type]platformport.Connector
	breakers   *resilience.Set
	log        *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(breakers *resilience.Set, log *slog.Logger) *Registry {
	return &Registry{
		connectors: make(map[platform.Type]platformport.Connector),
		breakers:   breakers,
		log:        log,
	}
}

// Register adds a connector. Re-registering a platform replaces it.
func (r *Registry) Register(conn platformport.Connector) {
	typ := conn.Type()
	r.connectors[typ] = &breakerConnector{
		inner:   conn,
		breaker: r.breakers.For(string(typ)),
	}
}

// Get returns the connector for a platform.
func (r *Registry) Get(typ platform.Type) (platformport.Connector, error) {
	conn, ok := r.connectors[typ]
	if !ok {
		return nil, fmt.Errorf("platform %q not registered: %w", typ, platform.ErrUnavailable)
	}
	return conn, nil
}

// ConnectAll connects every registered platform. The first failure aborts.
func (r *Registry) ConnectAll(ctx context.Context) error {
	for typ, conn := range r.connectors {
		if err := conn.Connect(ctx); err != nil {
			return fmt.Errorf("connect %s: %w", typ, err)
		}
		r.log.Info("platform connected", "platform", typ)
	}
	return nil
}

// DisconnectAll disconnects every registered platform, logging failures.
func (r *Registry) DisconnectAll(ctx context.Context) {
	for typ, conn := range r.connectors {
		if err := conn.Disconnect(ctx); err != nil {
			r.log.Error("platform disconnect failed", "platform", typ, "error", err)
		}
	}
}

// Platforms returns health info for every registered platform, sorted by name.
func (r *Registry) Platforms() []platform.Info {
	infos := make([]platform.Info, 0, len(r.connectors))
	for _, conn := range r.connectors {
		infos = append(infos, conn.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Type < infos[j].Type })
	return infos
}

// breakerConnector decorates a Connector with a circuit breaker around
// every platform operation.
type breakerConnector struct {
	inner   platformport.Connector
	breaker *resilience.Breaker
}

func (b *breakerConnector) Type() platform.Type { return b.inner.Type() }
func (b *breakerConnector) Info() platform.Info { return b.inner.Info() }

func (b *breakerConnector) Connect(ctx context.Context) error {
	return b.inner.Connect(ctx)
}

func (b *breakerConnector) Disconnect(ctx context.Context) error {
	return b.inner.Disconnect(ctx)
}

func (b *breakerConnector) ValidateCredentials(ctx context.Context) error {
	return b.inner.ValidateCredentials(ctx)
}

func (b *breakerConnector) guard(fn func() (*platform.Result, error)) (*platform.Result, error) {
	var res *platform.Result
	err := b.breaker.Execute(func() error {
		var innerErr error
		res, innerErr = fn()
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (b *breakerConnector) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*platform.Result, error) {
	return b.guard(func() (*platform.Result, error) { return b.inner.ExecuteQuery(ctx, query, params) })
}

func (b *breakerConnector) CreateRecord(ctx context.Context, objectType string, data map[string]any) (*platform.Result, error) {
	return b.guard(func() (*platform.Result, error) { return b.inner.CreateRecord(ctx, objectType, data) })
}

func (b *breakerConnector) UpdateRecord(ctx context.Context, objectType, recordID string, data map[string]any) (*platform.Result, error) {
	return b.guard(func() (*platform.Result, error) { return b.inner.UpdateRecord(ctx, objectType, recordID, data) })
}

func (b *breakerConnector) DeleteRecord(ctx context.Context, objectType, recordID string) (*platform.Result, error) {
	return b.guard(func() (*platform.Result, error) { return b.inner.DeleteRecord(ctx, objectType, recordID) })
}

func (b *breakerConnector) SearchRecords(ctx context.Context, objectType string, criteria map[string]any) (*platform.Result, error) {
	return b.guard(func() (*platform.Result, error) { return b.inner.SearchRecords(ctx, objectType, criteria) })
}
