// Package sandbox implements the platform connector port with simulated
// enterprise backends. Each platform is an in-memory record store seeded
// with benchmark fixtures, with optional artificial latency, failure
// injection and a read-through result cache. That is enough surface for the
// orchestration engine to run real cross-platform workflows without any
// external system.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enterprisearena/arena/internal/domain/platform"
	"github.com/enterprisearena/arena/internal/port/cache"
)

// Platform is one simulated enterprise backend. It is safe for concurrent
// use by multiple in-flight task executions.
type Platform struct {
	typ   platform.Type
	creds platform.Credentials

	mu          sync.RWMutex
	connected   bool
	connectedAt time.Time
	records     map[string]map[string]platform.Record // object type -> id -> record
	generation  map[string]uint64                     // object type -> write counter, part of cache keys
	failures    int                                   // remaining injected failures

	latency  time.Duration
	cache    cache.Cache
	cacheTTL time.Duration
}

// Option configures a sandbox platform.
type Option func(*Platform)

// WithLatency adds a fixed artificial delay to every capability call.
func WithLatency(d time.Duration) Option {
	return func(p *Platform) { p.latency = d }
}

// WithCache enables read-through caching of query/search results.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Platform) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// New creates a sandbox platform of the given type with seeded records.
// Most callers want the per-platform constructors in seed.go.
func New(typ platform.Type, creds platform.Credentials, seed map[string][]platform.Record, opts ...Option) *Platform {
	p := &Platform{
		typ:        typ,
		creds:      creds,
		records:    make(map[string]map[string]platform.Record),
		generation: make(map[string]uint64),
	}
	for objectType, recs := range seed {
		table := make(map[string]platform.Record, len(recs))
		for _, r := range recs {
			table[r.ID()] = cloneRecord(r)
		}
		p.records[objectType] = table
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Type returns the platform this connector serves.
func (p *Platform) Type() platform.Type { return p.typ }

// Connect validates credentials and opens the simulated session.
func (p *Platform) Connect(ctx context.Context) error {
	if err := p.ValidateCredentials(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	p.connectedAt = time.Now()
	slog.Info("sandbox platform connected", "platform", p.typ)
	return nil
}

// Disconnect closes the simulated session. Disconnecting an unconnected
// platform is not an error.
func (p *Platform) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

// ValidateCredentials checks the configured credentials against the sandbox
// requirements: an API key and a recognized environment.
func (p *Platform) ValidateCredentials(_ context.Context) error {
	if p.creds.APIKey == "" {
		return fmt.Errorf("%s: api_key missing: %w", p.typ, platform.ErrInvalidCredentials)
	}
	switch p.creds.Environment {
	case "", "sandbox", "production":
		return nil
	default:
		return fmt.Errorf("%s: environment %q: %w", p.typ, p.creds.Environment, platform.ErrInvalidCredentials)
	}
}

// Info returns connection state for health reporting.
func (p *Platform) Info() platform.Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	count := 0
	for _, table := range p.records {
		count += len(table)
	}
	return platform.Info{
		Type:        p.typ,
		Connected:   p.connected,
		ConnectedAt: p.connectedAt,
		Environment: p.creds.Environment,
		RecordCount: count,
	}
}

// InjectFailures makes the next n capability calls fail with ErrUnavailable.
// Used by fault-tolerance benchmarks and tests.
func (p *Platform) InjectFailures(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = n
}

// begin performs the shared per-call checks: connection state, injected
// faults, and artificial latency.
func (p *Platform) begin(ctx context.Context) error {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return fmt.Errorf("%s: %w", p.typ, platform.ErrNotConnected)
	}
	if p.failures > 0 {
		p.failures--
		p.mu.Unlock()
		return fmt.Errorf("%s: %w", p.typ, platform.ErrUnavailable)
	}
	p.mu.Unlock()

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ExecuteQuery runs a read query of the form
//
//	SELECT * FROM <object> [WHERE field = 'value' [AND ...]]
//
// Bind placeholders (:name) in the WHERE clause resolve from params.
func (p *Platform) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*platform.Result, error) {
	start := time.Now()
	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	q, err := parseQuery(query, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.typ, err)
	}

	if res, ok := p.cachedResult(ctx, "query", q.objectType, query, params); ok {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	records, err := p.match(q.objectType, q.criteria)
	if err != nil {
		return nil, err
	}

	res := p.readResult(records, start)
	p.storeCached(ctx, "query", q.objectType, query, params, res)
	return res, nil
}

// SearchRecords returns records whose fields match all criteria values.
func (p *Platform) SearchRecords(ctx context.Context, objectType string, criteria map[string]any) (*platform.Result, error) {
	start := time.Now()
	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	if res, ok := p.cachedResult(ctx, "search", objectType, "", criteria); ok {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	records, err := p.match(objectType, criteria)
	if err != nil {
		return nil, err
	}

	res := p.readResult(records, start)
	p.storeCached(ctx, "search", objectType, "", criteria, res)
	return res, nil
}

// CreateRecord creates a record and returns its generated id.
func (p *Platform) CreateRecord(ctx context.Context, objectType string, data map[string]any) (*platform.Result, error) {
	start := time.Now()
	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	table, ok := p.records[objectType]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", p.typ, objectType, platform.ErrUnknownObjectType)
	}

	rec := make(platform.Record, len(data)+2)
	for k, v := range data {
		rec[k] = v
	}
	id := uuid.NewString()
	rec["id"] = id
	rec["created_at"] = time.Now().UTC().Format(time.RFC3339)
	table[id] = rec
	p.generation[objectType]++

	return &platform.Result{
		Success:       true,
		RecordID:      id,
		Data:          cloneRecord(rec),
		ExecutionTime: time.Since(start),
		Metadata:      map[string]any{"platform": string(p.typ), "object_type": objectType},
	}, nil
}

// UpdateRecord merges data into an existing record.
func (p *Platform) UpdateRecord(ctx context.Context, objectType, recordID string, data map[string]any) (*platform.Result, error) {
	start := time.Now()
	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	table, ok := p.records[objectType]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", p.typ, objectType, platform.ErrUnknownObjectType)
	}
	rec, ok := table[recordID]
	if !ok {
		return nil, fmt.Errorf("%s: %s/%s: %w", p.typ, objectType, recordID, platform.ErrRecordNotFound)
	}

	for k, v := range data {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	p.generation[objectType]++

	return &platform.Result{
		Success:       true,
		RecordID:      recordID,
		Data:          cloneRecord(rec),
		ExecutionTime: time.Since(start),
		Metadata:      map[string]any{"platform": string(p.typ), "object_type": objectType},
	}, nil
}

// DeleteRecord removes a record.
func (p *Platform) DeleteRecord(ctx context.Context, objectType, recordID string) (*platform.Result, error) {
	start := time.Now()
	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	table, ok := p.records[objectType]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", p.typ, objectType, platform.ErrUnknownObjectType)
	}
	if _, ok := table[recordID]; !ok {
		return nil, fmt.Errorf("%s: %s/%s: %w", p.typ, objectType, recordID, platform.ErrRecordNotFound)
	}
	delete(table, recordID)
	p.generation[objectType]++

	return &platform.Result{
		Success:       true,
		RecordID:      recordID,
		ExecutionTime: time.Since(start),
		Metadata:      map[string]any{"platform": string(p.typ), "object_type": objectType},
	}, nil
}

// match returns clones of the records of objectType matching all criteria.
func (p *Platform) match(objectType string, criteria map[string]any) ([]platform.Record, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	table, ok := p.records[objectType]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", p.typ, objectType, platform.ErrUnknownObjectType)
	}

	var out []platform.Record
	for _, rec := range table {
		if matches(rec, criteria) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// readResult assembles the uniform envelope for query/search responses.
// Data mirrors the first record so field-level output mappings work without
// indexing into the record list.
func (p *Platform) readResult(records []platform.Record, start time.Time) *platform.Result {
	res := &platform.Result{
		Success:       true,
		Records:       records,
		TotalCount:    len(records),
		ExecutionTime: time.Since(start),
		Metadata:      map[string]any{"platform": string(p.typ)},
	}
	if len(records) > 0 {
		res.Data = records[0]
	}
	return res
}

// matches reports whether every criteria entry equals the record's field.
// Values compare by string form so YAML-sourced numbers match store values.
func matches(rec platform.Record, criteria map[string]any) bool {
	for field, want := range criteria {
		got, ok := rec[field]
		if !ok || stringify(got) != stringify(want) {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func cloneRecord(r platform.Record) platform.Record {
	out := make(platform.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// cacheKey builds a generation-stamped key: bumping the object generation on
// writes invalidates all cached reads for that object type.
func (p *Platform) cacheKey(kind, objectType, query string, criteria map[string]any) string {
	p.mu.RLock()
	gen := p.generation[objectType]
	p.mu.RUnlock()
	crit, _ := json.Marshal(criteria)
	return fmt.Sprintf("%s:%s:%s:%d:%s:%s", p.typ, kind, objectType, gen, query, crit)
}

func (p *Platform) cachedResult(ctx context.Context, kind, objectType, query string, criteria map[string]any) (*platform.Result, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, ok, err := p.cache.Get(ctx, p.cacheKey(kind, objectType, query, criteria))
	if err != nil || !ok {
		return nil, false
	}
	var res platform.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	res.Metadata = map[string]any{"platform": string(p.typ), "cached": true}
	return &res, true
}

func (p *Platform) storeCached(ctx context.Context, kind, objectType, query string, criteria map[string]any, res *platform.Result) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, p.cacheKey(kind, objectType, query, criteria), data, p.cacheTTL); err != nil {
		slog.Debug("sandbox cache set failed", "platform", p.typ, "error", err)
	}
}
