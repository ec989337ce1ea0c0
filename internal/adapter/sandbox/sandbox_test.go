package sandbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

func testCreds() platform.Credentials {
	return platform.Credentials{APIKey: "test-key", Environment: "sandbox"}
}

func connected(t *testing.T, p *Platform) *Platform {
	t.Helper()
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return p
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   platform.Credentials
		wantErr bool
	}{
		{"sandbox environment", platform.Credentials{APIKey: "k", Environment: "sandbox"}, false},
		{"production environment", platform.Credentials{APIKey: "k", Environment: "production"}, false},
		{"empty environment", platform.Credentials{APIKey: "k"}, false},
		{"missing api key", platform.Credentials{Environment: "sandbox"}, true},
		{"unknown environment", platform.Credentials{APIKey: "k", Environment: "staging"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSalesforce(tt.creds)
			err := p.ValidateCredentials(context.Background())
			if tt.wantErr {
				if !errors.Is(err, platform.ErrInvalidCredentials) {
					t.Errorf("err = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Errorf("err = %v, want nil", err)
			}
		})
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	p := NewQuickBooks(testCreds())
	_, err := p.ExecuteQuery(context.Background(), "SELECT * FROM invoice", nil)
	if !errors.Is(err, platform.ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}

	connected(t, p)
	if _, err := p.ExecuteQuery(context.Background(), "SELECT * FROM invoice", nil); err != nil {
		t.Errorf("query after connect: %v", err)
	}

	if err := p.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	_, err = p.ExecuteQuery(context.Background(), "SELECT * FROM invoice", nil)
	if !errors.Is(err, platform.ErrNotConnected) {
		t.Errorf("err after disconnect = %v, want ErrNotConnected", err)
	}
}

func TestExecuteQuerySeededRecords(t *testing.T) {
	p := connected(t, NewQuickBooks(testCreds()))

	res, err := p.ExecuteQuery(context.Background(), "SELECT * FROM invoice WHERE status = 'open'", nil)
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if !res.Success || res.TotalCount != 1 {
		t.Fatalf("result = %+v, want one open invoice", res)
	}
	if res.Records[0]["doc_number"] != "INV-2024-001" {
		t.Errorf("doc_number = %v, want INV-2024-001", res.Records[0]["doc_number"])
	}
	if res.Data["doc_number"] != "INV-2024-001" {
		t.Errorf("Data should mirror the first record, got %v", res.Data)
	}
}

func TestExecuteQueryUnknownObject(t *testing.T) {
	p := connected(t, NewQuickBooks(testCreds()))
	_, err := p.ExecuteQuery(context.Background(), "SELECT * FROM ledger", nil)
	if !errors.Is(err, platform.ErrUnknownObjectType) {
		t.Errorf("err = %v, want ErrUnknownObjectType", err)
	}
}

func TestCreateUpdateDeleteRoundTrip(t *testing.T) {
	p := connected(t, NewSalesforce(testCreds()))
	ctx := context.Background()

	created, err := p.CreateRecord(ctx, "lead", map[string]any{"name": "Jordan Reyes", "company": "Initech LLC"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if created.RecordID == "" {
		t.Fatal("CreateRecord returned empty record id")
	}
	if created.Data["created_at"] == nil {
		t.Error("created record missing created_at")
	}

	updated, err := p.UpdateRecord(ctx, "lead", created.RecordID, map[string]any{"company": "Globex International", "id": "ignored"})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if updated.Data["company"] != "Globex International" {
		t.Errorf("company = %v after update", updated.Data["company"])
	}
	if updated.Data["id"] != created.RecordID {
		t.Errorf("id = %v, update must not overwrite it", updated.Data["id"])
	}

	search, err := p.SearchRecords(ctx, "lead", map[string]any{"name": "Jordan Reyes"})
	if err != nil {
		t.Fatalf("SearchRecords: %v", err)
	}
	if search.TotalCount != 1 {
		t.Fatalf("search found %d records, want 1", search.TotalCount)
	}

	if _, err := p.DeleteRecord(ctx, "lead", created.RecordID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	_, err = p.UpdateRecord(ctx, "lead", created.RecordID, map[string]any{"company": "x"})
	if !errors.Is(err, platform.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound after delete", err)
	}
}

func TestSearchNumericCriteriaMatchFloat(t *testing.T) {
	// YAML and JSON decode numbers as float64; seeded values are ints.
	p := connected(t, NewNetSuite(testCreds()))
	res, err := p.SearchRecords(context.Background(), "customer", map[string]any{"balance": float64(15000)})
	if err != nil {
		t.Fatalf("SearchRecords: %v", err)
	}
	if res.TotalCount != 1 || res.Data["company_name"] != "Acme Corporation" {
		t.Errorf("result = %+v, want the Acme customer", res)
	}
}

func TestInjectFailures(t *testing.T) {
	p := connected(t, NewServiceNow(testCreds()))
	p.InjectFailures(2)

	for i := 0; i < 2; i++ {
		if _, err := p.ExecuteQuery(context.Background(), "SELECT * FROM incident", nil); !errors.Is(err, platform.ErrUnavailable) {
			t.Fatalf("call %d err = %v, want ErrUnavailable", i, err)
		}
	}
	res, err := p.ExecuteQuery(context.Background(), "SELECT * FROM incident", nil)
	if err != nil {
		t.Fatalf("call after injected failures drained: %v", err)
	}
	if res.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", res.TotalCount)
	}
}

func TestLatencyRespectsContext(t *testing.T) {
	p := connected(t, NewQuickBooks(testCreds(), WithLatency(time.Minute)))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.ExecuteQuery(ctx, "SELECT * FROM invoice", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestInfoCountsRecords(t *testing.T) {
	p := NewQuickBooks(testCreds())
	info := p.Info()
	if info.Connected {
		t.Error("Connected = true before Connect")
	}
	if info.RecordCount != 6 {
		t.Errorf("RecordCount = %d, want 6 seeded records", info.RecordCount)
	}

	connected(t, p)
	info = p.Info()
	if !info.Connected || info.ConnectedAt.IsZero() {
		t.Errorf("info after connect = %+v", info)
	}
}

// memCache is a map-backed cache for exercising the read-through path.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestQueryCacheHit(t *testing.T) {
	mc := newMemCache()
	p := connected(t, NewQuickBooks(testCreds(), WithCache(mc, time.Minute)))
	ctx := context.Background()

	first, err := p.ExecuteQuery(ctx, "SELECT * FROM invoice WHERE status = 'paid'", nil)
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	second, err := p.ExecuteQuery(ctx, "SELECT * FROM invoice WHERE status = 'paid'", nil)
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if mc.hits != 1 {
		t.Errorf("cache hits = %d, want 1", mc.hits)
	}
	if second.Metadata["cached"] != true {
		t.Errorf("second result metadata = %v, want cached marker", second.Metadata)
	}
	if second.TotalCount != first.TotalCount {
		t.Errorf("cached TotalCount = %d, want %d", second.TotalCount, first.TotalCount)
	}
}

func TestWriteInvalidatesCachedReads(t *testing.T) {
	mc := newMemCache()
	p := connected(t, NewQuickBooks(testCreds(), WithCache(mc, time.Minute)))
	ctx := context.Background()

	before, err := p.SearchRecords(ctx, "invoice", map[string]any{"status": "open"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if before.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", before.TotalCount)
	}

	if _, err := p.CreateRecord(ctx, "invoice", map[string]any{"doc_number": "INV-2024-003", "status": "open"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The write bumps the object generation, so the stale entry is unreachable.
	after, err := p.SearchRecords(ctx, "invoice", map[string]any{"status": "open"})
	if err != nil {
		t.Fatalf("search after write: %v", err)
	}
	if after.TotalCount != 2 {
		t.Errorf("TotalCount after create = %d, want 2", after.TotalCount)
	}
}
