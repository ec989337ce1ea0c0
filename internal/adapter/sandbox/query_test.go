package sandbox

import (
	"errors"
	"testing"
)

func TestParseQueryNoWhere(t *testing.T) {
	q, err := parseQuery("SELECT * FROM invoice", nil)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if q.objectType != "invoice" {
		t.Errorf("objectType = %q, want invoice", q.objectType)
	}
	if len(q.criteria) != 0 {
		t.Errorf("criteria = %v, want empty", q.criteria)
	}
}

func TestParseQuerySingleCondition(t *testing.T) {
	q, err := parseQuery("SELECT * FROM invoice WHERE status = 'open'", nil)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if q.criteria["status"] != "open" {
		t.Errorf("criteria[status] = %v, want open", q.criteria["status"])
	}
}

func TestParseQueryQuotedValueWithSpaces(t *testing.T) {
	q, err := parseQuery("SELECT * FROM customer WHERE display_name = 'Acme Corporation'", nil)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if q.criteria["display_name"] != "Acme Corporation" {
		t.Errorf("criteria[display_name] = %v, want Acme Corporation", q.criteria["display_name"])
	}
}

func TestParseQueryMultipleConditions(t *testing.T) {
	q, err := parseQuery("SELECT * FROM incident WHERE escalation = 'high' AND state = 'in_progress'", nil)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if len(q.criteria) != 2 {
		t.Fatalf("criteria = %v, want 2 entries", q.criteria)
	}
	if q.criteria["escalation"] != "high" || q.criteria["state"] != "in_progress" {
		t.Errorf("criteria = %v", q.criteria)
	}
}

func TestParseQueryBindParameter(t *testing.T) {
	q, err := parseQuery("SELECT * FROM opportunity WHERE invoice_reference = :ref", map[string]any{"ref": "INV-2024-002"})
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if q.criteria["invoice_reference"] != "INV-2024-002" {
		t.Errorf("criteria[invoice_reference] = %v", q.criteria["invoice_reference"])
	}
}

func TestParseQueryUnboundParameter(t *testing.T) {
	_, err := parseQuery("SELECT * FROM opportunity WHERE stage = :stage", nil)
	if !errors.Is(err, ErrBadQuery) {
		t.Errorf("err = %v, want ErrBadQuery", err)
	}
}

func TestParseQueryCaseInsensitiveKeywords(t *testing.T) {
	q, err := parseQuery("select * from Invoice where Status = 'paid'", nil)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if q.objectType != "invoice" {
		t.Errorf("objectType = %q, want invoice", q.objectType)
	}
	if q.criteria["status"] != "paid" {
		t.Errorf("criteria[status] = %v, want paid", q.criteria["status"])
	}
}

func TestParseQueryMalformed(t *testing.T) {
	bad := []string{
		"",
		"SELECT id FROM invoice",
		"DELETE * FROM invoice",
		"SELECT * FROM invoice LIMIT 5",
		"SELECT * FROM invoice WHERE status",
		"SELECT * FROM invoice WHERE status = 'open' OR balance = 0",
		"SELECT * FROM invoice WHERE name = 'Acme",
	}
	for _, query := range bad {
		if _, err := parseQuery(query, nil); !errors.Is(err, ErrBadQuery) {
			t.Errorf("parseQuery(%q) err = %v, want ErrBadQuery", query, err)
		}
	}
}
