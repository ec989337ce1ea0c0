package sandbox

import "github.com/enterprisearena/arena/internal/domain/platform"

// Seed fixtures for the four simulated platforms. Ids are stable so
// benchmark tasks can reference them; records created at runtime get
// generated ids.

// NewSalesforce returns a sandbox CRM seeded with accounts, opportunities,
// cases and leads.
func NewSalesforce(creds platform.Credentials, opts ...Option) *Platform {
	seed := map[string][]platform.Record{
		"account": {
			{"id": "001-ACME", "name": "Acme Corporation", "industry": "Manufacturing", "annual_revenue": 25000000},
			{"id": "001-GLOBX", "name": "Globex International", "industry": "Technology", "annual_revenue": 74000000},
			{"id": "001-INIT", "name": "Initech LLC", "industry": "Software", "annual_revenue": 8000000},
		},
		"opportunity": {
			{"id": "006-0001", "account_name": "Globex International", "amount": 120000, "stage": "Negotiation", "invoice_reference": "INV-2024-002"},
		},
		"case":    {},
		"lead":    {},
		"contact": {},
	}
	return New(platform.TypeSalesforce, creds, seed, opts...)
}

// NewServiceNow returns a sandbox ITSM seeded with incidents and requests.
func NewServiceNow(creds platform.Credentials, opts ...Option) *Platform {
	seed := map[string][]platform.Record{
		"incident": {
			{"id": "INC-9001", "number": "INC0010001", "short_description": "Order portal returns 500 on checkout", "escalation": "high", "state": "in_progress", "caller": "Acme Corporation"},
			{"id": "INC-9002", "number": "INC0010002", "short_description": "VPN drops intermittently", "escalation": "low", "state": "new", "caller": "Initech LLC"},
		},
		"request": {
			{"id": "REQ-3001", "number": "REQ0004001", "short_description": "Provision 20 developer laptops", "state": "open", "requested_for": "Globex International"},
		},
		"change": {},
	}
	return New(platform.TypeServiceNow, creds, seed, opts...)
}

// NewNetSuite returns a sandbox ERP seeded with customers and sales orders.
func NewNetSuite(creds platform.Credentials, opts ...Option) *Platform {
	seed := map[string][]platform.Record{
		"customer": {
			{"id": "CUST-100", "company_name": "Acme Corporation", "balance": 15000, "terms": "Net 30"},
			{"id": "CUST-101", "company_name": "Globex International", "balance": 0, "terms": "Net 45"},
		},
		"salesorder": {
			{"id": "SO-5001", "customer": "Acme Corporation", "total": 42000, "status": "pending_fulfillment"},
		},
		"vendor": {},
	}
	return New(platform.TypeNetSuite, creds, seed, opts...)
}

// NewQuickBooks returns a sandbox accounting platform seeded with customers
// and invoices, including the fixtures the builtin financial-integration
// tasks query for.
func NewQuickBooks(creds platform.Credentials, opts ...Option) *Platform {
	seed := map[string][]platform.Record{
		"customer": {
			{"id": "QB-C-1", "display_name": "Acme Corporation", "balance": 1500},
			{"id": "QB-C-2", "display_name": "Globex International", "balance": 0},
			{"id": "QB-C-3", "display_name": "Initech LLC", "balance": 275},
		},
		"invoice": {
			{"id": "QB-INV-1", "doc_number": "INV-2024-001", "customer_name": "Acme Corporation", "total_amount": 1500, "balance": 1500, "status": "open"},
			{"id": "QB-INV-2", "doc_number": "INV-2024-002", "customer_name": "Globex International", "total_amount": 12000, "balance": 0, "status": "paid"},
		},
		"payment": {
			{"id": "QB-PAY-1", "invoice": "INV-2024-002", "amount": 12000, "method": "wire"},
		},
	}
	return New(platform.TypeQuickBooks, creds, seed, opts...)
}
