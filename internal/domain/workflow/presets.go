package workflow

import (
	"time"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

// BuiltinTasks returns the built-in cross-platform benchmark tasks.
func BuiltinTasks() []Task {
	return []Task{
		invoiceToOpportunity(),
		paymentTracking(),
		incidentToCase(),
	}
}

// invoiceToOpportunity is the financial-integration chain: fetch an invoice
// from QuickBooks, create a matching opportunity in Salesforce, then link
// the two records.
func invoiceToOpportunity() Task {
	return Task{
		ID:          "invoice_to_opportunity",
		Name:        "Invoice to Opportunity",
		Description: "Extract invoice data from QuickBooks, create a corresponding Salesforce opportunity, and link them.",
		Category:    "financial_integration",
		Complexity:  "medium",
		Platforms:   []platform.Type{platform.TypeQuickBooks, platform.TypeSalesforce},
		Timeout:     Duration(2 * time.Minute),
		Steps: []Step{
			{
				ID:       "fetch_invoice",
				Name:     "Fetch invoice",
				Platform: platform.TypeQuickBooks,
				Action:   platform.ActionQuery,
				Parameters: map[string]any{
					"query": "SELECT * FROM invoice WHERE doc_number = 'INV-2024-001'",
				},
				OutputMapping: map[string]string{
					"customer_name": "invoice_customer",
					"total_amount":  "invoice_amount",
					"doc_number":    "invoice_number",
				},
				ValidationRules: []ValidationRule{
					{Type: RuleSuccessRequired},
					{Type: RuleDataRequired},
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyRetry, MaxRetries: 2, RetryDelay: Duration(time.Second), OnExhausted: StrategyFail},
			},
			{
				ID:       "create_opportunity",
				Name:     "Create opportunity",
				Platform: platform.TypeSalesforce,
				Action:   platform.ActionCreate,
				Parameters: map[string]any{
					"object_type": "opportunity",
					"data": map[string]any{
						"stage": "Proposal",
					},
				},
				InputMapping: map[string]string{
					"invoice_customer": "account_name",
					"invoice_amount":   "amount",
				},
				OutputMapping: map[string]string{
					"record_id": "opportunity_id",
				},
				ValidationRules: []ValidationRule{
					{Type: RuleSuccessRequired},
					{Type: RuleFieldRequired, Field: "record_id"},
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyFail},
			},
			{
				ID:       "link_records",
				Name:     "Link invoice reference",
				Platform: platform.TypeSalesforce,
				Action:   platform.ActionUpdate,
				Parameters: map[string]any{
					"object_type": "opportunity",
				},
				InputMapping: map[string]string{
					"opportunity_id": "record_id",
					"invoice_number": "invoice_reference",
				},
				ValidationRules: []ValidationRule{
					{Type: RuleSuccessRequired},
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyContinue},
			},
		},
		Dependencies: map[string][]string{
			"create_opportunity": {"fetch_invoice"},
			"link_records":       {"create_opportunity"},
		},
	}
}

// paymentTracking checks invoice payment status and updates the linked
// opportunity stage. The lookup step skips on failure so the update runs
// with literals when no linkage exists yet.
func paymentTracking() Task {
	return Task{
		ID:          "payment_tracking",
		Name:        "Payment Tracking",
		Description: "Check invoice payment status in QuickBooks and update the corresponding Salesforce opportunity stage.",
		Category:    "financial_integration",
		Complexity:  "medium",
		Platforms:   []platform.Type{platform.TypeQuickBooks, platform.TypeSalesforce},
		Timeout:     Duration(2 * time.Minute),
		Steps: []Step{
			{
				ID:       "check_payment",
				Name:     "Check payment status",
				Platform: platform.TypeQuickBooks,
				Action:   platform.ActionQuery,
				Parameters: map[string]any{
					"query": "SELECT * FROM invoice WHERE doc_number = 'INV-2024-002'",
				},
				OutputMapping: map[string]string{
					"balance":    "invoice_balance",
					"doc_number": "invoice_number",
				},
				ValidationRules: []ValidationRule{{Type: RuleSuccessRequired}},
				ErrorHandling:   ErrorHandling{Strategy: StrategyFail},
			},
			{
				ID:       "find_opportunity",
				Name:     "Find linked opportunity",
				Platform: platform.TypeSalesforce,
				Action:   platform.ActionSearch,
				Parameters: map[string]any{
					"object_type": "opportunity",
				},
				InputMapping: map[string]string{
					"invoice_number": "invoice_reference",
				},
				OutputMapping: map[string]string{
					"record_id": "opportunity_id",
				},
				ValidationRules: []ValidationRule{{Type: RuleDataRequired}},
				ErrorHandling:   ErrorHandling{Strategy: StrategySkip},
			},
			{
				ID:       "update_stage",
				Name:     "Update opportunity stage",
				Platform: platform.TypeSalesforce,
				Action:   platform.ActionUpdate,
				Parameters: map[string]any{
					"object_type": "opportunity",
					"data": map[string]any{
						"stage": "Closed Won",
					},
				},
				InputMapping: map[string]string{
					"opportunity_id": "record_id",
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyContinue},
			},
		},
		Dependencies: map[string][]string{
			"find_opportunity": {"check_payment"},
			"update_stage":     {"find_opportunity"},
		},
	}
}

// incidentToCase is the customer-service chain: fetch an escalated incident
// from ServiceNow, create a Salesforce case, and link the records.
func incidentToCase() Task {
	return Task{
		ID:          "incident_to_case",
		Name:        "Incident to Case",
		Description: "Fetch an escalated ServiceNow incident and create a linked Salesforce case.",
		Category:    "customer_service",
		Complexity:  "medium",
		Platforms:   []platform.Type{platform.TypeServiceNow, platform.TypeSalesforce},
		Timeout:     Duration(2 * time.Minute),
		Steps: []Step{
			{
				ID:       "fetch_incident",
				Name:     "Fetch incident",
				Platform: platform.TypeServiceNow,
				Action:   platform.ActionSearch,
				Parameters: map[string]any{
					"object_type": "incident",
					"criteria": map[string]any{
						"escalation": "high",
					},
				},
				OutputMapping: map[string]string{
					"id":                "incident_id",
					"number":            "incident_number",
					"short_description": "incident_summary",
				},
				ValidationRules: []ValidationRule{
					{Type: RuleSuccessRequired},
					{Type: RuleDataRequired},
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyRetry, MaxRetries: 3, RetryDelay: Duration(time.Second), OnExhausted: StrategyFail},
			},
			{
				ID:       "create_case",
				Name:     "Create case",
				Platform: platform.TypeSalesforce,
				Action:   platform.ActionCreate,
				Parameters: map[string]any{
					"object_type": "case",
					"data": map[string]any{
						"origin":   "servicenow",
						"priority": "High",
					},
				},
				InputMapping: map[string]string{
					"incident_summary": "subject",
					"incident_number":  "external_reference",
				},
				OutputMapping: map[string]string{
					"record_id": "case_id",
				},
				ValidationRules: []ValidationRule{
					{Type: RuleSuccessRequired},
					{Type: RuleFieldRequired, Field: "record_id"},
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyFail},
			},
			{
				ID:       "link_incident",
				Name:     "Annotate incident",
				Platform: platform.TypeServiceNow,
				Action:   platform.ActionUpdate,
				Parameters: map[string]any{
					"object_type": "incident",
				},
				InputMapping: map[string]string{
					"incident_id": "record_id",
					"case_id":     "crm_case_id",
				},
				ErrorHandling: ErrorHandling{Strategy: StrategyContinue},
			},
		},
		Dependencies: map[string][]string{
			"create_case":   {"fetch_incident"},
			"link_incident": {"create_case", "fetch_incident"},
		},
	}
}
