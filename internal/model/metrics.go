package model

import "github.com/shopspring/decimal"

// DashboardMetrics is the read-only rollup served to the dashboard.
// Revenue counts every non-cancelled invoice; pending is what remains
// unpaid on issued/partial invoices.
type DashboardMetrics struct {
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	PendingReceivables   decimal.Decimal `json:"pending_receivables"`
	TotalVendorCost      decimal.Decimal `json:"total_vendor_cost"`
	CustomerDepositTotal decimal.Decimal `json:"customer_deposit_total"`
	AgentCreditTotal     decimal.Decimal `json:"agent_credit_total"`
	AgentDepositTotal    decimal.Decimal `json:"agent_deposit_total"`
	VendorCreditTotal    decimal.Decimal `json:"vendor_credit_total"`
	VendorDepositTotal   decimal.Decimal `json:"vendor_deposit_total"`
	CustomerCount        int64           `json:"customer_count"`
	AgentCount           int64           `json:"agent_count"`
	VendorCount          int64           `json:"vendor_count"`
	InvoiceCount         int64           `json:"invoice_count"`
	TicketCount          int64           `json:"ticket_count"`
}
