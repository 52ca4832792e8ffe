// Package prom registers the application's prometheus collectors.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvoicesCreated counts successfully issued invoices
	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbill_invoices_created_total",
		Help: "Number of invoices issued.",
	})

	// TicketsCreated counts successfully issued tickets
	TicketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbill_tickets_created_total",
		Help: "Number of tickets issued.",
	})

	// LedgerMutations counts applied balance mutations by party and direction
	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelbill_ledger_mutations_total",
		Help: "Number of balance mutations applied.",
	}, []string{"party_type", "direction"})
)
