// Package metrics exposes Prometheus collectors for the ledger and the loan
// scheduler. Collectors are package-level and registered on the default
// registry via promauto; cmd/server serves them over promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DepositsTotal counts successful deposits.
var DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bankcore_deposits_total",
	Help: "Successful deposit operations.",
})

// WithdrawalsTotal counts successful withdrawals.
var WithdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bankcore_withdrawals_total",
	Help: "Successful withdrawal operations.",
})

// TransfersTotal counts successful transfers.
var TransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bankcore_transfers_total",
	Help: "Successfully committed transfers.",
})

// LedgerFailuresTotal counts failed ledger operations by operation name.
var LedgerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bankcore_ledger_failures_total",
	Help: "Failed ledger operations (expected errors included).",
}, []string{"operation"})

// LoanSubmissionsTotal counts submitted loan requests.
var LoanSubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bankcore_loan_submissions_total",
	Help: "Loan requests accepted into the pending queue.",
})

// LoansApprovedTotal counts approved loan requests.
var LoansApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bankcore_loans_approved_total",
	Help: "Loan requests approved and credited.",
})

// LoanQueueDepth tracks the number of pending loan requests.
var LoanQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "bankcore_loan_queue_depth",
	Help: "Current number of pending loan requests.",
})
