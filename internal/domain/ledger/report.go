package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/billing"
)

// BalanceSummary is the signed sum of a set of operations, split by
// direction, plus the number of rows that produced it
type BalanceSummary struct {
	TotalIn        decimal.Decimal `json:"total_in"`
	TotalOut       decimal.Decimal `json:"total_out"`
	Balance        decimal.Decimal `json:"balance"`
	OperationCount int64           `json:"operation_count"`
}

// Report aggregates caisse activity over a period
type Report struct {
	From       time.Time                               `json:"from"`
	To         time.Time                               `json:"to"`
	Summary    BalanceSummary                          `json:"summary"`
	ByType     map[OperationType]decimal.Decimal       `json:"by_type"`
	ByMethod   map[billing.PaymentMethod]BalanceSummary `json:"by_method"`
	Operations int                                     `json:"operations"`
}

// Summarize computes the signed balance of the given operations. Reversal
// pairs cancel out arithmetically: the original and its compensation carry
// opposite signs, so no row ever needs to be excluded or mutated.
func Summarize(ops []*Operation) BalanceSummary {
	s := BalanceSummary{
		TotalIn:  decimal.Zero,
		TotalOut: decimal.Zero,
		Balance:  decimal.Zero,
	}
	for _, op := range ops {
		if op.Direction() == DirectionIn {
			s.TotalIn = s.TotalIn.Add(op.Amount)
		} else {
			s.TotalOut = s.TotalOut.Add(op.Amount)
		}
		s.OperationCount++
	}
	s.Balance = s.TotalIn.Sub(s.TotalOut)
	return s
}

// BuildReport computes the full period report from the given operations.
// Pure function over its inputs; the caller is responsible for loading the
// right window.
func BuildReport(from, to time.Time, ops []*Operation) Report {
	r := Report{
		From:       from,
		To:         to,
		Summary:    Summarize(ops),
		ByType:     make(map[OperationType]decimal.Decimal),
		ByMethod:   make(map[billing.PaymentMethod]BalanceSummary),
		Operations: len(ops),
	}

	for _, op := range ops {
		prev, ok := r.ByType[op.Type]
		if !ok {
			prev = decimal.Zero
		}
		r.ByType[op.Type] = prev.Add(op.Amount)

		m := r.ByMethod[op.Method]
		if op.Direction() == DirectionIn {
			m.TotalIn = m.TotalIn.Add(op.Amount)
		} else {
			m.TotalOut = m.TotalOut.Add(op.Amount)
		}
		m.OperationCount++
		m.Balance = m.TotalIn.Sub(m.TotalOut)
		r.ByMethod[op.Method] = m
	}

	return r
}
