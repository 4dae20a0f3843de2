package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bill is a single shared expense. Amounts are decimals, not floats, so
// equal splits stay exact (300/3 is exactly 100, never 99.999…).
//
// Bills are append-only: once added to a trip they are never edited or
// removed, so the ledger doubles as a history of who paid what.
type Bill struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
	PaidBy          string          `json:"paidBy"`
	InvolvedMembers []string        `json:"involvedMembers"`
}

// Settlement is one payment instruction derived from a bill: Debtor owes
// Amount of Currency to Creditor. Settlements are per-bill — the ledger
// never nets balances across bills or members.
type Settlement struct {
	Debtor       string          `json:"debtor"`
	DebtorName   string          `json:"debtorName"`
	Creditor     string          `json:"creditor"`
	CreditorName string          `json:"creditorName"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
}

// AddBill returns a copy of t with the bill appended to the ledger.
// Returns ErrValidation (and leaves t unchanged) unless the bill has a
// description, a positive amount, a payer, and at least one involved member.
func AddBill(t Trip, bill Bill) (Trip, error) {
	if bill.Description == "" {
		return Trip{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !bill.Amount.IsPositive() {
		return Trip{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if bill.PaidBy == "" {
		return Trip{}, fmt.Errorf("%w: paidBy is required", ErrValidation)
	}
	if len(bill.InvolvedMembers) == 0 {
		return Trip{}, fmt.Errorf("%w: at least one involved member is required", ErrValidation)
	}

	bills := make([]Bill, len(t.Bills), len(t.Bills)+1)
	copy(bills, t.Bills)
	t.Bills = append(bills, bill)
	return t, nil
}

// SettlementPerPerson returns the equal-split share of the bill: amount
// divided by the number of involved members, unrounded. Rounding to the
// currency's minor unit is a display concern, not a ledger concern.
// A bill with no involved members (impossible via AddBill) yields zero.
func (b Bill) SettlementPerPerson() decimal.Decimal {
	if len(b.InvolvedMembers) == 0 {
		return decimal.Zero
	}
	return b.Amount.Div(decimal.NewFromInt(int64(len(b.InvolvedMembers))))
}

// Settlements expands every bill on the trip into per-member payment
// instructions, with display names resolved against the member directory.
// Order follows the ledger: bills in insertion order, then involved members
// in the order they appear on the bill.
func (t Trip) Settlements() []Settlement {
	out := []Settlement{}
	for _, bill := range t.Bills {
		share := bill.SettlementPerPerson()
		for _, email := range bill.InvolvedMembers {
			out = append(out, Settlement{
				Debtor:       email,
				DebtorName:   t.DisplayName(email),
				Creditor:     bill.PaidBy,
				CreditorName: t.DisplayName(bill.PaidBy),
				Amount:       share,
				Currency:     bill.Currency,
				Description:  bill.Description,
				Date:         bill.Date,
			})
		}
	}
	return out
}
