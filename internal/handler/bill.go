package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ryokou-app/backend/internal/domain"
)

// addBillRequest is the body of POST /trips/{tripID}/bills.
type addBillRequest struct {
	Description     string          `json:"description" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" validate:"required"`
	Date            string          `json:"date"`
	PaidBy          string          `json:"paidBy" validate:"required"`
	InvolvedMembers []string        `json:"involvedMembers" validate:"required,min=1"`
}

// addBill handles POST /trips/{tripID}/bills.
func (s *Server) addBill(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req addBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondBadRequest(w, "description, currency, paidBy and involvedMembers are required")
		return
	}

	trip, err := s.ledger.AddBill(r.Context(), id, domain.Bill{
		Description:     req.Description,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Date:            req.Date,
		PaidBy:          req.PaidBy,
		InvolvedMembers: req.InvolvedMembers,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// settlementCSVHeaders defines the column names written as the first row of
// a settlements CSV export.
var settlementCSVHeaders = []string{
	"debtor", "debtor_name", "creditor", "creditor_name",
	"amount", "currency", "description", "date",
}

// getSettlements handles GET /trips/{tripID}/settlements.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) getSettlements(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	settlements, err := s.ledger.Settlements(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeSettlementsCSV(w, settlements)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}

// writeSettlementsCSV encodes settlements as CSV. Amounts are rounded to two
// decimal places for the export — spreadsheets don't want repeating decimals.
func writeSettlementsCSV(w http.ResponseWriter, settlements []domain.Settlement) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(settlementCSVHeaders)
	for _, st := range settlements {
		//nolint:errcheck
		cw.Write([]string{
			st.Debtor,
			st.DebtorName,
			st.Creditor,
			st.CreditorName,
			st.Amount.StringFixed(2),
			st.Currency,
			st.Description,
			st.Date,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", `attachment; filename="settlements.csv"`)
	_, _ = w.Write(buf.Bytes())
}
