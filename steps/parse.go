// Package steps implements the concrete pipeline stages that adjudicate a
// fund-load attempt stream: parse, timekeys, idempotencygate, features,
// policy, windowupdate, format, and write (spec.md §4.2–§4.8).
package steps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"loadshield/domain"
	"loadshield/pipeline"
)

type rawRecord struct {
	ID         json.RawMessage `json:"id"`
	CustomerID json.RawMessage `json:"customer_id"`
	LoadAmount *string         `json:"load_amount"`
	Time       *string         `json:"time"`
}

// Parse implements the parse step (spec.md §4.2). Its input is always a
// domain.RawLine; its output is always exactly one message: a
// domain.LoadAttempt on success, or a declined domain.Decision carrying
// whatever identity was recoverable.
type Parse struct{}

// Name implements pipeline.Step.
func (Parse) Name() string { return "parse" }

// Run implements pipeline.Step.
func (Parse) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	line, ok := msg.(domain.RawLine)
	if !ok {
		// Already-terminal messages (declined decisions from an earlier
		// abort path) never re-enter parse; nothing upstream produces them.
		return pipeline.One(msg), nil
	}

	var rec rawRecord
	if err := json.Unmarshal(bytes.TrimSpace(line.Text), &rec); err != nil {
		ctx.AddError("parse: invalid json")
		return pipeline.One(domain.DeclineParse(line.LineNo, "", "", domain.ReasonParseJSON)), nil
	}

	if rec.ID == nil || rec.CustomerID == nil || rec.LoadAmount == nil || rec.Time == nil {
		knownID, _ := normalizeDigitField(rec.ID)
		knownCustomerID, _ := normalizeDigitField(rec.CustomerID)
		return pipeline.One(domain.DeclineParse(line.LineNo, knownID, knownCustomerID, domain.ReasonSchemaFieldMissing)), nil
	}

	id, idErr := normalizeDigitField(rec.ID)
	if idErr != nil {
		knownCustomerID, _ := normalizeDigitField(rec.CustomerID)
		return pipeline.One(domain.DeclineParse(line.LineNo, "", knownCustomerID, domain.ReasonInvalidID)), nil
	}
	customerID, custErr := normalizeDigitField(rec.CustomerID)
	if custErr != nil {
		return pipeline.One(domain.DeclineParse(line.LineNo, id, "", domain.ReasonInvalidCustomerID)), nil
	}

	ts, tsErr := domain.ParseInstant(strings.TrimSpace(*rec.Time))
	if tsErr != nil {
		return pipeline.One(domain.DeclineParse(line.LineNo, id, customerID, domain.ReasonInvalidTime)), nil
	}

	amount, amtErr := domain.ParseMoney(*rec.LoadAmount)
	if amtErr != nil {
		return pipeline.One(domain.DeclineParse(line.LineNo, id, customerID, domain.ReasonInvalidAmountFormat)), nil
	}
	if amount.Sign() < 0 {
		return pipeline.One(domain.DeclineParse(line.LineNo, id, customerID, domain.ReasonInvalidAmountFormat)), nil
	}

	attempt := domain.LoadAttempt{
		LineNo:     line.LineNo,
		ID:         id,
		CustomerID: customerID,
		Amount:     amount,
		Ts:         ts,
	}
	return pipeline.One(attempt), nil
}

// normalizeDigitField accepts a JSON string or number and requires the
// normalized text to match ^[0-9]+$ (spec.md §4.2).
func normalizeDigitField(raw json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return validateDigits(asString)
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return validateDigits(asNumber.String())
	}
	return "", fmt.Errorf("unsupported id encoding")
}

func validateDigits(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("non-digit identifier %q", trimmed)
		}
	}
	return trimmed, nil
}
