package domain

import "errors"

// Parse-family sentinel errors, returned by the parse step and wrapped with
// positional context. Only their identity (via errors.Is) is load-bearing;
// message text is for logs, not for the output schema.
var (
	ErrParseJSON             = errors.New("domain: malformed json")
	ErrSchemaFieldMissing    = errors.New("domain: required field missing")
	ErrInvalidID             = errors.New("domain: invalid id")
	ErrInvalidCustomerID     = errors.New("domain: invalid customer_id")
	ErrInvalidTime           = errors.New("domain: invalid time")
	ErrInvalidAmountFormat   = errors.New("domain: invalid amount format")
)

// ReasonCode is the stable internal reason-code contract (spec.md §7). It
// never appears in OutputRow.
type ReasonCode string

const (
	ReasonParseJSON           ReasonCode = "PARSE_JSON"
	ReasonSchemaFieldMissing  ReasonCode = "SCHEMA_FIELD_MISSING"
	ReasonInvalidID           ReasonCode = "INVALID_ID"
	ReasonInvalidCustomerID   ReasonCode = "INVALID_CUSTOMER_ID"
	ReasonInvalidTime         ReasonCode = "INVALID_TIME"
	ReasonInvalidAmountFormat ReasonCode = "INVALID_AMOUNT_FORMAT"

	ReasonIDDuplicateReplay    ReasonCode = "ID_DUPLICATE_REPLAY"
	ReasonIDDuplicateConflict ReasonCode = "ID_DUPLICATE_CONFLICT"
	ReasonDailyAttemptLimit    ReasonCode = "DAILY_ATTEMPT_LIMIT"
	ReasonPrimeAmountCap       ReasonCode = "PRIME_AMOUNT_CAP"
	ReasonPrimeDailyGlobalLimit ReasonCode = "PRIME_DAILY_GLOBAL_LIMIT"
	ReasonDailyAmountLimit     ReasonCode = "DAILY_AMOUNT_LIMIT"
	ReasonWeeklyAmountLimit    ReasonCode = "WEEKLY_AMOUNT_LIMIT"
)

// reasonForParseError maps a parse sentinel to its stable reason code.
func reasonForParseError(err error) ReasonCode {
	switch {
	case errors.Is(err, ErrParseJSON):
		return ReasonParseJSON
	case errors.Is(err, ErrSchemaFieldMissing):
		return ReasonSchemaFieldMissing
	case errors.Is(err, ErrInvalidID):
		return ReasonInvalidID
	case errors.Is(err, ErrInvalidCustomerID):
		return ReasonInvalidCustomerID
	case errors.Is(err, ErrInvalidTime):
		return ReasonInvalidTime
	case errors.Is(err, ErrInvalidAmountFormat):
		return ReasonInvalidAmountFormat
	default:
		return ReasonParseJSON
	}
}

// ReasonForParseError exposes the mapping for callers outside this package
// (the parse step).
func ReasonForParseError(err error) ReasonCode {
	return reasonForParseError(err)
}
