package payment

import (
	"encoding/json"
	"fmt"
)

// FromDocument projects a loosely-typed stored document into a Payment.
// PRE: none; doc may be nil or carry arbitrary shapes
// POST: Every field is set, absent or mistyped values take their defaults
// INVARIANT: Pure and total; unknown extra fields are ignored
func FromDocument(id string, doc map[string]any) Payment {
	p := Payment{
		ID:               id,
		FullName:         text(doc[FieldFullName]),
		Email:            text(doc[FieldEmail]),
		ContactNumber:    text(doc[FieldContactNumber]),
		ReferenceNumber:  text(doc[FieldReferenceNumber]),
		Amount:           number(doc[FieldAmount]),
		PaymentMethod:    text(doc[FieldPaymentMethod]),
		Plan:             text(doc[FieldPlan]),
		Status:           Status(text(doc[FieldStatus])),
		CreatedAt:        doc[FieldCreatedAt],
		ExpiresAt:        doc[FieldExpiresAt],
		DurationDays:     int(number(doc[FieldDurationDays])),
		EmergencyContact: emergencyContact(doc[FieldEmergencyContact]),
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if p.DurationDays == 0 {
		p.DurationDays = DefaultDurationDays
	}
	return p
}

// text keeps strings and renders other scalars; absent becomes "".
func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64, int, int64, bool:
		return fmt.Sprint(s)
	}
	return ""
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func emergencyContact(v any) *EmergencyContact {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &EmergencyContact{
		Person:        text(m["person"]),
		ContactNumber: text(m["contactNumber"]),
		Address:       text(m["address"]),
	}
}
