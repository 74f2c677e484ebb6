package ratetable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedPayload is returned when a rates payload is neither an envelope
// with a data array nor a bare array.
var ErrMalformedPayload = errors.New("malformed rates payload")

// RateRecord is one source->target pair as delivered by the backend. It is
// never modified after it has been received.
type RateRecord struct {
	FromCurrency string
	ToCurrency   string
	// ExchangeRate converts one unit of FromCurrency into ToCurrency. Missing
	// or non-numeric rates decode as zero.
	ExchangeRate decimal.Decimal
	// RawRate is the rate exactly as it appeared in the payload.
	RawRate string
	// Date is an ISO date or date-time, possibly empty.
	Date string
}

type wireRecord struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	ExchangeRate json.RawMessage `json:"exchange_rate"`
	Date         string          `json:"date"`
	CreatedAt    string          `json:"created_at,omitempty"`
}

// UnmarshalJSON decodes a record leniently: a bad rate becomes zero and a
// missing date falls back to created_at.
func (r *RateRecord) UnmarshalJSON(b []byte) error {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.FromCurrency = w.FromCurrency
	r.ToCurrency = w.ToCurrency
	r.Date = w.Date
	if r.Date == "" {
		r.Date = w.CreatedAt
	}
	r.RawRate, r.ExchangeRate = decodeRate(w.ExchangeRate)
	return nil
}

// MarshalJSON writes the record in the same wire shape it is read from.
func (r RateRecord) MarshalJSON() ([]byte, error) {
	rate := json.RawMessage("null")
	if r.RawRate != "" {
		rate = json.RawMessage(r.ExchangeRate.String())
	}
	return json.Marshal(wireRecord{
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		ExchangeRate: rate,
		Date:         r.Date,
	})
}

func decodeRate(raw json.RawMessage) (string, decimal.Decimal) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", decimal.Zero
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return text, decimal.Zero
		}
		text = strings.TrimSpace(s)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return text, decimal.Zero
	}
	return text, finite(d)
}

// DecodeRecords accepts either {"data": [...]} or a bare array of records.
func DecodeRecords(body []byte) ([]RateRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	switch body[0] {
	case '[':
		var list []RateRecord
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return list, nil
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return []RateRecord{}, nil
		}
		if data[0] != '[' {
			return nil, fmt.Errorf("%w: data is not an array", ErrMalformedPayload)
		}
		var list []RateRecord
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformedPayload, body[0])
	}
}
