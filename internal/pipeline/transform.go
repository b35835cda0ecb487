package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// transformExtractorOutput converts the extractor's data object into
// transactions stamped with uploadedAt.
func transformExtractorOutput(rawOutput map[string]interface{}, uploadedAt time.Time) ([]domain.Transaction, error) {
	// Expect top-level: { "transactions": [...] }
	txAny, ok := rawOutput["transactions"]
	if !ok {
		return nil, fmt.Errorf("transformExtractorOutput: missing 'transactions' key in extractor output")
	}
	if txAny == nil {
		return nil, nil
	}

	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("transformExtractorOutput: 'transactions' is %T, want []interface{}", txAny)
	}

	result := make([]domain.Transaction, 0, len(txSlice))

	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformExtractorOutput: element %d is %T, want object", i, item)
		}

		name, err := getStringField(obj, "name", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		total, err := getDecimalField(obj, "total")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		count, err := getOptionalIntField(obj, "count")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		dateStr, err := getOptionalStringField(obj, "date")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		timeStr, err := getOptionalStringField(obj, "time")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		t := domain.Transaction{
			MerchantName: name,
			Total:        total,
			Count:        DefaultCount,
			UploadedAt:   uploadedAt,
		}
		if count != nil {
			t.Count = *count
		}
		if dateStr != nil {
			d, err := parseDate(*dateStr)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", i, err)
			}
			t.Date = &d
		}
		if timeStr != nil {
			ct, err := parseClock(*timeStr)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", i, err)
			}
			t.Time = &ct
		}

		result = append(result, t)
	}

	return result, nil
}

// parseDate accepts YYYY-MM-DD or an ISO datetime and keeps the calendar date.
func parseDate(s string) (civil.Date, error) {
	if len(s) > len("2006-01-02") && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// parseClock accepts HH:MM:SS with optional fraction, or HH:MM.
func parseClock(s string) (civil.Time, error) {
	if strings.Count(s, ":") == 1 {
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return civil.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return strings.TrimSpace(val), nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

func getDecimalField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q is not a number: %w", key, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getOptionalIntField(m map[string]interface{}, key string) (*int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}

	var n int
	switch val := v.(type) {
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		n = int(i)
	case float64:
		if val != float64(int(val)) {
			return nil, fmt.Errorf("field %q is not an integer", key)
		}
		n = int(val)
	default:
		return nil, fmt.Errorf("field %q has type %T, want integer or null", key, v)
	}
	return &n, nil
}
