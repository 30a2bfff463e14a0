package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// expenseJSON is the persisted shape of an Expense. It must stay stable so
// collections written by older versions still load.
type expenseJSON struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Amount   json.Number     `json:"amount"`
	Category json.RawMessage `json:"category,omitempty"`
	Date     string          `json:"date"`
	Time     string          `json:"time,omitempty"`
	Color    string          `json:"color,omitempty"`
	Icon     string          `json:"icon,omitempty"`
}

// MarshalJSON writes the amount as a JSON number and the category as its
// display name.
func (e Expense) MarshalJSON() ([]byte, error) {
	cat, err := json.Marshal(CategoryName(e.Category))
	if err != nil {
		return nil, err
	}
	return json.Marshal(expenseJSON{
		ID:       e.ID,
		Title:    e.Title,
		Amount:   json.Number(e.Amount.String()),
		Category: cat,
		Date:     e.Date,
		Time:     e.Time,
		Color:    e.Color,
		Icon:     e.Icon,
	})
}

// UnmarshalJSON accepts the category either as a plain name or as an
// embedded {name, icon, color} object and normalizes it to a display name.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var w expenseJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return fmt.Errorf("%w: expense %q: %q", ErrInvalidAmount, w.ID, w.Amount)
	}
	*e = Expense{
		ID:       w.ID,
		Title:    w.Title,
		Amount:   amount,
		Category: decodeCategoryName(w.Category),
		Date:     w.Date,
		Time:     w.Time,
		Color:    w.Color,
		Icon:     w.Icon,
	}
	return nil
}

func decodeCategoryName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return GeneralCategory
	}
	switch raw[0] {
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return GeneralCategory
		}
		return CategoryName(name)
	case '{':
		var obj struct {
			Name any `json:"name"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return GeneralCategory
		}
		name, _ := obj.Name.(string)
		return CategoryName(strings.TrimSpace(name))
	default:
		return GeneralCategory
	}
}

// EncodeExpenses serializes a collection as a JSON array.
func EncodeExpenses(expenses []Expense) (string, error) {
	if expenses == nil {
		expenses = []Expense{}
	}
	b, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("encode expenses: %w", err)
	}
	return string(b), nil
}

// DecodeExpenses parses a JSON array of expenses. Records that fail to
// decode are skipped and reported through the returned error, alongside the
// records that did decode. A malformed array yields no records.
func DecodeExpenses(data string) ([]Expense, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raws); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}

	out := make([]Expense, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		var e Expense
		if err := json.Unmarshal(raw, &e); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, e)
	}
	return out, errors.Join(errs...)
}
