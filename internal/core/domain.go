package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// GeneralCategory is the display name used when a record carries no
	// usable category.
	GeneralCategory = "General"

	// UntitledTitle replaces an empty title at save time.
	UntitledTitle = "Untitled Expense"
)

type (
	// Category holds the canonical display attributes of a category.
	Category struct {
		Name  string `json:"name"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
	}

	// Expense is a single recorded spending transaction. Category is always
	// the normalized display name; Color and Icon are snapshots taken when
	// the record was created.
	Expense struct {
		ID       string
		Title    string
		Amount   decimal.Decimal
		Category string
		Date     string // YYYY-MM-DD, local calendar day
		Time     string // HH:MM, informational only
		Color    string
		Icon     string
	}

	// NewExpense is the input accepted by the expense store when recording
	// a new transaction.
	NewExpense struct {
		Title    string
		Amount   decimal.Decimal
		Category Category
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyID       = errors.New("empty expense id")
	ErrNotFound      = errors.New("expense not found")
)

// CategoryName normalizes a category name, falling back to General for
// blank input.
func CategoryName(name string) string {
	if strings.TrimSpace(name) == "" {
		return GeneralCategory
	}
	return name
}

// TitleOrDefault returns the title, or the placeholder when it is blank.
func TitleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return UntitledTitle
	}
	return title
}

// GenerateID builds an expense id from the creation instant and a random
// suffix in [0, 999]. Two ids created in the same millisecond with the same
// suffix collide.
func GenerateID(now time.Time, suffix int) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(suffix)
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if _, err := ParseLocalDate(e.Date, time.UTC); err != nil {
		return err
	}
	return nil
}

// Month returns the YYYY-MM part of the record date.
func (e Expense) Month() string {
	return MonthKey(e.Date)
}

func (n NewExpense) Validate() error {
	if n.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
