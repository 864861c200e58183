// Package pricing maps a campaign goal to a fixed package price.
//
// The tier table is static data embedded in the binary. A quote depends on the
// goal value alone.
package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var tiersYAML []byte

// Sentinel is the Amount of a quote that needs manual contact.
const Sentinel = -1

// Kind classifies a quote.
type Kind int

const (
	NotApplicable Kind = iota
	Fixed
	ContactUs
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case ContactUs:
		return "contact-us"
	default:
		return "not-applicable"
	}
}

// Tier covers goals in (previous Max, Max].
type Tier struct {
	Max   float64 `yaml:"max"`
	Price int     `yaml:"price"`
}

// Price is the result of a quote. Amount is Sentinel for ContactUs and 0 for
// NotApplicable.
type Price struct {
	Amount   int
	Kind     Kind
	Currency string
}

// Table is a validated, ordered tier list.
type Table struct {
	Currency string `yaml:"currency"`
	Tiers    []Tier `yaml:"tiers"`
}

// NewTable validates that tiers are ascending, contiguous from zero and priced.
func NewTable(currency string, tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("pricing: no tiers")
	}
	prev := 0.0
	for i, t := range tiers {
		if t.Max <= prev {
			return nil, fmt.Errorf("pricing: tier %d max %.0f does not exceed %.0f", i, t.Max, prev)
		}
		if t.Price <= 0 {
			return nil, fmt.Errorf("pricing: tier %d has non-positive price %d", i, t.Price)
		}
		prev = t.Max
	}
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return &Table{Currency: currency, Tiers: out}, nil
}

// ParseTable decodes a YAML tier table and validates it.
func ParseTable(data []byte) (*Table, error) {
	var raw Table
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pricing: decode tiers: %w", err)
	}
	return NewTable(raw.Currency, raw.Tiers)
}

var defaultTable = mustParse(tiersYAML)

func mustParse(data []byte) *Table {
	t, err := ParseTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the embedded tier table.
func Default() *Table { return defaultTable }

// Quote prices a goal entered as free text using the embedded table.
func Quote(goal string) Price { return defaultTable.Quote(goal) }

// Quote prices a goal entered as free text.
func (t *Table) Quote(goal string) Price {
	v, err := strconv.ParseFloat(strings.TrimSpace(goal), 64)
	// Out-of-range input still carries ±Inf or 0.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Price{Kind: NotApplicable, Currency: t.Currency}
	}
	return t.QuoteValue(v)
}

// QuoteValue prices a numeric goal. Boundaries are inclusive on each tier's
// upper bound. Only zero and NaN have no price; negative goals fall in the
// first tier.
func (t *Table) QuoteValue(goal float64) Price {
	if math.IsNaN(goal) || goal == 0 {
		return Price{Kind: NotApplicable, Currency: t.Currency}
	}
	for _, tier := range t.Tiers {
		if goal <= tier.Max {
			return Price{Amount: tier.Price, Kind: Fixed, Currency: t.Currency}
		}
	}
	return Price{Amount: Sentinel, Kind: ContactUs, Currency: t.Currency}
}

// Ceiling is the largest goal with a fixed price.
func (t *Table) Ceiling() float64 { return t.Tiers[len(t.Tiers)-1].Max }
