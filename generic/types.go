/*
Package generic provides the shared vocabulary of the stipend service.

PURPOSE:
  Domain-agnostic building blocks used by the calendar, stipend, store and
  api packages: money amounts, identifiers, day-granular time points,
  month periods and the error taxonomy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: a sum of money with a currency unit
  - StaffID / RecordID: type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: totals use decimal.Decimal, never float64
  2. Type Safety: distinct ID types prevent mixing staff and record IDs
  3. Stipend rules themselves live in package allowance and work in whole yen

USAGE:
  total := generic.Yen(0)
  for _, r := range records {
      total = total.Add(generic.Yen(r.Amount))
  }

SEE ALSO:
  - period.go: YearMonth and Period
  - time.go: TimePoint and holiday calendars
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Sum of money with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitYen Unit = "JPY"
)

// Yen returns an amount of whole yen.
func Yen(v int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(v)), Unit: UnitYen}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value), Unit: a.unit()} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.unit()} }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// Int64 returns the amount rounded to whole units.
func (a Amount) Int64() int64 { return a.Value.Round(0).IntPart() }

func (a Amount) unit() Unit {
	if a.Unit == "" {
		return UnitYen
	}
	return a.Unit
}

// Format renders the amount with thousands separators, e.g. "¥12,600".
func (a Amount) Format() string {
	s := a.Value.Round(0).Abs().String()
	var b strings.Builder
	if a.Value.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("¥")
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StaffID string
type RecordID string

// Role is the caller's role as asserted by the identity gateway.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)
