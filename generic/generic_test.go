package generic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_Format(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{Yen(0), "¥0"},
		{Yen(900), "¥900"},
		{Yen(2400), "¥2,400"},
		{Yen(15000), "¥15,000"},
		{Yen(1234567), "¥1,234,567"},
		{Yen(-6000), "-¥6,000"},
		{Amount{Value: MustParseDecimal("1699.6")}, "¥1,700"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.amount.Format())
	}
}

func TestAmount_Add(t *testing.T) {
	total := Yen(0)
	for _, v := range []int{2400, 1700, 15000} {
		total = total.Add(Yen(v))
	}
	assert.Equal(t, int64(19100), total.Int64())
	assert.Equal(t, UnitYen, total.Unit)
	assert.True(t, total.GreaterThan(Yen(19000)))
}

func TestYearMonth(t *testing.T) {
	dec := YearMonth{Year: 2024, Month: time.December}
	assert.Equal(t, YearMonth{Year: 2025, Month: time.January}, dec.Next())
	assert.Equal(t, YearMonth{Year: 2024, Month: time.November}, dec.Prev())
	assert.Equal(t, YearMonth{Year: 2023, Month: time.December}, YearMonth{Year: 2024, Month: time.January}.Prev())

	feb := YearMonth{Year: 2024, Month: time.February}
	assert.Equal(t, "2024-02", feb.String())
	assert.Len(t, feb.Period().Days(), 29)
	assert.Equal(t, "2024-02-29", feb.Period().End.String())
}

func TestParse(t *testing.T) {
	ym, err := ParseYearMonth("2025-06")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2025, Month: time.June}, ym)

	_, err = ParseYearMonth("June")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "month", ve.Field)

	d, err := ParseDate("2025-06-07")
	require.NoError(t, err)
	assert.True(t, d.IsWeekend())
	assert.Equal(t, YearMonth{Year: 2025, Month: time.June}, MonthOf(d))

	_, err = ParseDate("2025/06/07")
	assert.True(t, IsClientError(err))
}

func TestDayOf_UsesOwnLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	at := time.Date(2025, 7, 1, 1, 0, 0, 0, tokyo) // 2025-06-30 16:00 UTC
	assert.Equal(t, "2025-07-01", DayOf(at).String())
}

func TestErrorHelpers(t *testing.T) {
	locked := &LockedError{StaffID: "t-1", Month: YearMonth{Year: 2025, Month: time.June}, Reason: "application is submitted"}
	assert.True(t, IsConflict(locked))
	assert.True(t, errors.Is(locked, ErrMonthLocked))
	assert.True(t, IsConflict(&TransitionError{From: "draft", To: "approved"}))
	assert.True(t, IsClientError(&IneligibleError{Activity: "A", Message: "no"}))
	assert.False(t, IsClientError(ErrForbidden))
}
