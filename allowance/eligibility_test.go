package allowance_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/generic"
)

func TestCanSelectActivity_HolidayOnlyActivities(t *testing.T) {
	for _, a := range allowance.ActivityTypes() {
		if !a.RequiresHoliday {
			continue
		}
		onWorkDay := allowance.CanSelectActivity(a.ID, true)
		assert.False(t, onWorkDay.Allowed, "%s should be blocked on a work day", a.ID)
		assert.Contains(t, onWorkDay.Message, a.Label)
		assert.Contains(t, onWorkDay.Message, "holidays")

		onHoliday := allowance.CanSelectActivity(a.ID, false)
		assert.True(t, onHoliday.Allowed)
		assert.Empty(t, onHoliday.Message)
	}
}

func TestCanSelectActivity_UnrestrictedActivities(t *testing.T) {
	ids := []allowance.ActivityID{"OTHER", "Z", ""}
	for _, a := range allowance.ActivityTypes() {
		if !a.RequiresHoliday {
			ids = append(ids, a.ID)
		}
	}
	for _, id := range ids {
		for _, workDay := range []bool{false, true} {
			got := allowance.CanSelectActivity(id, workDay)
			assert.True(t, got.Allowed, "%q workDay=%v", id, workDay)
			assert.Empty(t, got.Message)
		}
	}
}

func TestActivityCatalog(t *testing.T) {
	types := allowance.ActivityTypes()
	require.Len(t, types, 9)

	var holidayOnly []allowance.ActivityID
	for _, a := range types {
		if a.RequiresHoliday {
			holidayOnly = append(holidayOnly, a.ID)
		}
	}
	assert.Equal(t, []allowance.ActivityID{"A", "B"}, holidayOnly)

	// Mutating the returned slice must not leak into the catalog.
	types[0].RequiresHoliday = false
	a, ok := allowance.LookupActivity("A")
	require.True(t, ok)
	assert.True(t, a.RequiresHoliday)

	id, ok := allowance.ActivityByLabel(a.Label)
	require.True(t, ok)
	assert.Equal(t, allowance.ActivityHolidayClubFull, id)
}

func TestDestinationCatalog(t *testing.T) {
	ds := allowance.Destinations()
	require.Len(t, ds, 4)
	assert.Equal(t, allowance.DestinationSchool, ds[0].ID)

	tests := map[string]allowance.DestinationID{
		"school":       allowance.DestinationSchool,
		" Outside ":    allowance.DestinationOutside,
		"kannai":       allowance.DestinationInsideShort,
		"kennai_short": allowance.DestinationInsideShort,
		"kennai_long":  allowance.DestinationInsideLong,
		"kengai":       allowance.DestinationOutside,
		"mars":         "mars",
	}
	for raw, want := range tests {
		assert.Equal(t, want, allowance.ParseDestination(raw), raw)
	}
}

func TestParseActivity(t *testing.T) {
	assert.Equal(t, allowance.ActivityExpedition, allowance.ParseActivity(" e "))
	assert.Equal(t, allowance.ActivityDisaster, allowance.ParseActivity("disaster"))
}

func TestSelectionHelpers(t *testing.T) {
	assert.True(t, allowance.NeedsDrivingSelection("C"))
	assert.True(t, allowance.NeedsDrivingSelection("E"))
	assert.False(t, allowance.NeedsDrivingSelection("F"))

	assert.True(t, allowance.NeedsAccommodationSelection("E"))
	assert.True(t, allowance.NeedsAccommodationSelection("F"))
	assert.False(t, allowance.NeedsAccommodationSelection("C"))

	assert.Contains(t, allowance.Describe("OTHER"), "6,000")
	assert.Empty(t, allowance.Describe("Z"))
}

func TestValidateCustom(t *testing.T) {
	assert.NoError(t, allowance.ValidateCustom(allowance.CustomEntry{Description: "Prefectural meeting", Amount: 3000}))

	err := allowance.ValidateCustom(allowance.CustomEntry{Description: "  ", Amount: 3000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInvalidInput))
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "custom_description", verr.Field)

	err = allowance.ValidateCustom(allowance.CustomEntry{Description: "Meeting", Amount: 0})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "custom_amount", verr.Field)

	assert.Error(t, allowance.ValidateCustom(allowance.CustomEntry{Description: "Meeting", Amount: -100}))
}
