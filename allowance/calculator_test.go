package allowance_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/stipend-engine/allowance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var allDestinations = []allowance.DestinationID{
	allowance.DestinationSchool,
	allowance.DestinationInsideShort,
	allowance.DestinationInsideLong,
	allowance.DestinationOutside,
	"",
	"moon",
}

var bools = []bool{false, true}

// forEachInput calls fn for every flag/destination combination of activity.
func forEachInput(activity allowance.ActivityID, fn func(in allowance.Input)) {
	for _, dest := range allDestinations {
		for _, driving := range bools {
			for _, workDay := range bools {
				for _, accommodation := range bools {
					for _, halfDay := range bools {
						fn(allowance.Input{
							Activity:      activity,
							Driving:       driving,
							Destination:   dest,
							WorkDay:       workDay,
							Accommodation: accommodation,
							HalfDay:       halfDay,
						})
					}
				}
			}
		}
	}
}

// =============================================================================
// FIXED CALCULATOR SCENARIOS
// =============================================================================

func TestCalculateAmount_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   allowance.Input
		want int
	}{
		{
			name: "designated competition, no driving",
			in:   allowance.Input{Activity: "C", Destination: "inside_short", WorkDay: true},
			want: 3400,
		},
		{
			name: "designated competition, half day",
			in:   allowance.Input{Activity: "C", Destination: "inside_short", WorkDay: true, HalfDay: true},
			want: 1700,
		},
		{
			name: "expedition driving outside on a work day",
			in:   allowance.Input{Activity: "E", Driving: true, Destination: "outside", WorkDay: true},
			want: 12600,
		},
		{
			name: "expedition driving outside on a holiday",
			in:   allowance.Input{Activity: "E", Driving: true, Destination: "outside"},
			want: 15000,
		},
		{
			name: "expedition driving 120km+ on a work day",
			in:   allowance.Input{Activity: "E", Driving: true, Destination: "inside_long", WorkDay: true},
			want: 5100,
		},
		{
			name: "camp driving 120km+ on a holiday with accommodation",
			in:   allowance.Input{Activity: "F", Driving: true, Destination: "inside_long", Accommodation: true},
			want: 9900,
		},
		{
			name: "camp driving outside with accommodation",
			in:   allowance.Input{Activity: "F", Driving: true, Destination: "outside", Accommodation: true},
			want: 17400,
		},
		{
			name: "camp driving locally on a work day with accommodation",
			in:   allowance.Input{Activity: "F", Driving: true, Destination: "inside_short", WorkDay: true, Accommodation: true},
			want: 7500,
		},
		{
			name: "camp driving locally on a work day without accommodation",
			in:   allowance.Input{Activity: "F", Driving: true, Destination: "school", WorkDay: true},
			want: 5100,
		},
		{
			name: "camp driving locally on a holiday",
			in:   allowance.Input{Activity: "F", Driving: true, Destination: "school", Accommodation: true},
			want: 2400,
		},
		{
			name: "expedition driving locally on a work day",
			in:   allowance.Input{Activity: "E", Driving: true, Destination: "inside_short", WorkDay: true},
			want: 2700,
		},
		{
			name: "expedition driving locally on a holiday",
			in:   allowance.Input{Activity: "E", Driving: true, Destination: "inside_short"},
			want: 2400,
		},
		{
			name: "designated competition driving locally ignores half day",
			in:   allowance.Input{Activity: "C", Driving: true, Destination: "school", HalfDay: true},
			want: 3400,
		},
		{
			name: "non-designated competition at school",
			in:   allowance.Input{Activity: "D", Destination: "school", WorkDay: true},
			want: 2400,
		},
		{
			name: "non-designated competition driving locally falls through",
			in:   allowance.Input{Activity: "D", Driving: true, Destination: "inside_short"},
			want: 2400,
		},
		{
			name: "holiday club driving locally falls through to holiday gating",
			in:   allowance.Input{Activity: "A", Driving: true, Destination: "school", WorkDay: true},
			want: 0,
		},
		{
			name: "training trip",
			in:   allowance.Input{Activity: "G", Destination: "inside_long"},
			want: 3400,
		},
		{
			name: "disaster duty",
			in:   allowance.Input{Activity: "DISASTER", WorkDay: true},
			want: 6000,
		},
		{
			name: "disaster duty wins over driving",
			in:   allowance.Input{Activity: "DISASTER", Driving: true, Destination: "outside"},
			want: 6000,
		},
		{
			name: "legacy other code",
			in:   allowance.Input{Activity: "OTHER", Destination: "school"},
			want: 6000,
		},
		{
			name: "legacy other code driving outside",
			in:   allowance.Input{Activity: "OTHER", Driving: true, Destination: "outside"},
			want: 15000,
		},
		{
			name: "custom is not priced",
			in:   allowance.Input{Activity: "CUSTOM", Destination: "school"},
			want: 0,
		},
		{
			name: "unknown activity",
			in:   allowance.Input{Activity: "Z", Destination: "school"},
			want: 0,
		},
		{
			name: "unknown activity driving outside",
			in:   allowance.Input{Activity: "Z", Driving: true, Destination: "outside"},
			want: 15000,
		},
		{
			name: "driving to an unknown destination falls through",
			in:   allowance.Input{Activity: "G", Driving: true, Destination: "moon"},
			want: 3400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allowance.CalculateAmount(tt.in))
		})
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestCalculateAmount_HolidayClubGating(t *testing.T) {
	for _, dest := range allDestinations {
		for _, accommodation := range bools {
			in := allowance.Input{Destination: dest, Accommodation: accommodation}

			in.Activity = allowance.ActivityHolidayClubFull
			in.WorkDay = true
			assert.Equal(t, 0, allowance.CalculateAmount(in))
			in.WorkDay = false
			assert.Equal(t, 2400, allowance.CalculateAmount(in))

			in.Activity = allowance.ActivityHolidayClubHalf
			in.WorkDay = true
			assert.Equal(t, 0, allowance.CalculateAmount(in))
			in.WorkDay = false
			assert.Equal(t, 1700, allowance.CalculateAmount(in))
		}
	}
}

func TestCalculateAmount_ExpeditionAndCampFlatWithoutDriving(t *testing.T) {
	for _, activity := range []allowance.ActivityID{allowance.ActivityExpedition, allowance.ActivityOnSiteCamp} {
		for _, dest := range allDestinations {
			for _, accommodation := range bools {
				for _, workDay := range bools {
					in := allowance.Input{
						Activity:      activity,
						Destination:   dest,
						WorkDay:       workDay,
						Accommodation: accommodation,
					}
					assert.Equal(t, 2400, allowance.CalculateAmount(in), "%+v", in)
				}
			}
		}
	}
}

func TestCalculateAmount_DrivingOutsideIsDestinationDominant(t *testing.T) {
	activities := []allowance.ActivityID{"A", "B", "C", "D", "G", "CUSTOM", "OTHER", "unknown"}
	for _, activity := range activities {
		for _, workDay := range bools {
			for _, accommodation := range bools {
				for _, halfDay := range bools {
					in := allowance.Input{
						Activity:      activity,
						Driving:       true,
						Destination:   allowance.DestinationOutside,
						WorkDay:       workDay,
						Accommodation: accommodation,
						HalfDay:       halfDay,
					}
					assert.Equal(t, 15000, allowance.CalculateAmount(in), "%+v", in)
					assert.Equal(t, 15000, allowance.CalculateAmountFromMaster(in, allowance.DefaultMaster()), "%+v", in)
				}
			}
		}
	}
}

func TestCalculators_NeverNegative(t *testing.T) {
	ids := []allowance.ActivityID{"OTHER", "X"}
	for _, a := range allowance.ActivityTypes() {
		ids = append(ids, a.ID)
	}
	for _, id := range ids {
		forEachInput(id, func(in allowance.Input) {
			assert.GreaterOrEqual(t, allowance.CalculateAmount(in), 0)
			assert.GreaterOrEqual(t, allowance.CalculateAmountFromMaster(in, nil), 0)
		})
	}
}

// =============================================================================
// MASTER-AWARE CALCULATOR
// =============================================================================

func TestCalculateAmountFromMaster_MatchesFixedWithDefaultMaster(t *testing.T) {
	master := allowance.DefaultMaster()
	for _, a := range allowance.ActivityTypes() {
		forEachInput(a.ID, func(in allowance.Input) {
			assert.Equal(t,
				allowance.CalculateAmount(in),
				allowance.CalculateAmountFromMaster(in, master),
				fmt.Sprintf("%+v", in))
		})
	}
}

func TestCalculateAmountFromMaster_MatchesFixedWithEmptyMaster(t *testing.T) {
	for _, a := range allowance.ActivityTypes() {
		forEachInput(a.ID, func(in allowance.Input) {
			assert.Equal(t, allowance.CalculateAmount(in), allowance.CalculateAmountFromMaster(in, allowance.MasterTable{}))
		})
	}
}

func TestCalculateAmountFromMaster_Overrides(t *testing.T) {
	master := allowance.MasterTable{
		{Code: "A", BaseAmount: 3000},
		{Code: "B", BaseAmount: 2000},
		{Code: "C", BaseAmount: 4000},
		{Code: "D", BaseAmount: 0}, // not configured
		{Code: "E", BaseAmount: 2600},
		{Code: "F", BaseAmount: 3100},
		{Code: "G", BaseAmount: -5}, // treated as not configured
		{Code: "Disaster", BaseAmount: 8000},
		{Code: "OTHER", BaseAmount: 9999},
	}

	tests := []struct {
		name string
		in   allowance.Input
		want int
	}{
		{"holiday club full", allowance.Input{Activity: "A"}, 3000},
		{"holiday club full on work day", allowance.Input{Activity: "A", WorkDay: true}, 0},
		{"holiday club half", allowance.Input{Activity: "B"}, 2000},
		{"designated competition", allowance.Input{Activity: "C"}, 4000},
		{"half-day competition uses B", allowance.Input{Activity: "C", HalfDay: true}, 2000},
		{"designated competition driving locally", allowance.Input{Activity: "C", Driving: true, Destination: "school"}, 4000},
		{"zero master amount falls back", allowance.Input{Activity: "D"}, 2400},
		{"negative master amount falls back", allowance.Input{Activity: "G"}, 3400},
		{"expedition flat", allowance.Input{Activity: "E", WorkDay: true}, 2600},
		{"camp flat", allowance.Input{Activity: "F", WorkDay: true}, 3100},
		{"camp driving outside with accommodation", allowance.Input{Activity: "F", Driving: true, Destination: "outside", Accommodation: true}, 18100},
		{"camp driving 120km+ with accommodation", allowance.Input{Activity: "F", Driving: true, Destination: "inside_long", Accommodation: true}, 10600},
		{"camp driving locally on work day with accommodation", allowance.Input{Activity: "F", Driving: true, Destination: "inside_short", WorkDay: true, Accommodation: true}, 8200},
		{"camp driving locally on holiday", allowance.Input{Activity: "F", Driving: true, Destination: "inside_short"}, 3100},
		{"expedition driving outside keeps fixed deduction", allowance.Input{Activity: "E", Driving: true, Destination: "outside", WorkDay: true}, 12600},
		{"expedition driving locally ignores master", allowance.Input{Activity: "E", Driving: true, Destination: "school", WorkDay: true}, 2700},
		{"disaster duty", allowance.Input{Activity: "DISASTER"}, 8000},
		{"legacy other code is not priced", allowance.Input{Activity: "OTHER"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allowance.CalculateAmountFromMaster(tt.in, master))
		})
	}
}

func TestCalculateAmountFromMaster_FirstMatchingEntryWins(t *testing.T) {
	master := allowance.MasterTable{
		{Code: "D", BaseAmount: 2500},
		{Code: "D", BaseAmount: 9000},
	}
	assert.Equal(t, 2500, allowance.CalculateAmountFromMaster(allowance.Input{Activity: "D"}, master))
}

// =============================================================================
// PATH SELECTION
// =============================================================================

func TestCalculate_SelectsPath(t *testing.T) {
	in := allowance.Input{Activity: allowance.ActivityOther}

	// GIVEN: no master rows
	// THEN: the fixed calculator prices OTHER
	assert.Equal(t, 6000, allowance.Calculate(in, nil))
	assert.Equal(t, 6000, allowance.Calculate(in, allowance.MasterTable{}))

	// GIVEN: any master rows
	// THEN: the master-aware calculator is used, which does not price OTHER
	assert.Equal(t, 0, allowance.Calculate(in, allowance.DefaultMaster()))

	override := allowance.MasterTable{{Code: "G", BaseAmount: 3600}}
	assert.Equal(t, 3600, allowance.Calculate(allowance.Input{Activity: "G"}, override))
}
