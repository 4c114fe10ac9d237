package allowance

// Master supplies administrator-configured base amounts by code.
// A result <= 0 means "not configured": the calculator uses its default.
type Master interface {
	BaseAmount(code string) int
	Len() int
}

// MasterEntry is one row of the amount master.
type MasterEntry struct {
	Code       string `json:"code" yaml:"code"`
	BaseAmount int    `json:"base_amount" yaml:"base_amount"`
}

// MasterTable is an immutable snapshot of the amount master.
// Lookup takes the first entry with a matching code.
type MasterTable []MasterEntry

func (t MasterTable) BaseAmount(code string) int {
	for _, e := range t {
		if e.Code == code {
			return e.BaseAmount
		}
	}
	return 0
}

func (t MasterTable) Len() int { return len(t) }

var _ Master = MasterTable(nil)

// MasterCodeDisaster is the master code for disaster duty. It differs from
// the activity id.
const MasterCodeDisaster = "Disaster"

// Default base amounts, in yen.
const (
	DefaultHolidayFull   = 2400 // A
	DefaultHolidayHalf   = 1700 // B, and half-day C
	DefaultDesignated    = 3400 // C
	DefaultNonDesignated = 2400 // D
	DefaultExpedition    = 2400 // E, also the holiday component folded into driving rates
	DefaultCamp          = 2400 // F, also the accommodation add-on
	DefaultTrainingTrip  = 3400 // G
	DefaultDisaster      = 6000
	DefaultOther         = 6000 // fallback calculator only

	DrivingOutside      = 15000
	DrivingInsideLong   = 7500
	DrivingInsideShort  = 5100
	ExpeditionLocalWork = DrivingInsideShort - DefaultExpedition // 2700
)

// DefaultMaster returns a master populated with the default constants for
// every priced catalog code.
func DefaultMaster() MasterTable {
	return MasterTable{
		{Code: string(ActivityHolidayClubFull), BaseAmount: DefaultHolidayFull},
		{Code: string(ActivityHolidayClubHalf), BaseAmount: DefaultHolidayHalf},
		{Code: string(ActivityDesignatedMatch), BaseAmount: DefaultDesignated},
		{Code: string(ActivityNonDesignatedMatch), BaseAmount: DefaultNonDesignated},
		{Code: string(ActivityExpedition), BaseAmount: DefaultExpedition},
		{Code: string(ActivityOnSiteCamp), BaseAmount: DefaultCamp},
		{Code: string(ActivityTrainingTrip), BaseAmount: DefaultTrainingTrip},
		{Code: MasterCodeDisaster, BaseAmount: DefaultDisaster},
	}
}
