package allowance

// =============================================================================
// RATE SOURCES
// =============================================================================

// rates resolves "configured amount for code, else def". The two
// calculators differ only in the rates they pass to resolve.
type rates interface {
	amount(code string, def int) int
	// other is the flat amount for ActivityOther. Only the fallback path
	// prices it.
	other() int
}

type masterRates struct{ m Master }

func (r masterRates) amount(code string, def int) int {
	if r.m == nil {
		return def
	}
	if v := r.m.BaseAmount(code); v > 0 {
		return v
	}
	return def
}

func (masterRates) other() int { return 0 }

type fixedRates struct{}

func (fixedRates) amount(_ string, def int) int { return def }
func (fixedRates) other() int                   { return DefaultOther }

// =============================================================================
// CALCULATORS
// =============================================================================

// CalculateAmountFromMaster computes the stipend using base amounts from
// master where configured. A nil master behaves like an empty one.
func CalculateAmountFromMaster(in Input, master Master) int {
	return resolve(in, masterRates{m: master})
}

// CalculateAmount computes the stipend from the built-in constants only.
func CalculateAmount(in Input) int {
	return resolve(in, fixedRates{})
}

// Calculate picks the master-aware calculator when master has any entries
// and the fixed one otherwise.
func Calculate(in Input, master Master) int {
	if master != nil && master.Len() > 0 {
		return CalculateAmountFromMaster(in, master)
	}
	return CalculateAmount(in)
}

// resolve applies the rules in precedence order; the first match wins.
func resolve(in Input, r rates) int {
	if in.Activity == ActivityDisaster {
		return r.amount(MasterCodeDisaster, DefaultDisaster)
	}

	if in.Driving {
		if amt, ok := drivingAmount(in, r); ok {
			return amt
		}
	}

	switch in.Activity {
	// E and F are flat regardless of work day.
	case ActivityExpedition:
		return r.amount(string(ActivityExpedition), DefaultExpedition)
	case ActivityOnSiteCamp:
		return r.amount(string(ActivityOnSiteCamp), DefaultCamp)
	case ActivityHolidayClubFull:
		if in.WorkDay {
			return 0
		}
		return r.amount(string(ActivityHolidayClubFull), DefaultHolidayFull)
	case ActivityHolidayClubHalf:
		if in.WorkDay {
			return 0
		}
		return r.amount(string(ActivityHolidayClubHalf), DefaultHolidayHalf)
	case ActivityDesignatedMatch:
		if in.HalfDay {
			return r.amount(string(ActivityHolidayClubHalf), DefaultHolidayHalf)
		}
		return r.amount(string(ActivityDesignatedMatch), DefaultDesignated)
	case ActivityNonDesignatedMatch:
		return r.amount(string(ActivityNonDesignatedMatch), DefaultNonDesignated)
	case ActivityTrainingTrip:
		return r.amount(string(ActivityTrainingTrip), DefaultTrainingTrip)
	case ActivityOther:
		return r.other()
	case ActivityCustom:
		// priced by the caller
		return 0
	default:
		return 0
	}
}

// drivingAmount returns the driving rate for in, or ok=false when no driving
// rule covers the activity/destination pair.
func drivingAmount(in Input, r rates) (amount int, ok bool) {
	switch in.Destination {
	case DestinationOutside:
		return longDistance(in, r, DrivingOutside), true
	case DestinationInsideLong:
		return longDistance(in, r, DrivingInsideLong), true
	case DestinationInsideShort, DestinationSchool:
		return localDriving(in, r)
	default:
		return 0, false
	}
}

// longDistance prices driving to inside_long or outside. The base already
// contains the expedition holiday component, which is removed on work days.
func longDistance(in Input, r rates, base int) int {
	switch in.Activity {
	case ActivityExpedition:
		if in.WorkDay {
			return base - DefaultExpedition
		}
		return base
	case ActivityOnSiteCamp:
		if in.Accommodation {
			return base + r.amount(string(ActivityOnSiteCamp), DefaultCamp)
		}
		return base
	default:
		return base
	}
}

func localDriving(in Input, r rates) (int, bool) {
	switch in.Activity {
	case ActivityDesignatedMatch:
		return r.amount(string(ActivityDesignatedMatch), DefaultDesignated), true
	case ActivityExpedition:
		if in.WorkDay {
			return ExpeditionLocalWork, true
		}
		return DefaultExpedition, true
	case ActivityOnSiteCamp:
		camp := r.amount(string(ActivityOnSiteCamp), DefaultCamp)
		if !in.WorkDay {
			return camp, true
		}
		if in.Accommodation {
			return DrivingInsideShort + camp, true
		}
		return DrivingInsideShort, true
	default:
		return 0, false
	}
}
