/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates staff, the amount master and
	stipend records for the previous month.

AVAILABLE SCENARIOS:
	club-season:     Two coaches with weekend club days, a match and a camp
	approval-queue:  Several coaches, one submitted and one approved month
	raised-rates:    club-season with administrator-raised master amounts

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed the amount master
 3. Create staff
 4. Record entries through the stipend service (as an administrator, so
    month locks do not apply)
 5. Optionally submit/approve months

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "approval-queue"}

NOTE:
	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handlers used after loading
  - factory/master.go: Default master definitions
*/
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/factory"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/stipend"
	"github.com/warp/stipend-engine/store/sqlite"
)

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body for POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required,oneof=club-season approval-queue raised-rates"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "club-season",
		Name:        "Club Season",
		Description: "Two coaches with weekend club days, a designated match with driving and an on-site camp",
	},
	{
		ID:          "approval-queue",
		Name:        "Approval Queue",
		Description: "Four coaches: one month submitted, one approved, two still in draft",
	},
	{
		ID:          "raised-rates",
		Name:        "Raised Rates",
		Description: "Club season priced with an administrator-edited amount master",
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req LoadScenarioRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	month, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	log.Printf("Loaded scenario %s for %s", req.ScenarioID, month)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"month":    month.String(),
	})
}

// loadScenario populates the previous month so the deadline monitor and
// summaries have something to show.
func (h *Handler) loadScenario(ctx context.Context, id string) (generic.YearMonth, error) {
	month := generic.MonthOf(generic.DayOf(now())).Prev()

	if err := h.Store.Reset(ctx); err != nil {
		return month, fmt.Errorf("reset: %w", err)
	}
	if _, err := h.Store.SeedMaster(ctx, MasterRecords(factory.DefaultDefinitions())); err != nil {
		return month, fmt.Errorf("seed master: %w", err)
	}

	var err error
	switch id {
	case "club-season":
		err = h.loadClubSeason(ctx, month)
	case "approval-queue":
		err = h.loadApprovalQueue(ctx, month)
	case "raised-rates":
		err = h.loadRaisedRates(ctx, month)
	default:
		err = fmt.Errorf("unknown scenario %q", id)
	}
	return month, err
}

var scenarioAdmin = stipend.Actor{ID: "admin", Role: generic.RoleAdmin}

func (h *Handler) loadClubSeason(ctx context.Context, month generic.YearMonth) error {
	if err := h.createStaff(ctx,
		stipend.Staff{ID: "admin", Name: "Office Admin", Role: generic.RoleAdmin},
		stipend.Staff{ID: "coach-suzuki", Name: "Suzuki", Email: "suzuki@example.com"},
		stipend.Staff{ID: "coach-tanaka", Name: "Tanaka", Email: "tanaka@example.com"},
	); err != nil {
		return err
	}

	weekends := weekendDays(month)
	if len(weekends) < 6 {
		return fmt.Errorf("%s has too few weekend days", month)
	}

	match := stipend.Entry{
		StaffID:         "coach-suzuki",
		Dates:           weekends[2:3],
		Activity:        allowance.ActivityDesignatedMatch,
		Driving:         true,
		Destination:     allowance.DestinationOutside,
		CompetitionName: "Prefectural tournament",
	}
	camp := stipend.Entry{
		StaffID:       "coach-tanaka",
		Dates:         weekends[4:6],
		Activity:      allowance.ActivityOnSiteCamp,
		Accommodation: true,
	}
	entries := []stipend.Entry{
		{StaffID: "coach-suzuki", Dates: weekends[0:2], Activity: allowance.ActivityHolidayClubFull},
		match,
		{StaffID: "coach-tanaka", Dates: weekends[0:1], Activity: allowance.ActivityHolidayClubHalf},
		camp,
	}
	return h.record(ctx, entries...)
}

func (h *Handler) loadApprovalQueue(ctx context.Context, month generic.YearMonth) error {
	if err := h.loadClubSeason(ctx, month); err != nil {
		return err
	}
	if err := h.createStaff(ctx,
		stipend.Staff{ID: "coach-sato", Name: "Sato"},
		stipend.Staff{ID: "coach-ito", Name: "Ito"},
	); err != nil {
		return err
	}

	weekends := weekendDays(month)
	if err := h.record(ctx,
		stipend.Entry{StaffID: "coach-sato", Dates: weekends[1:3], Activity: allowance.ActivityTrainingTrip},
		stipend.Entry{StaffID: "coach-ito", Dates: weekends[3:4], Activity: allowance.ActivityDisaster},
	); err != nil {
		return err
	}

	if _, err := h.Service.Submit(ctx, scenarioAdmin, "coach-suzuki", month); err != nil {
		return err
	}
	if _, err := h.Service.Submit(ctx, scenarioAdmin, "coach-sato", month); err != nil {
		return err
	}
	_, err := h.Service.Approve(ctx, scenarioAdmin, "coach-sato", month)
	return err
}

func (h *Handler) loadRaisedRates(ctx context.Context, month generic.YearMonth) error {
	raised := []sqlite.MasterRecord{
		{Code: string(allowance.ActivityHolidayClubFull), DisplayName: "A: Holiday club (full day)", BaseAmount: 2700, RequiresHoliday: true},
		{Code: string(allowance.ActivityOnSiteCamp), DisplayName: "F: On-site camp (overnight coaching)", BaseAmount: 2800},
	}
	for _, m := range raised {
		if err := h.Store.SaveMasterRecord(ctx, m); err != nil {
			return err
		}
	}
	return h.loadClubSeason(ctx, month)
}

func (h *Handler) createStaff(ctx context.Context, staff ...stipend.Staff) error {
	for _, s := range staff {
		if err := h.Store.SaveStaff(ctx, s); err != nil {
			return fmt.Errorf("create staff %s: %w", s.ID, err)
		}
	}
	return nil
}

func (h *Handler) record(ctx context.Context, entries ...stipend.Entry) error {
	for _, e := range entries {
		if _, err := h.Service.RecordEntry(ctx, scenarioAdmin, e); err != nil {
			return fmt.Errorf("record %s %s: %w", e.StaffID, e.Activity, err)
		}
	}
	return nil
}

// weekendDays lists the Saturdays and Sundays of month.
func weekendDays(month generic.YearMonth) []generic.TimePoint {
	var out []generic.TimePoint
	for _, d := range month.Period().Days() {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			out = append(out, d)
		}
	}
	return out
}
