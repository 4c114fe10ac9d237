package stipend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/calendar"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/observability"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Store is the persistence the service needs. store/sqlite implements it.
type Store interface {
	GetStaff(ctx context.Context, id generic.StaffID) (*Staff, error)
	ListStaff(ctx context.Context) ([]Staff, error)

	SaveRecord(ctx context.Context, r Record) error
	GetRecord(ctx context.Context, id generic.RecordID) (*Record, error)
	GetRecordOn(ctx context.Context, staffID generic.StaffID, date generic.TimePoint) (*Record, error)
	DeleteRecord(ctx context.Context, id generic.RecordID) error
	ListRecords(ctx context.Context, staffID generic.StaffID, period generic.Period) ([]Record, error)
	ListAllRecords(ctx context.Context, period generic.Period) ([]Record, error)

	GetApplication(ctx context.Context, staffID generic.StaffID, month generic.YearMonth) (*Application, error)
	SaveApplication(ctx context.Context, app Application) error
	ListApplications(ctx context.Context, status Status) ([]Application, error)

	MasterTable(ctx context.Context) (allowance.MasterTable, error)
}

// DayClassifier supplies the work-day flag. *calendar.Classifier implements it.
type DayClassifier interface {
	Classify(ctx context.Context, date generic.TimePoint) (calendar.DayType, error)
}

// Service implements stipend recording and the monthly workflow.
type Service struct {
	store      Store
	classifier DayClassifier
	lock       LockPolicy
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLockPolicy overrides the default deadline policy.
func WithLockPolicy(p LockPolicy) Option { return func(s *Service) { s.lock = p } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires a Service.
func NewService(store Store, classifier DayClassifier, opts ...Option) *Service {
	s := &Service{
		store:      store,
		classifier: classifier,
		lock:       LockPolicy{DeadlineDay: DefaultDeadlineDay},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// QUOTE - price without saving
// =============================================================================

// Quote is a priced, unsaved entry.
type Quote struct {
	Input       allowance.Input
	Day         *calendar.DayType
	Eligibility allowance.Eligibility
	Amount      int
	Path        string
}

// Quote prices in. When date is non-nil the work-day flag is taken from the
// calendar instead of in.WorkDay.
func (s *Service) Quote(ctx context.Context, date *generic.TimePoint, in allowance.Input) (Quote, error) {
	q := Quote{}
	if date != nil {
		dt, err := s.classifier.Classify(ctx, *date)
		if err != nil {
			return Quote{}, err
		}
		q.Day = &dt
		in.WorkDay = dt.WorkDay
	}

	master, err := s.store.MasterTable(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("load amount master: %w", err)
	}

	q.Input = in
	q.Eligibility = allowance.CanSelectActivity(in.Activity, in.WorkDay)
	q.Amount, q.Path = price(in, master)
	return q, nil
}

func price(in allowance.Input, master allowance.MasterTable) (int, string) {
	path := observability.PathFixed
	if master.Len() > 0 {
		path = observability.PathMaster
	}
	amount := allowance.Calculate(in, master)
	observability.RecordCalculation(string(in.Activity), path)
	return amount, path
}

// =============================================================================
// RECORDING
// =============================================================================

// RecordEntry applies entry to each of its dates. Every date is validated
// before anything is written: one ineligible or locked date rejects the
// whole entry.
func (s *Service) RecordEntry(ctx context.Context, actor Actor, entry Entry) ([]Record, error) {
	if err := authorize(actor, entry.StaffID); err != nil {
		return nil, err
	}
	if len(entry.Dates) == 0 {
		return nil, &generic.ValidationError{Field: "dates", Message: "at least one date is required"}
	}
	if entry.Activity == allowance.ActivityCustom {
		if err := allowance.ValidateCustom(allowance.CustomEntry{
			Description: entry.CustomDescription,
			Amount:      entry.CustomAmount,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.checkLocks(ctx, actor, entry.StaffID, entry.Dates); err != nil {
		return nil, err
	}

	if entry.Activity == "" {
		for _, d := range entry.Dates {
			if err := s.clearDay(ctx, entry.StaffID, d); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	master, err := s.store.MasterTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load amount master: %w", err)
	}

	records := make([]Record, 0, len(entry.Dates))
	for _, d := range entry.Dates {
		rec, err := s.buildRecord(ctx, entry, d, master)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	for i := range records {
		if err := s.save(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Service) buildRecord(ctx context.Context, entry Entry, date generic.TimePoint, master allowance.MasterTable) (Record, error) {
	dt, err := s.classifier.Classify(ctx, date)
	if err != nil {
		return Record{}, err
	}

	elig := allowance.CanSelectActivity(entry.Activity, dt.WorkDay)
	if !elig.Allowed {
		observability.RecordIneligible(string(entry.Activity))
		return Record{}, &generic.IneligibleError{Date: date, Activity: string(entry.Activity), Message: elig.Message}
	}

	label := string(entry.Activity)
	if a, ok := allowance.LookupActivity(entry.Activity); ok {
		label = a.Label
	}

	rec := Record{
		StaffID:           entry.StaffID,
		Date:              date,
		Activity:          entry.Activity,
		ActivityLabel:     label,
		Destination:       entry.Destination,
		DestinationDetail: entry.DestinationDetail,
		CompetitionName:   entry.CompetitionName,
		Driving:           entry.Driving,
		Accommodation:     entry.Accommodation,
		HalfDay:           entry.HalfDay,
		WorkDay:           dt.WorkDay,
		DayLabel:          dt.Label,
	}

	if entry.Activity == allowance.ActivityCustom {
		rec.Amount = entry.CustomAmount
		rec.CustomDescription = entry.CustomDescription
		observability.RecordCalculation(string(entry.Activity), observability.PathCustom)
		return rec, nil
	}

	rec.Amount, _ = price(allowance.Input{
		Activity:      entry.Activity,
		Driving:       entry.Driving,
		Destination:   entry.Destination,
		WorkDay:       dt.WorkDay,
		Accommodation: entry.Accommodation,
		HalfDay:       entry.HalfDay,
	}, master)
	return rec, nil
}

// save replaces any existing record for the same staff member and date,
// keeping its ID.
func (s *Service) save(ctx context.Context, rec *Record) error {
	existing, err := s.store.GetRecordOn(ctx, rec.StaffID, rec.Date)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.ID = generic.RecordID(uuid.NewString())
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := s.store.SaveRecord(ctx, *rec); err != nil {
		return fmt.Errorf("save record for %s on %s: %w", rec.StaffID, rec.Date, err)
	}
	observability.RecordWrite("save")
	return nil
}

func (s *Service) clearDay(ctx context.Context, staffID generic.StaffID, date generic.TimePoint) error {
	existing, err := s.store.GetRecordOn(ctx, staffID, date)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if err := s.store.DeleteRecord(ctx, existing.ID); err != nil {
		return err
	}
	observability.RecordWrite("clear")
	return nil
}

// DeleteRecord removes a record, subject to the same locks as editing.
func (s *Service) DeleteRecord(ctx context.Context, actor Actor, id generic.RecordID) error {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("record %s: %w", id, generic.ErrNotFound)
	}
	if err := authorize(actor, rec.StaffID); err != nil {
		return err
	}
	if err := s.checkLocks(ctx, actor, rec.StaffID, []generic.TimePoint{rec.Date}); err != nil {
		return err
	}
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return err
	}
	observability.RecordWrite("clear")
	return nil
}

// ListMonth returns a staff member's records for month in date order.
func (s *Service) ListMonth(ctx context.Context, actor Actor, staffID generic.StaffID, month generic.YearMonth) ([]Record, error) {
	if err := authorize(actor, staffID); err != nil {
		return nil, err
	}
	return s.store.ListRecords(ctx, staffID, month.Period())
}

func (s *Service) checkLocks(ctx context.Context, actor Actor, staffID generic.StaffID, dates []generic.TimePoint) error {
	now := s.now()
	checked := make(map[generic.YearMonth]bool)
	for _, d := range dates {
		month := generic.MonthOf(d)
		if checked[month] {
			continue
		}
		checked[month] = true

		app, err := s.application(ctx, staffID, month)
		if err != nil {
			return err
		}
		if err := s.lock.Check(actor, staffID, month, app.Status, now); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// MONTHLY WORKFLOW
// =============================================================================

// Application returns the month's application, a draft if none is stored.
func (s *Service) Application(ctx context.Context, actor Actor, staffID generic.StaffID, month generic.YearMonth) (Application, error) {
	if err := authorize(actor, staffID); err != nil {
		return Application{}, err
	}
	return s.application(ctx, staffID, month)
}

func (s *Service) application(ctx context.Context, staffID generic.StaffID, month generic.YearMonth) (Application, error) {
	app, err := s.store.GetApplication(ctx, staffID, month)
	if err != nil {
		return Application{}, err
	}
	if app == nil {
		return Application{StaffID: staffID, Month: month, Status: StatusDraft}, nil
	}
	return *app, nil
}

// Submit moves a draft month to submitted. The month must have records.
func (s *Service) Submit(ctx context.Context, actor Actor, staffID generic.StaffID, month generic.YearMonth) (Application, error) {
	if err := authorize(actor, staffID); err != nil {
		return Application{}, err
	}
	records, err := s.store.ListRecords(ctx, staffID, month.Period())
	if err != nil {
		return Application{}, err
	}
	if len(records) == 0 {
		return Application{}, fmt.Errorf("%s %s: %w", staffID, month, generic.ErrNoRecords)
	}

	app, err := s.application(ctx, staffID, month)
	if err != nil {
		return Application{}, err
	}
	if err := transition(&app, StatusSubmitted); err != nil {
		return Application{}, err
	}
	now := s.now().UTC()
	app.SubmittedAt = &now
	app.DecidedAt = nil
	app.DecidedBy = ""
	app.Comment = ""
	return app, s.persist(ctx, app)
}

// Approve moves a submitted month to approved. Admin only.
func (s *Service) Approve(ctx context.Context, actor Actor, staffID generic.StaffID, month generic.YearMonth) (Application, error) {
	return s.decide(ctx, actor, staffID, month, StatusApproved, "")
}

// Return sends a submitted month back to draft so the staff member can
// correct it. Admin only.
func (s *Service) Return(ctx context.Context, actor Actor, staffID generic.StaffID, month generic.YearMonth, comment string) (Application, error) {
	return s.decide(ctx, actor, staffID, month, StatusDraft, comment)
}

func (s *Service) decide(ctx context.Context, actor Actor, staffID generic.StaffID, month generic.YearMonth, to Status, comment string) (Application, error) {
	if !actor.IsAdmin() {
		return Application{}, fmt.Errorf("only administrators can approve or return applications: %w", generic.ErrForbidden)
	}
	app, err := s.application(ctx, staffID, month)
	if err != nil {
		return Application{}, err
	}
	if err := transition(&app, to); err != nil {
		return Application{}, err
	}
	now := s.now().UTC()
	app.DecidedAt = &now
	app.DecidedBy = actor.ID
	app.Comment = comment
	return app, s.persist(ctx, app)
}

func (s *Service) persist(ctx context.Context, app Application) error {
	if err := s.store.SaveApplication(ctx, app); err != nil {
		return fmt.Errorf("save application %s %s: %w", app.StaffID, app.Month, err)
	}
	observability.RecordTransition(string(app.Status))
	return nil
}

// Pending lists applications awaiting a decision. Admin only.
func (s *Service) Pending(ctx context.Context, actor Actor) ([]Application, error) {
	if !actor.IsAdmin() {
		return nil, generic.ErrForbidden
	}
	return s.store.ListApplications(ctx, StatusSubmitted)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summarize totals every staff member's records for month. Admin only.
func (s *Service) Summarize(ctx context.Context, actor Actor, month generic.YearMonth) (MonthSummary, error) {
	if !actor.IsAdmin() {
		return MonthSummary{}, generic.ErrForbidden
	}
	records, err := s.store.ListAllRecords(ctx, month.Period())
	if err != nil {
		return MonthSummary{}, err
	}
	staff, err := s.store.ListStaff(ctx)
	if err != nil {
		return MonthSummary{}, err
	}
	names := make(map[generic.StaffID]string, len(staff))
	for _, st := range staff {
		names[st.ID] = st.Name
	}

	byStaff := make(map[generic.StaffID]*StaffSummary)
	sum := MonthSummary{Month: month, Total: generic.Yen(0)}
	for _, r := range records {
		ss, ok := byStaff[r.StaffID]
		if !ok {
			name := names[r.StaffID]
			if name == "" {
				name = string(r.StaffID)
			}
			ss = &StaffSummary{StaffID: r.StaffID, Name: name, Total: generic.Yen(0)}
			byStaff[r.StaffID] = ss
		}
		ss.Count++
		ss.Total = ss.Total.Add(generic.Yen(r.Amount))
		switch r.Activity {
		case allowance.ActivityOnSiteCamp:
			ss.CampDays++
		case allowance.ActivityExpedition:
			ss.ExpeditionDays++
		}
	}

	for _, ss := range byStaff {
		app, err := s.application(ctx, ss.StaffID, month)
		if err != nil {
			return MonthSummary{}, err
		}
		ss.Status = app.Status

		sum.Staff = append(sum.Staff, *ss)
		sum.Count += ss.Count
		sum.Total = sum.Total.Add(ss.Total)
		sum.CampDays += ss.CampDays
		sum.ExpeditionDays += ss.ExpeditionDays
	}
	sort.Slice(sum.Staff, func(i, j int) bool {
		if sum.Staff[i].Name != sum.Staff[j].Name {
			return sum.Staff[i].Name < sum.Staff[j].Name
		}
		return sum.Staff[i].StaffID < sum.Staff[j].StaffID
	})
	return sum, nil
}

func authorize(actor Actor, staffID generic.StaffID) error {
	if actor.IsAdmin() || actor.ID == staffID {
		return nil
	}
	return fmt.Errorf("%s may not act for %s: %w", actor.ID, staffID, generic.ErrForbidden)
}
