package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/elite30/internal/program"
	"github.com/2beens/elite30/internal/progress"
	"github.com/2beens/elite30/internal/telemetry/metrics"
	"github.com/2beens/elite30/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// MaxProtein is the upper bound of the protein (grams) logged for one day.
const MaxProtein = 300

var ErrValidation = errors.New("validation failed")

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=tracker_test

type progressStore interface {
	Load(ctx context.Context) (*progress.Document, error)
	Save(ctx context.Context, doc *progress.Document) error
	Reset(ctx context.Context) error
}

type DayPlan struct {
	Day           int                  `json:"day"`
	Date          string               `json:"date"`
	Weekday       string               `json:"weekday"`
	Module        program.Module       `json:"module"`
	ProteinTarget int                  `json:"proteinTarget"`
	Supplements   []program.Supplement `json:"supplements"`
	Record        *progress.DayRecord  `json:"record,omitempty"`
	IsCurrent     bool                 `json:"isCurrent"`
	IsFinal       bool                 `json:"isFinal"`
}

type Overview struct {
	CurrentDay      int          `json:"currentDay"`
	CurrentModule   program.Code `json:"currentModule"`
	StartDate       string       `json:"startDate"`
	Weight          float64      `json:"weight"`
	ProteinTarget   int          `json:"proteinTarget"`
	CompletedDays   int          `json:"completedDays"`
	TotalDays       int          `json:"totalDays"`
	CompletionRatio float64      `json:"completionRatio"`
}

type CalendarRow struct {
	Day       int          `json:"day"`
	Date      string       `json:"date"`
	Weekday   string       `json:"weekday"`
	Module    program.Code `json:"module"`
	Completed bool         `json:"completed"`
}

// SettingsUpdate changes the start date and/or the weight. Nil fields are left as they are.
type SettingsUpdate struct {
	StartDate *string  `json:"startDate"`
	Weight    *float64 `json:"weight"`
}

type Completion struct {
	Note        string   `json:"note"`
	Protein     int      `json:"protein"`
	Supplements []string `json:"supplements"`
}

type CompletionResult struct {
	Day              int                `json:"day"`
	Record           progress.DayRecord `json:"record"`
	Advanced         bool               `json:"advanced"`
	ProteinTargetMet bool               `json:"proteinTargetMet"`
	Overview         Overview           `json:"overview"`
}

// Service runs the tracker operations. Every operation loads the document,
// works on that copy and saves it back when it changed it.
type Service struct {
	store   progressStore
	metrics *metrics.Manager
	now     func() time.Time
}

// NewService creates the tracker service. A nil clock means time.Now.
func NewService(store progressStore, metricsManager *metrics.Manager, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:   store,
		metrics: metricsManager,
		now:     clock,
	}
}

// DayPlan returns the plan of a program day; day 0 means the current day.
func (s *Service) DayPlan(ctx context.Context, day int) (_ *DayPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.tracker.dayPlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if day == 0 {
		day = doc.CurrentDay
	}
	span.SetAttributes(attribute.Int("day", day))

	return buildDayPlan(doc, day)
}

func buildDayPlan(doc *progress.Document, day int) (*DayPlan, error) {
	module, err := program.ModuleForDay(day)
	if err != nil {
		return nil, err
	}
	date, err := doc.DateForDay(day)
	if err != nil {
		return nil, err
	}

	plan := &DayPlan{
		Day:           day,
		Date:          date.Format(progress.DateLayout),
		Weekday:       date.Weekday().String()[:3],
		Module:        module,
		ProteinTarget: doc.ProteinTarget(),
		Supplements:   program.Supplements(),
		IsCurrent:     day == doc.CurrentDay,
		IsFinal:       program.IsFinalDay(day),
	}
	if rec, ok := doc.Record(day); ok {
		plan.Record = &rec
	}

	return plan, nil
}

func (s *Service) Overview(ctx context.Context) (_ *Overview, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.tracker.overview")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	overview := buildOverview(doc)
	return &overview, nil
}

func buildOverview(doc *progress.Document) Overview {
	currentModule, err := program.CodeForDay(doc.CurrentDay)
	if err != nil {
		// loaded documents are validated, so this is a document built in code
		log.Errorf("overview: %s", err)
	}
	return Overview{
		CurrentDay:      doc.CurrentDay,
		CurrentModule:   currentModule,
		StartDate:       doc.StartDate,
		Weight:          doc.Weight,
		ProteinTarget:   doc.ProteinTarget(),
		CompletedDays:   doc.CompletedDays(),
		TotalDays:       program.Days,
		CompletionRatio: doc.CompletionRatio(),
	}
}

// UpdateSettings applies the update and saves the document right away.
func (s *Service) UpdateSettings(ctx context.Context, update SettingsUpdate) (_ *Overview, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.tracker.updateSettings")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if update.StartDate == nil && update.Weight == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	var startDate time.Time
	if update.StartDate != nil {
		startDate, err = time.Parse(progress.DateLayout, *update.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start date [%s] must be YYYY-MM-DD", ErrValidation, *update.StartDate)
		}
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if update.StartDate != nil {
		doc.SetStartDate(startDate)
	}
	if update.Weight != nil {
		if err := doc.SetWeight(*update.Weight); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}

	log.Debugf("settings updated: start date %s, weight %v", doc.StartDate, doc.Weight)
	overview := buildOverview(doc)
	return &overview, nil
}

// CompleteDay marks the day as completed with the submitted note, protein and supplements.
// Resubmitting a day overwrites its earlier record.
func (s *Service) CompleteDay(ctx context.Context, day int, completion Completion) (_ *CompletionResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.tracker.completeDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("day", day))

	if err := program.ValidateDay(day); err != nil {
		return nil, err
	}
	if err := validateCompletion(completion); err != nil {
		return nil, err
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	advanced, err := doc.CompleteDay(day, progress.Entry{
		Note:        completion.Note,
		Protein:     completion.Protein,
		Supplements: completion.Supplements,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterDaysCompleted.Inc()
	}
	span.SetAttributes(attribute.Bool("advanced", advanced))
	log.Debugf("day %d completed, advanced: %t, current day: %d", day, advanced, doc.CurrentDay)

	rec, _ := doc.Record(day)
	return &CompletionResult{
		Day:              day,
		Record:           rec,
		Advanced:         advanced,
		ProteinTargetMet: completion.Protein >= doc.ProteinTarget(),
		Overview:         buildOverview(doc),
	}, nil
}

func validateCompletion(completion Completion) error {
	if completion.Protein < 0 || completion.Protein > MaxProtein {
		return fmt.Errorf("%w: protein must be between 0 and %d, got %d", ErrValidation, MaxProtein, completion.Protein)
	}
	seen := make(map[string]bool, len(completion.Supplements))
	for _, code := range completion.Supplements {
		if !program.IsSupplement(code) {
			return fmt.Errorf("%w: unknown supplement [%s]", ErrValidation, code)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate supplement [%s]", ErrValidation, code)
		}
		seen[code] = true
	}
	return nil
}

func (s *Service) Reset(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.tracker.reset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.store.Reset(ctx)
}

// Calendar returns one row per program day.
func (s *Service) Calendar(ctx context.Context) (_ []CalendarRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.tracker.calendar")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	start, err := doc.Start()
	if err != nil {
		return nil, err
	}

	rows := make([]CalendarRow, 0, program.Days)
	for day, code := range program.Schedule() {
		date := start.AddDate(0, 0, day)
		rows = append(rows, CalendarRow{
			Day:       day + 1,
			Date:      date.Format(progress.DateLayout),
			Weekday:   date.Weekday().String()[:3],
			Module:    code,
			Completed: doc.IsCompleted(day + 1),
		})
	}

	return rows, nil
}
