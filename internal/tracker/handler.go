package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/2beens/elite30/internal/middleware"
	"github.com/2beens/elite30/internal/program"
	"github.com/2beens/elite30/internal/progress"
	"github.com/2beens/elite30/internal/telemetry/metrics"
	"github.com/2beens/elite30/internal/telemetry/tracing"
	"github.com/2beens/elite30/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxRequestBodyBytes = 64 * 1024

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the program and progress routes. When rateLimiter is
// not nil, the routes that write progress are limited to writesPerMin.
func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	writesPerMin int,
) {
	limited := func(h http.HandlerFunc) http.Handler {
		if rateLimiter == nil || writesPerMin <= 0 {
			return h
		}
		return middleware.RateLimit(rateLimiter, "progress-writes", writesPerMin, metricsManager)(h)
	}

	router.HandleFunc("/program/modules", handler.HandleModules).Methods("GET", "OPTIONS").Name("program-modules")
	router.HandleFunc("/program/day/{day}", handler.HandleProgramDay).Methods("GET", "OPTIONS").Name("program-day")

	router.HandleFunc("/progress", handler.HandleOverview).Methods("GET", "OPTIONS").Name("progress-overview")
	router.HandleFunc("/progress/today", handler.HandleDayPlan).Methods("GET", "OPTIONS").Name("progress-today")
	router.HandleFunc("/progress/day/{day}", handler.HandleDayPlan).Methods("GET", "OPTIONS").Name("progress-day")
	router.HandleFunc("/progress/calendar", handler.HandleCalendar).Methods("GET", "OPTIONS").Name("progress-calendar")

	router.Handle("/progress/settings", limited(handler.HandleUpdateSettings)).Methods("PUT", "OPTIONS").Name("progress-settings")
	router.Handle("/progress/day/{day}/complete", limited(handler.HandleCompleteDay)).Methods("POST", "OPTIONS").Name("progress-complete-day")
	router.Handle("/progress/reset", limited(handler.HandleReset)).Methods("POST", "OPTIONS").Name("progress-reset")
}

func (handler *Handler) HandleModules(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.modules")
	defer span.End()

	pkg.WriteJSON(w, struct {
		Modules       []program.Module     `json:"modules"`
		WeeklyPattern []program.Code       `json:"weeklyPattern"`
		Schedule      []program.Code       `json:"schedule"`
		Supplements   []program.Supplement `json:"supplements"`
	}{
		Modules:       program.Modules(),
		WeeklyPattern: program.WeeklyPattern(),
		Schedule:      program.Schedule(),
		Supplements:   program.Supplements(),
	}, http.StatusOK)
}

func (handler *Handler) HandleProgramDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.day")
	defer span.End()

	day, err := dayFromPath(r)
	if err != nil {
		handler.writeError(w, "get program day", err)
		return
	}

	module, err := program.ModuleForDay(day)
	if err != nil {
		handler.writeError(w, "get program day", err)
		return
	}

	pkg.WriteJSON(w, struct {
		Day     int            `json:"day"`
		IsFinal bool           `json:"isFinal"`
		Module  program.Module `json:"module"`
	}{
		Day:     day,
		IsFinal: program.IsFinalDay(day),
		Module:  module,
	}, http.StatusOK)
}

func (handler *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.overview")
	defer span.End()

	overview, err := handler.service.Overview(ctx)
	if err != nil {
		handler.writeError(w, "get overview", err)
		return
	}

	pkg.WriteJSON(w, overview, http.StatusOK)
}

// HandleDayPlan serves both /progress/day/{day} and /progress/today.
func (handler *Handler) HandleDayPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.dayPlan")
	defer span.End()

	day := 0 // current day
	if _, ok := mux.Vars(r)["day"]; ok {
		var err error
		if day, err = dayFromPath(r); err != nil {
			handler.writeError(w, "get day plan", err)
			return
		}
	}

	plan, err := handler.service.DayPlan(ctx, day)
	if err != nil {
		handler.writeError(w, "get day plan", err)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.calendar")
	defer span.End()

	rows, err := handler.service.Calendar(ctx)
	if err != nil {
		handler.writeError(w, "get calendar", err)
		return
	}

	pkg.WriteJSON(w, struct {
		Days []CalendarRow `json:"days"`
	}{
		Days: rows,
	}, http.StatusOK)
}

func (handler *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.updateSettings")
	defer span.End()

	var update SettingsUpdate
	if err := decodeBody(r, &update); err != nil {
		handler.writeError(w, "update settings", err)
		return
	}

	overview, err := handler.service.UpdateSettings(ctx, update)
	if err != nil {
		handler.writeError(w, "update settings", err)
		return
	}

	pkg.WriteJSON(w, overview, http.StatusOK)
}

func (handler *Handler) HandleCompleteDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.completeDay")
	defer span.End()

	day, err := dayFromPath(r)
	if err != nil {
		handler.writeError(w, "complete day", err)
		return
	}

	var completion Completion
	if err := decodeBody(r, &completion); err != nil {
		handler.writeError(w, "complete day", err)
		return
	}

	result, err := handler.service.CompleteDay(ctx, day, completion)
	if err != nil {
		handler.writeError(w, "complete day", err)
		return
	}

	log.Infof("day %d completed, current day now %d", day, result.Overview.CurrentDay)
	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.reset")
	defer span.End()

	if err := handler.service.Reset(ctx); err != nil {
		handler.writeError(w, "reset progress", err)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"reset":true}`)
}

func (handler *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, program.ErrInvalidDay), errors.Is(err, ErrValidation):
		log.Debugf("%s: bad request: %s", op, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, progress.ErrConnection):
		log.Errorf("%s: %s", op, err)
		http.Error(w, "progress store unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, progress.ErrStorageWrite):
		log.Errorf("%s: %s", op, err)
		http.Error(w, "failed to sync progress", http.StatusBadGateway)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func dayFromPath(r *http.Request) (int, error) {
	dayStr := mux.Vars(r)["day"]
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return 0, fmt.Errorf("%w: [%s] is not a number", program.ErrInvalidDay, dayStr)
	}
	if err := program.ValidateDay(day); err != nil {
		return 0, err
	}
	return day, nil
}

// decodeBody reads an optional json body into v. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) > maxRequestBodyBytes {
		return fmt.Errorf("%w: request body too large", ErrValidation)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid json body: %s", ErrValidation, err)
	}
	return nil
}
