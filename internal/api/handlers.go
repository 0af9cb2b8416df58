// Package api exposes HTTP handlers for the gym tracking service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"example.com/gymtrack/internal/auth"
	"example.com/gymtrack/internal/domain"
	"example.com/gymtrack/internal/observability"
	"example.com/gymtrack/internal/persistence"
	"example.com/gymtrack/internal/report"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	workouts *domain.WorkoutService
	machines *domain.MachineService
	reports  *domain.ReportService
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(workouts *domain.WorkoutService, machines *domain.MachineService, reports *domain.ReportService) *Handler {
	return &Handler{
		workouts: workouts,
		machines: machines,
		reports:  reports,
		validate: validator.New(),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workouts", h.workoutCollection)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/machines", h.machineCollection)
	mux.HandleFunc("/v1/machines/", h.machineByID)
	mux.HandleFunc("/v1/reports/usage", h.usageReport)
	mux.HandleFunc("/v1/reports/progress", h.progressReport)
	mux.HandleFunc("/v1/reports/quality", h.qualityReport)
	mux.HandleFunc("/v1/reports/system", h.systemReport)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) workoutCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getWorkout(w, r, id)
	case http.MethodPut:
		h.updateWorkout(w, r, id)
	case http.MethodDelete:
		h.deleteWorkout(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req LogWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID != claims.Subject && !claims.IsStaff() {
		writeError(w, http.StatusForbidden, "forbidden", "members may only log their own workouts")
		return
	}

	session, err := h.workouts.LogWorkout(r.Context(), domain.LogWorkoutInput{
		UserID:          userID,
		MachineID:       req.MachineID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		AvgHeartRate:    req.AvgHeartRate,
		Distance:        req.Distance,
		AvgSpeed:        req.AvgSpeed,
		ResistanceLevel: req.ResistanceLevel,
		InclineLevel:    req.InclineLevel,
		Notes:           req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	observability.RecordQualityCheck(session.QualityFlag)
	writeJSON(w, http.StatusCreated, toWorkoutView(*session))
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	session, err := h.workouts.GetWorkout(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !claims.CanAccessUser(session.UserID) {
		writeError(w, http.StatusForbidden, "forbidden", "members may only view their own workouts")
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutView(*session))
}

func (h *Handler) updateWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	existing, err := h.workouts.GetWorkout(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !claims.CanAccessUser(existing.UserID) {
		writeError(w, http.StatusForbidden, "forbidden", "members may only edit their own workouts")
		return
	}

	var req UpdateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	session, err := h.workouts.UpdateWorkout(r.Context(), id, domain.UpdateWorkoutInput{
		MachineID:       req.MachineID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		AvgHeartRate:    req.AvgHeartRate,
		Distance:        req.Distance,
		AvgSpeed:        req.AvgSpeed,
		ResistanceLevel: req.ResistanceLevel,
		InclineLevel:    req.InclineLevel,
		Notes:           req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	observability.RecordQualityCheck(session.QualityFlag)
	writeJSON(w, http.StatusOK, toWorkoutView(*session))
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	existing, err := h.workouts.GetWorkout(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !claims.CanAccessUser(existing.UserID) {
		writeError(w, http.StatusForbidden, "forbidden", "members may only delete their own workouts")
		return
	}

	if err := h.workouts.DeleteWorkout(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = claims.Subject
	}
	if !claims.CanAccessUser(userID) {
		writeError(w, http.StatusForbidden, "forbidden", "members may only list their own workouts")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	sessions, next, err := h.workouts.ListWorkoutsByUser(r.Context(), userID, cursor, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	items := make([]WorkoutView, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toWorkoutView(session))
	}

	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) machineCollection(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		machines, err := h.machines.ListMachines(r.Context())
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		items := make([]MachineView, 0, len(machines))
		for _, machine := range machines {
			items = append(items, toMachineView(machine))
		}
		writeJSON(w, http.StatusOK, ListMachinesResponse{Items: items})
	case http.MethodPost:
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		var req CreateMachineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		machine, err := h.machines.CreateMachine(r.Context(), domain.CreateMachineInput{
			Name:                    req.Name,
			Type:                    req.Type,
			Location:                req.Location,
			MaintenanceIntervalDays: req.MaintenanceIntervalDays,
		})
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMachineView(*machine))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) machineByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/machines/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing machine id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		machine, err := h.machines.GetMachine(r.Context(), id)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMachineView(*machine))
	case action == "" && r.Method == http.MethodDelete:
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		if err := h.machines.DeleteMachine(r.Context(), id); err != nil {
			h.writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "status" && r.Method == http.MethodPut:
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		var req UpdateMachineStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		machine, err := h.machines.UpdateStatus(r.Context(), id, domain.MachineStatus(req.Status))
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMachineView(*machine))
	case action == "maintenance" && r.Method == http.MethodPost:
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		machine, err := h.machines.PerformMaintenance(r.Context(), id)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMachineView(*machine))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) usageReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.IsStaff() {
		writeError(w, http.StatusForbidden, "forbidden", "instructor or admin role required")
		return
	}

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	start := time.Now()
	usage, err := h.reports.MachineUsage(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	observability.ObserveReportDuration("usage", time.Since(start))

	switch reportFormat(r) {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="machine-usage.csv"`)
		if err := report.WriteUsageCSV(w, usage); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
	case "xlsx":
		payload, err := report.UsageXLSX(usage)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="machine-usage.xlsx"`)
		_, _ = w.Write(payload)
	default:
		writeJSON(w, http.StatusOK, toUsageView(usage))
	}
}

func (h *Handler) progressReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = claims.Subject
	}
	if !claims.CanAccessUser(userID) {
		writeError(w, http.StatusForbidden, "forbidden", "members may only view their own progress")
		return
	}

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	start := time.Now()
	progress, err := h.reports.MemberProgress(r.Context(), userID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	observability.ObserveReportDuration("progress", time.Since(start))

	switch reportFormat(r) {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="member-progress.csv"`)
		if err := report.WriteProgressCSV(w, progress); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
	case "xlsx":
		payload, err := report.ProgressXLSX(progress)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="member-progress.xlsx"`)
		_, _ = w.Write(payload)
	default:
		writeJSON(w, http.StatusOK, toProgressView(progress))
	}
}

func (h *Handler) qualityReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.IsStaff() {
		writeError(w, http.StatusForbidden, "forbidden", "instructor or admin role required")
		return
	}

	start := time.Now()
	quality, err := h.reports.DataQuality(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	observability.ObserveReportDuration("quality", time.Since(start))

	if reportFormat(r) == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="data-quality.csv"`)
		if err := report.WriteQualityCSV(w, quality); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, toQualityView(quality))
}

func (h *Handler) systemReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.IsStaff() {
		writeError(w, http.StatusForbidden, "forbidden", "instructor or admin role required")
		return
	}

	start := time.Now()
	snapshot, err := h.reports.SystemSnapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	observability.ObserveReportDuration("system", time.Since(start))

	writeJSON(w, http.StatusOK, toSystemView(snapshot))
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", "workout session not found")
	case errors.Is(err, domain.ErrMachineNotFound):
		writeError(w, http.StatusNotFound, "not_found", "machine not found")
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, domain.ErrMachineNameTaken):
		writeError(w, http.StatusConflict, "conflict", "machine name already exists")
	case errors.Is(err, domain.ErrMachineInUse):
		writeError(w, http.StatusConflict, "conflict", "machine has associated workout sessions")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func reportFormat(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
}

// parseRange reads the inclusive from/to query parameters. Date-only values
// extend "to" to the end of that day.
func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := parseTimeParam(r.URL.Query().Get("from"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid from parameter")
		return time.Time{}, time.Time{}, false
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid to parameter")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseTimeParam(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing")
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return ts, nil
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
