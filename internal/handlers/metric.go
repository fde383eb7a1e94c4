package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

const (
	defaultRecentDays = 30
	maxRecentDays     = 3650
)

// MetricHandler serves /api/weights or /api/calories depending on the kind of
// its service.
type MetricHandler struct {
	metricService services.MetricServiceInterface
	labels        metricLabels
}

type metricLabels struct {
	title      string
	entryTitle string
	entry      string
	plural     string
}

func NewMetricHandler(metricService services.MetricServiceInterface) *MetricHandler {
	labels := metricLabels{title: "Weight", entryTitle: "Weight entry", entry: "weight entry", plural: "weight entries"}
	if metricService.Kind() == models.MetricCalorie {
		labels = metricLabels{title: "Calories", entryTitle: "Calorie entry", entry: "calorie entry", plural: "calorie entries"}
	}
	return &MetricHandler{metricService: metricService, labels: labels}
}

type MetricEntryView struct {
	ID    uuid.UUID `json:"id"`
	Date  string    `json:"date"`
	Value float64   `json:"value"`
}

// MetricListResponse carries either weights or calories, matching the route.
type MetricListResponse struct {
	Envelope
	Weights  *[]MetricEntryView `json:"weights,omitempty"`
	Calories *[]MetricEntryView `json:"calories,omitempty"`
}

func (r MetricListResponse) Entries() []MetricEntryView {
	switch {
	case r.Weights != nil:
		return *r.Weights
	case r.Calories != nil:
		return *r.Calories
	}
	return nil
}

// MetricEntryResponse carries a single weight or calorie entry.
type MetricEntryResponse struct {
	Envelope
	Created *bool            `json:"created,omitempty"`
	Weight  *MetricEntryView `json:"weight,omitempty"`
	Calorie *MetricEntryView `json:"calorie,omitempty"`
}

func (r MetricEntryResponse) Entry() *MetricEntryView {
	if r.Weight != nil {
		return r.Weight
	}
	return r.Calorie
}

type UpsertMetricRequest struct {
	Value float64 `json:"value" validate:"gt=0"`
	Date  string  `json:"date" validate:"required,datetime=2006-01-02"`
}

func newMetricEntryView(e models.MetricEntry) MetricEntryView {
	return MetricEntryView{ID: e.ID, Date: e.Day(), Value: e.Value}
}

func (h *MetricHandler) listResponse(entries []models.MetricEntry) MetricListResponse {
	views := make([]MetricEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newMetricEntryView(e))
	}
	resp := MetricListResponse{Envelope: ok("")}
	if h.metricService.Kind() == models.MetricCalorie {
		resp.Calories = &views
	} else {
		resp.Weights = &views
	}
	return resp
}

func (h *MetricHandler) entryResponse(env Envelope, entry *models.MetricEntry) MetricEntryResponse {
	resp := MetricEntryResponse{Envelope: env}
	if entry == nil {
		return resp
	}
	view := newMetricEntryView(*entry)
	if h.metricService.Kind() == models.MetricCalorie {
		resp.Calorie = &view
	} else {
		resp.Weight = &view
	}
	return resp
}

func (h *MetricHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	entries, err := h.metricService.List(r.Context(), userID)
	if err != nil {
		writeServerError(w, r, "List "+h.labels.plural+" error", err)
		return
	}

	writeJSON(w, http.StatusOK, h.listResponse(entries))
}

// Recent returns entries from the last ?days= days (30 by default), oldest first.
func (h *MetricHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	days := defaultRecentDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRecentDays {
			writeError(w, http.StatusBadRequest, KindValidation, "days must be between 1 and 3650")
			return
		}
		days = parsed
	}

	entries, err := h.metricService.GetRecent(r.Context(), userID, days)
	if err != nil {
		writeServerError(w, r, "Recent "+h.labels.plural+" error", err)
		return
	}

	writeJSON(w, http.StatusOK, h.listResponse(entries))
}

func (h *MetricHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	entry, err := h.metricService.GetLatest(r.Context(), userID)
	if err != nil {
		writeServerError(w, r, "Latest "+h.labels.entry+" error", err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, h.entryResponse(absent("No "+h.labels.plural+" found"), nil))
		return
	}

	writeJSON(w, http.StatusOK, h.entryResponse(ok(""), entry))
}

// ByDate answers 200 with success=false when nothing was logged that day.
func (h *MetricHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	date, err := models.ParseDay(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "date must be a date in YYYY-MM-DD format")
		return
	}

	entry, err := h.metricService.GetByDate(r.Context(), userID, date)
	if err != nil {
		writeServerError(w, r, "Get "+h.labels.entry+" by date error", err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, h.entryResponse(absent("No "+h.labels.entry+" found for this date"), nil))
		return
	}

	writeJSON(w, http.StatusOK, h.entryResponse(ok(""), entry))
}

// Upsert serves both POST and PUT: either creates the entry for the date (201)
// or overwrites it (200).
func (h *MetricHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	var req UpsertMetricRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := models.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "date must be a date in YYYY-MM-DD format")
		return
	}
	limit := h.metricService.Kind().MaxValue()
	rangeMessage := "value must be greater than 0 and less than " + strconv.FormatFloat(limit, 'f', -1, 64)
	if req.Value >= limit {
		writeError(w, http.StatusBadRequest, KindValidation, rangeMessage)
		return
	}

	result, err := h.metricService.Upsert(r.Context(), userID, date, req.Value)
	if errors.Is(err, services.ErrInvalidValue) {
		writeError(w, http.StatusBadRequest, KindValidation, rangeMessage)
		return
	}
	if err != nil {
		writeServerError(w, r, "Save "+h.labels.entry+" error", err)
		return
	}

	status, message := http.StatusOK, h.labels.title+" updated successfully"
	if result.Created {
		status, message = http.StatusCreated, h.labels.title+" added successfully"
	}
	resp := h.entryResponse(ok(message), result.Entry)
	resp.Created = &result.Created
	writeJSON(w, status, resp)
}

func (h *MetricHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	notFound := h.labels.entryTitle + " not found"
	entryID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, KindNotFound, notFound)
		return
	}

	err = h.metricService.Delete(r.Context(), entryID, userID)
	if errors.Is(err, services.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, KindNotFound, notFound)
		return
	}
	if err != nil {
		writeServerError(w, r, "Delete "+h.labels.entry+" error", err)
		return
	}

	writeJSON(w, http.StatusOK, ok(h.labels.entryTitle+" deleted successfully"))
}
