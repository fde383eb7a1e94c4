package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

type StatisticsHandler struct {
	statsService services.StatisticsServiceInterface
	now          func() time.Time
}

func NewStatisticsHandler(statsService services.StatisticsServiceInterface) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService, now: time.Now}
}

type SeriesView struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
	Goal   *int      `json:"goal,omitempty"`
}

type StatisticsView struct {
	Period          string     `json:"period"`
	StartingWeight  *float64   `json:"startingWeight"`
	CurrentWeight   *float64   `json:"currentWeight"`
	WeightChange    *float64   `json:"weightChange"`
	WeightGoal      *float64   `json:"weightGoal"`
	CalorieGoal     *int       `json:"calorieGoal"`
	AverageCalories int64      `json:"averageCalories"`
	WeightData      SeriesView `json:"weightData"`
	CalorieData     SeriesView `json:"calorieData"`
}

type StatisticsResponse struct {
	Envelope
	Statistics *StatisticsView `json:"statistics,omitempty"`
}

type MonthlyDataResponse struct {
	Envelope
	Weights  map[string]float64 `json:"weights"`
	Calories map[string]float64 `json:"calories"`
}

func newSeriesView(points []models.MetricPoint) SeriesView {
	series := SeriesView{
		Dates:  make([]string, 0, len(points)),
		Values: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		series.Dates = append(series.Dates, p.Date.Format(models.DateLayout))
		series.Values = append(series.Values, p.Value)
	}
	return series
}

// newStatisticsView is where aggregate figures get rounded for display.
func newStatisticsView(s *models.Statistics) *StatisticsView {
	view := &StatisticsView{
		Period:          s.Period.Name,
		StartingWeight:  s.StartingWeight,
		CurrentWeight:   s.CurrentWeight,
		WeightGoal:      s.WeightGoal,
		CalorieGoal:     s.CalorieGoal,
		AverageCalories: int64(math.Round(s.AverageCalories)),
		WeightData:      newSeriesView(s.Weights),
		CalorieData:     newSeriesView(s.Calories),
	}
	view.CalorieData.Goal = s.CalorieGoal
	if s.WeightDelta != nil {
		change := math.Round(*s.WeightDelta*100) / 100
		view.WeightChange = &change
	}
	return view
}

func (h *StatisticsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	period := models.ParsePeriod(r.URL.Query().Get("period"))
	stats, err := h.statsService.Summarize(r.Context(), userID, period)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, KindUserNotFound, "User not found")
		return
	}
	if err != nil {
		writeServerError(w, r, "Get statistics error", err)
		return
	}

	writeJSON(w, http.StatusOK, StatisticsResponse{Envelope: ok(""), Statistics: newStatisticsView(stats)})
}

// MonthlyData serves the calendar view. Missing year or month default to the
// current ones.
func (h *StatisticsHandler) MonthlyData(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	now := h.now()
	year, month := now.Year(), int(now.Month())
	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 || parsed > 9999 {
			writeError(w, http.StatusBadRequest, KindValidation, "year must be a four-digit year")
			return
		}
		year = parsed
	}
	if raw := q.Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, KindValidation, "month must be between 1 and 12")
			return
		}
		month = parsed
	}

	data, err := h.statsService.MonthlyData(r.Context(), userID, year, time.Month(month))
	if errors.Is(err, services.ErrInvalidMonth) {
		writeError(w, http.StatusBadRequest, KindValidation, "month must be between 1 and 12")
		return
	}
	if err != nil {
		writeServerError(w, r, "Get monthly data error", err)
		return
	}

	writeJSON(w, http.StatusOK, MonthlyDataResponse{
		Envelope: ok(""),
		Weights:  data.Weights,
		Calories: data.Calories,
	})
}
