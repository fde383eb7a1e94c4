package models

import "time"

// Period is a statistics window in days. PeriodAll has no lower bound.
type Period struct {
	Name string
	Days int
}

var (
	PeriodWeek    = Period{Name: "week", Days: 7}
	PeriodMonth   = Period{Name: "month", Days: 30}
	PeriodQuarter = Period{Name: "3months", Days: 90}
	PeriodYear    = Period{Name: "year", Days: 365}
	PeriodAll     = Period{Name: "all", Days: 0}

	DefaultPeriod = PeriodWeek
)

var periodsByName = map[string]Period{}

func init() {
	for _, p := range []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll} {
		periodsByName[p.Name] = p
	}
}

// ParsePeriod maps a query value to a Period, falling back to a week.
func ParsePeriod(name string) Period {
	if p, ok := periodsByName[name]; ok {
		return p
	}
	return DefaultPeriod
}

func (p Period) Unbounded() bool {
	return p.Days <= 0
}

// Since returns the first calendar date inside the window ending today, or the
// zero time for an unbounded period.
func (p Period) Since(today time.Time) time.Time {
	if p.Unbounded() {
		return time.Time{}
	}
	return today.AddDate(0, 0, -p.Days)
}

type MetricPoint struct {
	Date  time.Time
	Value float64
}

// Statistics is the aggregated view of a user's metrics over one Period.
// Values are unrounded; presentation decides how to round.
type Statistics struct {
	Period          Period
	StartingWeight  *float64
	CurrentWeight   *float64
	WeightDelta     *float64
	AverageCalories float64
	CalorieGoal     *int
	WeightGoal      *float64
	Weights         []MetricPoint
	Calories        []MetricPoint
}

// MonthlyData keys metric values by YYYY-MM-DD for calendar rendering.
type MonthlyData struct {
	Weights  map[string]float64
	Calories map[string]float64
}
