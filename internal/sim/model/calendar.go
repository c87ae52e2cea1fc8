package model

import "fmt"

const (
	WeeksPerMonth   = 4
	MonthsPerSeason = 12
)

// Calendar tracks the in-game date. Week is the absolute week counter and
// starts at 1; the other fields are 1-based positions within it.
type Calendar struct {
	Week        uint64 `json:"week"`
	WeekOfMonth int    `json:"week_of_month"`
	Month       int    `json:"month"`
	Season      int    `json:"season"`
}

func NewCalendar() Calendar {
	return Calendar{Week: 1, WeekOfMonth: 1, Month: 1, Season: 1}
}

// Advance moves to the next week and reports which boundaries the
// finished week closed.
func (c *Calendar) Advance() (monthEnded, seasonEnded bool) {
	c.Week++
	c.WeekOfMonth++
	if c.WeekOfMonth <= WeeksPerMonth {
		return false, false
	}
	c.WeekOfMonth = 1
	c.Month++
	if c.Month <= MonthsPerSeason {
		return true, false
	}
	c.Month = 1
	c.Season++
	return true, true
}

// EndsMonth reports whether the current week is the last of its month.
func (c Calendar) EndsMonth() bool { return c.WeekOfMonth == WeeksPerMonth }

func (c Calendar) Valid() bool {
	return c.Week >= 1 &&
		c.WeekOfMonth >= 1 && c.WeekOfMonth <= WeeksPerMonth &&
		c.Month >= 1 && c.Month <= MonthsPerSeason &&
		c.Season >= 1
}

func (c Calendar) String() string {
	return fmt.Sprintf("S%d M%02d W%d (#%d)", c.Season, c.Month, c.WeekOfMonth, c.Week)
}
