package summary

import (
	"fmt"
	"time"

	"economic/client"
)

// Period is the selected year, or month of a year when Monthly is set.
type Period struct {
	Year    int
	Month   time.Month
	Monthly bool
}

// CurrentPeriod is the month containing now.
func CurrentPeriod(now time.Time, monthly bool) Period {
	return Period{Year: now.Year(), Month: now.Month(), Monthly: monthly}
}

// Contains reports whether t falls in p.
func (p Period) Contains(t time.Time) bool {
	if t.Year() != p.Year {
		return false
	}
	return !p.Monthly || t.Month() == p.Month
}

// Label is "2024" or "January 2024".
func (p Period) Label() string {
	if p.Monthly {
		return fmt.Sprintf("%s %d", p.Month, p.Year)
	}
	return fmt.Sprintf("%d", p.Year)
}

// Prev is the previous month or year.
func (p Period) Prev() Period {
	if !p.Monthly {
		p.Year--
		return p
	}
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	p.Year, p.Month = t.Year(), t.Month()
	return p
}

// Next is the following month or year.
func (p Period) Next() Period {
	if !p.Monthly {
		p.Year++
		return p
	}
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	p.Year, p.Month = t.Year(), t.Month()
	return p
}

// Filter keeps the records dated inside p, in their original order.
// Records with an unreadable date are dropped.
func Filter(records []client.Record, p Period) []client.Record {
	out := make([]client.Record, 0, len(records))
	for _, r := range records {
		if t, ok := r.Time(); ok && p.Contains(t) {
			out = append(out, r)
		}
	}
	return out
}

// Overview is the income, expense and net result of a period.
type Overview struct {
	Income  float64
	Expense float64
	Net     float64
}

// OverviewOf computes the dashboard cards for p.
func OverviewOf(income, expense []client.Record, p Period) Overview {
	in := Total(Filter(income, p))
	out := Total(Filter(expense, p))
	return Overview{Income: in, Expense: out, Net: in - out}
}

// Cards are the three summary figures of a budget or spending page.
type Cards struct {
	YearTotal      float64 `json:"yearTotal"`
	MonthTotal     float64 `json:"monthTotal"`
	AverageMonthly float64 `json:"averageMonthly"`
}

// CardsOf computes the cards for the month and year of p.
func CardsOf(records []client.Record, p Period) Cards {
	year := YearTotal(records, p.Year)
	return Cards{
		YearTotal:      year,
		MonthTotal:     MonthTotal(records, p.Month, p.Year),
		AverageMonthly: AverageMonthly(year, MonthIndex(p.Month)),
	}
}
