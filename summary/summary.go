// Package summary derives totals and chart series from income and expense
// records. Every function is pure and linear in the number of records.
package summary

import (
	"time"

	"economic/client"
)

// YearTotal sums the records dated in year.
func YearTotal(records []client.Record, year int) float64 {
	var sum float64
	for _, r := range records {
		if t, ok := r.Time(); ok && t.Year() == year {
			sum += r.Value()
		}
	}
	return sum
}

// MonthTotal sums the records dated in month of year.
func MonthTotal(records []client.Record, month time.Month, year int) float64 {
	var sum float64
	for _, r := range records {
		if t, ok := r.Time(); ok && t.Year() == year && t.Month() == month {
			sum += r.Value()
		}
	}
	return sum
}

// MonthIndex is the 0-based index of m.
func MonthIndex(m time.Month) int {
	return int(m) - 1
}

// AverageMonthly divides yearTotal by the number of months up to and
// including monthIndex (0-based). The divisor is the selected month even
// when the year is already over, so December of a past year divides by 12
// but March of a past year divides by 3.
func AverageMonthly(yearTotal float64, monthIndex int) float64 {
	if monthIndex+1 <= 0 {
		return 0
	}
	return yearTotal / float64(monthIndex+1)
}

// Monthly returns the total of each month of year, January first.
func Monthly(records []client.Record, year int) [12]float64 {
	var out [12]float64
	for _, r := range records {
		if t, ok := r.Time(); ok && t.Year() == year {
			out[MonthIndex(t.Month())] += r.Value()
		}
	}
	return out
}

// Total sums all records.
func Total(records []client.Record) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Value()
	}
	return sum
}
