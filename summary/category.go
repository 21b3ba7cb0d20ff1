package summary

import "economic/client"

// CategoryTotal is the sum and count of one category.
type CategoryTotal struct {
	Name  string
	Total float64
	Count int
}

// PiePoint is one slice of the pie chart.
type PiePoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BarPoint is one bar of the category analysis chart.
type BarPoint struct {
	Category    string  `json:"category"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

// ByCategory groups records whose category has type typ by category name,
// in order of first appearance. An empty typ keeps every record.
func ByCategory(records []client.Record, typ string) []CategoryTotal {
	index := map[string]int{}
	var out []CategoryTotal
	for _, r := range records {
		if typ != "" && r.Category.Type != typ {
			continue
		}
		i, ok := index[r.Category.Name]
		if !ok {
			i = len(out)
			index[r.Category.Name] = i
			out = append(out, CategoryTotal{Name: r.Category.Name})
		}
		out[i].Total += r.Value()
		out[i].Count++
	}
	return out
}

// PieSeries is the {name,value} view of totals.
func PieSeries(totals []CategoryTotal) []PiePoint {
	out := make([]PiePoint, len(totals))
	for i, t := range totals {
		out[i] = PiePoint{Name: t.Name, Value: t.Total}
	}
	return out
}

// BarSeries is the {category,count,totalAmount} view of totals.
func BarSeries(totals []CategoryTotal) []BarPoint {
	out := make([]BarPoint, len(totals))
	for i, t := range totals {
		out[i] = BarPoint{Category: t.Name, Count: t.Count, TotalAmount: t.Total}
	}
	return out
}
