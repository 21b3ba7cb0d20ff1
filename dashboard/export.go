package dashboard

import (
	"fmt"
	"net/http"
	"net/url"

	"economic/client"
	"economic/summary"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type seriesResponse struct {
	Period string             `json:"period"`
	Total  float64            `json:"total"`
	Pie    []summary.PiePoint `json:"pie"`
	Bar    []summary.BarPoint `json:"bar"`
	Cards  summary.Cards      `json:"cards"`
}

// series returns the chart data of one record type for the period.
func (s *Server) series(c *gin.Context) {
	kind := c.Query("kind")
	if kind != client.TypeIncome && kind != client.TypeExpense {
		c.JSON(http.StatusBadRequest, gin.H{"message": "kind must be income or expense"})
		return
	}
	acc := currentAccount(c)
	records, err := acc.records(kind).ListMine(c.Request.Context())
	if err != nil {
		c.JSON(statusOf(err), gin.H{"message": client.FriendlyMessage(err, "Could not load "+kind+" data.")})
		return
	}
	p := periodFrom(c, s.now(), false)
	filtered := summary.Filter(records, p)
	totals := summary.ByCategory(filtered, kind)
	c.JSON(http.StatusOK, seriesResponse{
		Period: p.Label(),
		Total:  summary.Total(filtered),
		Pie:    summary.PieSeries(totals),
		Bar:    summary.BarSeries(totals),
		Cards:  summary.CardsOf(records, p),
	})
}

func statusOf(err error) int {
	if code := client.StatusCode(err); code != 0 {
		return code
	}
	return http.StatusBadGateway
}

// export writes the period's income and expenses to an xlsx workbook.
func (s *Server) export(c *gin.Context) {
	acc := currentAccount(c)
	p := periodFrom(c, s.now(), false)

	income, expense, err := fetchBoth(c, acc)
	if err != nil {
		c.Redirect(http.StatusSeeOther, withNotice(periodURL("/dashboard", p), client.FriendlyMessage(err, "Export failed.")))
		return
	}

	f, err := buildWorkbook(summary.Filter(income, p), summary.Filter(expense, p), p)
	if err != nil {
		s.log.WithError(err).Error("build workbook")
		c.Redirect(http.StatusSeeOther, withNotice(periodURL("/dashboard", p), "Export failed."))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("economy_%s.xlsx", p.Label())
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	if err := f.Write(c.Writer); err != nil {
		s.log.WithError(err).Error("write workbook")
	}
}

var border = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type sheetStyles struct {
	header, data, total int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var st sheetStyles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return st, err
	}
	if st.data, err = f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return st, err
	}
	st.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border: border,
	})
	return st, err
}

// buildWorkbook lays out one sheet per record type and a summary sheet.
func buildWorkbook(income, expense []client.Record, p summary.Period) (*excelize.File, error) {
	f := excelize.NewFile()
	st, err := newSheetStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		f.Close()
		return nil, err
	}
	for _, sheet := range []struct {
		name    string
		records []client.Record
	}{{"Income", income}, {"Expenses", expense}} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			f.Close()
			return nil, err
		}
		writeRecords(f, sheet.name, sheet.records, st)
	}

	ov := summary.OverviewOf(income, expense, p)
	rows := [][]interface{}{
		{"Period", p.Label()},
		{"Income", ov.Income},
		{"Expenses", ov.Expense},
		{"Net result", ov.Net},
	}
	f.SetColWidth("Summary", "A", "A", 16)
	f.SetColWidth("Summary", "B", "B", 18)
	for i, row := range rows {
		f.SetSheetRow("Summary", fmt.Sprintf("A%d", i+1), &row)
	}
	f.SetCellStyle("Summary", "A1", fmt.Sprintf("A%d", len(rows)), st.header)
	f.SetCellStyle("Summary", "B1", fmt.Sprintf("B%d", len(rows)), st.data)
	return f, nil
}

func writeRecords(f *excelize.File, sheet string, records []client.Record, st sheetStyles) {
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 30)
	f.SetColWidth(sheet, "D", "D", 14)

	headers := []string{"Date", "Category", "Description", "Amount"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, st.header)
	}

	var total float64
	for i, r := range records {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), datePart(r))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Category.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Description)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Value())
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), st.data)
		total += r.Value()
	}

	totalRow := len(records) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.MergeCell(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("B%d", totalRow))
	f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("%d records", len(records)))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), total)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("D%d", totalRow), st.total)
}
