package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"economic/database"
	"economic/middleware"
	"economic/models"

	"github.com/gin-gonic/gin"
)

// ExportCSV writes the caller's records between start and end as CSV
// @Summary Export my records as CSV
// @Description Records dated from start to end inclusive, oldest first
// @Tags records
// @Produce text/csv
// @Security BearerAuth
// @Param start query string true "first day (2024-01-01)"
// @Param end query string true "last day (2024-12-31)"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /income/export [get]
// @Router /expense/export [get]
func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	startStr, endStr := c.Query("start"), c.Query("end")
	if startStr == "" || endStr == "" {
		BadRequest(c, "start and end are required")
		return
	}
	start, err := time.Parse(models.DateLayout, startStr)
	if err != nil {
		BadRequest(c, "start must be formatted as "+models.DateLayout)
		return
	}
	end, err := time.Parse(models.DateLayout, endStr)
	if err != nil {
		BadRequest(c, "end must be formatted as "+models.DateLayout)
		return
	}
	if end.Before(start) {
		BadRequest(c, "end must not be before start")
		return
	}

	var list []models.Transaction
	err = withCategory(database.DB).
		Where("user_id = ? AND kind = ? AND date >= ? AND date <= ?", middleware.GetCurrentUserID(c), h.kind, start, end).
		Order("date ASC").
		Find(&list).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "exporting records failed"))
		return
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"id", "date", "category", "amount", "description"}); err != nil {
		InternalError(c, "writing CSV failed")
		return
	}
	for _, t := range list {
		row := []string{
			t.ID,
			t.Date.Format(models.DateLayout),
			t.Category.Name,
			models.FormatAmount(t.Amount),
			t.Description,
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "writing CSV failed")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "writing CSV failed")
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", h.kind, startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
