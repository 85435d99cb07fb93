package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart_apartment/models"
	"smart_apartment/services"
)

// ReportsAPI выгрузка отчетов
type ReportsAPI struct {
	reports *services.ReportService
}

// NewReportsAPI создает новый экземпляр ReportsAPI
func NewReportsAPI(reports *services.ReportService) *ReportsAPI {
	return &ReportsAPI{reports: reports}
}

// DownloadReport формирует отчет и отдает его файлом. Формат по умолчанию json.
func (api *ReportsAPI) DownloadReport(c *gin.Context) {
	format := models.ReportFormatJSON
	if raw := c.Query("format"); raw != "" {
		parsed, err := models.ParseReportFormat(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		format = parsed
	}
	reportType, err := models.ParseReportType(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := api.reports.Generate(c.Request.Context(), reportType, format, &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", reportType, time.Now().Format("20060102_150405"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
