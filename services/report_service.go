package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"smart_apartment/models"
)

// ReportService формирует выгрузки по оборудованию, заявкам и журналу
type ReportService struct {
	equipment   *EquipmentService
	maintenance *MaintenanceService
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(equipment *EquipmentService, maintenance *MaintenanceService) *ReportService {
	return &ReportService{equipment: equipment, maintenance: maintenance}
}

// ReportData представляет данные для отчета
type ReportData struct {
	Title   string                   `json:"title"`
	Headers []string                 `json:"headers"`
	Rows    []map[string]interface{} `json:"rows"`
	Summary map[string]interface{}   `json:"summary,omitempty"`
}

// Generate пишет отчет в w в указанном формате
func (rs *ReportService) Generate(ctx context.Context, reportType models.ReportType, format models.ReportFormat, w io.Writer) error {
	data, err := rs.GetReportData(ctx, reportType)
	if err != nil {
		return err
	}

	switch format {
	case models.ReportFormatCSV:
		return rs.writeCSV(data, w)
	case models.ReportFormatExcel:
		return rs.writeExcel(data, w)
	case models.ReportFormatPDF:
		return rs.writePDF(data, w)
	case models.ReportFormatJSON:
		return rs.writeJSON(data, w)
	default:
		return models.NewValidationError("format", fmt.Sprintf("неподдерживаемый формат: %s", format))
	}
}

// GetReportData получает данные для отчета в зависимости от типа
func (rs *ReportService) GetReportData(ctx context.Context, reportType models.ReportType) (*ReportData, error) {
	switch reportType {
	case models.ReportTypeInventory:
		return rs.getInventoryReportData(ctx)
	case models.ReportTypeMaintenance:
		return rs.getMaintenanceReportData(ctx)
	case models.ReportTypeHistory:
		return rs.getHistoryReportData(ctx)
	default:
		return nil, models.NewValidationError("kind", fmt.Sprintf("неподдерживаемый тип отчета: %s", reportType))
	}
}

func (rs *ReportService) getInventoryReportData(ctx context.Context) (*ReportData, error) {
	items, err := rs.equipment.List(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := rs.equipment.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	value, err := rs.equipment.GetTotalInventoryValue(ctx)
	if err != nil {
		return nil, err
	}

	data := &ReportData{
		Title:   "Inventory",
		Headers: []string{"ID", "Name", "Type", "Location", "Status", "Condition", "Purchase Date", "Cost"},
		Rows:    make([]map[string]interface{}, 0, len(items)),
		Summary: map[string]interface{}{
			"total":        stats.Total(),
			"active":       stats.Active,
			"faulty":       stats.Faulty,
			"under_repair": stats.UnderRepair,
			"total_value":  value.StringFixed(2),
		},
	}
	for _, item := range items {
		data.Rows = append(data.Rows, map[string]interface{}{
			"ID":            item.ID,
			"Name":          item.Name,
			"Type":          item.TypeName(),
			"Location":      item.Location,
			"Status":        string(item.Status),
			"Condition":     item.Condition(),
			"Purchase Date": item.PurchaseDate.Format("2006-01-02"),
			"Cost":          item.InitialCost.StringFixed(2),
		})
	}
	return data, nil
}

func (rs *ReportService) getMaintenanceReportData(ctx context.Context) (*ReportData, error) {
	orders, err := rs.maintenance.ListWorkOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	total, err := rs.maintenance.GetTotalMaintenanceCost(ctx)
	if err != nil {
		return nil, err
	}

	data := &ReportData{
		Title:   "Maintenance",
		Headers: []string{"ID", "Equipment", "Description", "Status", "Created", "Strategy", "Note", "Cost"},
		Rows:    make([]map[string]interface{}, 0, len(orders)),
		Summary: map[string]interface{}{
			"work_orders": len(orders),
			"total_cost":  total.StringFixed(2),
		},
	}
	for _, order := range orders {
		data.Rows = append(data.Rows, map[string]interface{}{
			"ID":          order.ID,
			"Equipment":   order.EquipmentName,
			"Description": order.Description,
			"Status":      string(order.Status),
			"Created":     order.CreatedAt.Format("2006-01-02 15:04"),
			"Strategy":    order.StrategyUsed,
			"Note":        order.TechnicianNote,
			"Cost":        order.Cost.StringFixed(2),
		})
	}
	return data, nil
}

func (rs *ReportService) getHistoryReportData(ctx context.Context) (*ReportData, error) {
	logs, err := rs.equipment.ListHistory(ctx, "")
	if err != nil {
		return nil, err
	}

	data := &ReportData{
		Title:   "History",
		Headers: []string{"Timestamp", "Action", "Target", "Details"},
		Rows:    make([]map[string]interface{}, 0, len(logs)),
		Summary: map[string]interface{}{"entries": len(logs)},
	}
	for _, entry := range logs {
		data.Rows = append(data.Rows, map[string]interface{}{
			"Timestamp": entry.Timestamp.Format("2006-01-02 15:04:05"),
			"Action":    string(entry.Action),
			"Target":    entry.TargetID,
			"Details":   entry.Details,
		})
	}
	return data, nil
}

// writeCSV генерирует CSV отчет
func (rs *ReportService) writeCSV(data *ReportData, w io.Writer) error {
	writer := csv.NewWriter(w)

	// Записываем заголовки
	if err := writer.Write(data.Headers); err != nil {
		return err
	}

	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			if value, ok := row[header]; ok {
				record[i] = fmt.Sprintf("%v", value)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeExcel генерирует Excel отчет
func (rs *ReportService) writeExcel(data *ReportData, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close Excel file: %v", err)
		}
	}()

	sheetName := data.Title
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, row := range data.Rows {
		for colIdx, header := range data.Headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if value, ok := row[header]; ok {
				f.SetCellValue(sheetName, cell, value)
			}
		}
	}

	// Добавляем автофильтр
	endCell, _ := excelize.CoordinatesToCellName(len(data.Headers), len(data.Rows)+1)
	if err := f.AutoFilter(sheetName, "A1:"+endCell, []excelize.AutoFilterOptions{}); err != nil {
		return err
	}

	return f.Write(w)
}

// writePDF генерирует PDF отчет
func (rs *ReportService) writePDF(data *ReportData, w io.Writer) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)

	pdf.Cell(40, 10, tr(fmt.Sprintf("Smart Apartment - %s report", data.Title)))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 10, time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(12)

	colWidth := 270.0 / float64(len(data.Headers))
	pdf.SetFont("Arial", "B", 8)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 7, tr(header), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	// Ограничиваем количество строк для PDF
	pdf.SetFont("Arial", "", 7)
	maxRows := 200
	for i, row := range data.Rows {
		if i >= maxRows {
			pdf.Cell(40, 7, fmt.Sprintf("... and %d more rows", len(data.Rows)-maxRows))
			break
		}
		for _, header := range data.Headers {
			value := ""
			if val, ok := row[header]; ok {
				value = truncate(fmt.Sprintf("%v", val), 36)
			}
			pdf.CellFormat(colWidth, 6, tr(value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// writeJSON генерирует JSON отчет
func (rs *ReportService) writeJSON(data *ReportData, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(map[string]interface{}{
		"title":        data.Title,
		"headers":      data.Headers,
		"data":         data.Rows,
		"summary":      data.Summary,
		"generated_at": time.Now(),
	})
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
