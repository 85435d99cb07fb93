package models

import "fmt"

// ReportType тип выгружаемого отчета
type ReportType string

const (
	ReportTypeInventory   ReportType = "inventory"
	ReportTypeMaintenance ReportType = "maintenance"
	ReportTypeHistory     ReportType = "history"
)

// ReportFormat формат файла отчета
type ReportFormat string

const (
	ReportFormatPDF   ReportFormat = "pdf"
	ReportFormatExcel ReportFormat = "excel"
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatJSON  ReportFormat = "json"
)

// ParseReportType проверяет тип отчета
func ParseReportType(value string) (ReportType, error) {
	switch ReportType(value) {
	case ReportTypeInventory, ReportTypeMaintenance, ReportTypeHistory:
		return ReportType(value), nil
	}
	return "", NewValidationError("kind", fmt.Sprintf("неподдерживаемый тип отчета: %s", value))
}

// ParseReportFormat проверяет формат отчета
func ParseReportFormat(value string) (ReportFormat, error) {
	switch ReportFormat(value) {
	case ReportFormatPDF, ReportFormatExcel, ReportFormatCSV, ReportFormatJSON:
		return ReportFormat(value), nil
	case "xlsx":
		return ReportFormatExcel, nil
	}
	return "", NewValidationError("format", fmt.Sprintf("неподдерживаемый формат: %s", value))
}

// ContentType возвращает MIME тип файла отчета
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatPDF:
		return "application/pdf"
	case ReportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ReportFormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// Extension возвращает расширение файла отчета
func (f ReportFormat) Extension() string {
	if f == ReportFormatExcel {
		return "xlsx"
	}
	return string(f)
}
