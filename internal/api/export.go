package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"mydienst/internal/models"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"booking_id", "date", "time", "duration", "full_name", "email",
	"phone", "address", "postal_code", "city", "units", "note", "created_at",
}

func exportRow(b *models.BookingWithSlot) []string {
	units := ""
	if b.Units != nil {
		units = fmt.Sprintf("%d", *b.Units)
	}
	return []string{
		fmt.Sprintf("%d", b.ID),
		b.Date,
		b.Time,
		fmt.Sprintf("%d", b.Duration),
		b.FullName,
		b.Email,
		b.Phone,
		b.Address,
		b.PostalCode,
		b.City,
		units,
		b.Note,
		b.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	rows, err := s.db.ListAllBookings(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("csv export failed")
		writeError(w, http.StatusInternalServerError, "csv_failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write(exportHeader)
	for _, b := range rows {
		_ = writer.Write(exportRow(b))
	}
	writer.Flush()
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	rows, err := s.db.ListAllBookings(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("xlsx export failed")
		writeError(w, http.StatusInternalServerError, "xlsx_failed")
		return
	}

	const sheet = "Buchungen"
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error().Err(err).Msg("xlsx export failed")
		writeError(w, http.StatusInternalServerError, "xlsx_failed")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, b := range rows {
		for j, value := range exportRow(b) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
	_ = f.SetColWidth(sheet, "A", "M", 18)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("xlsx write failed")
	}
}
