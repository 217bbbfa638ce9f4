package api

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"mydienst/internal/database"
	"mydienst/internal/models"

	"github.com/go-chi/chi/v5"
)

// The print view the customer gets linked to after booking. German on
// purpose, same as the confirmation mail.
var printTemplate = template.Must(template.New("print").Parse(`<!doctype html><html><head><meta charset="utf-8">
<title>Terminbestätigung – {{.Brand}}</title>
<style>
  body{font-family:Arial, sans-serif; margin:40px;}
  h1{margin:0 0 10px}
  .box{border:1px solid #ddd; padding:16px; border-radius:12px}
  .grid{display:grid; grid-template-columns:160px 1fr; gap:8px 16px}
  .muted{color:#666}
  button{padding:8px 14px; border-radius:8px; border:1px solid #ccc; background:#f8f8f8}
</style></head><body>
  <h1>{{.Brand}} – Terminbestätigung</h1>
  <p class="muted">Buchungsnummer #{{.Booking.ID}}</p>
  <div class="box">
    <div class="grid">
      <div><b>Datum</b></div><div>{{.Booking.Date}}</div>
      <div><b>Uhrzeit</b></div><div>{{.Booking.Time}}</div>
      <div><b>Dauer</b></div><div>{{.Booking.Duration}} Min.</div>
      <div><b>Name</b></div><div>{{.Booking.FullName}}</div>
      <div><b>E-Mail</b></div><div>{{.Booking.Email}}</div>
      <div><b>Telefon</b></div><div>{{.Booking.Phone}}</div>
      <div><b>Adresse</b></div><div>{{.Booking.Address}}, {{.Booking.PostalCode}} {{.Booking.City}}</div>
{{- if .Booking.Units}}
      <div><b>Einheiten</b></div><div>{{.Booking.Units}}</div>
{{- end}}
      <div><b>Notiz</b></div><div>{{.Note}}</div>
      <div><b>Erstellt am</b></div><div>{{.CreatedAt}}</div>
    </div>
  </div>
  <p><button onclick="window.print()">Drucken</button></p>
</body></html>`))

func (s *Server) handlePrintBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Nicht gefunden", http.StatusNotFound)
		return
	}

	row, err := s.db.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			http.Error(w, "Nicht gefunden", http.StatusNotFound)
			return
		}
		s.logger.Error().Err(err).Msg("print booking failed")
		http.Error(w, "Fehler", http.StatusInternalServerError)
		return
	}

	note := row.Note
	if note == "" {
		note = "–"
	}

	data := struct {
		Brand     string
		Booking   *models.BookingWithSlot
		Note      string
		CreatedAt string
	}{
		Brand:     s.cfg.SMTP.Brand,
		Booking:   row,
		Note:      note,
		CreatedAt: row.CreatedAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := printTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("print render failed")
	}
}
