package mail

import (
	"fmt"
	"html"
	"strings"

	"mydienst/internal/events"
)

// Rendered is a subject plus the customer and admin variants of one
// notification.
type Rendered struct {
	Subject      string
	HTMLCustomer string
	HTMLAdmin    string
}

// BookingConfirmation renders the confirmation pair sent after a
// successful booking.
func BookingConfirmation(brand string, p events.BookingPayload) Rendered {
	subject := fmt.Sprintf("Terminbestätigung – %s %s", p.Date, p.Time)
	table := detailsTable(p)

	customer := wrap(brand,
		fmt.Sprintf("%s – Terminbestätigung", html.EscapeString(brand)),
		"Vielen Dank für Ihre Buchung!",
		table)
	admin := wrap(brand,
		fmt.Sprintf("%s – Neue Buchung", html.EscapeString(brand)),
		"Ein Kunde hat soeben einen Termin gebucht.",
		table)

	return Rendered{Subject: subject, HTMLCustomer: customer, HTMLAdmin: admin}
}

// BookingCancellation renders the pair sent after a staff member
// cancels a booking.
func BookingCancellation(brand string, p events.BookingPayload) Rendered {
	subject := fmt.Sprintf("Terminabsage – %s %s", p.Date, p.Time)
	table := detailsTable(p) + reasonRow(p.Reason)

	customer := wrap(brand,
		fmt.Sprintf("%s – Terminabsage", html.EscapeString(brand)),
		"Ihr Termin wurde leider storniert.",
		table)
	admin := wrap(brand,
		fmt.Sprintf("%s – Termin storniert", html.EscapeString(brand)),
		fmt.Sprintf("Der Termin wurde von %s storniert.", html.EscapeString(p.Actor)),
		table)

	return Rendered{Subject: subject, HTMLCustomer: customer, HTMLAdmin: admin}
}

func detailsTable(p events.BookingPayload) string {
	rows := []struct{ label, value string }{
		{"Datum", p.Date},
		{"Uhrzeit", p.Time},
		{"Dauer", fmt.Sprintf("%d Min.", p.Duration)},
		{"Name", p.FullName},
		{"E-Mail", p.Email},
		{"Telefon", p.Phone},
		{"Adresse", fmt.Sprintf("%s, %s %s", p.Address, p.PostalCode, p.City)},
		{"Notiz", orDash(p.Note)},
	}
	if p.Units != nil {
		rows = append(rows, struct{ label, value string }{"Einheiten", fmt.Sprintf("%d", *p.Units)})
	}

	var b strings.Builder
	b.WriteString(`<table style="border-collapse:collapse;border:1px solid #e5e7eb;width:100%;margin:8px 0">`)
	for _, r := range rows {
		fmt.Fprintf(&b,
			`<tr><td style="padding:6px 10px;border:1px solid #e5e7eb"><b>%s</b></td>`+
				`<td style="padding:6px 10px;border:1px solid #e5e7eb">%s</td></tr>`,
			r.label, html.EscapeString(r.value))
	}
	b.WriteString(`</table>`)
	return b.String()
}

func reasonRow(reason string) string {
	return fmt.Sprintf(`<p><b>Grund:</b> %s</p>`, html.EscapeString(reason))
}

func wrap(brand, heading, intro, body string) string {
	return fmt.Sprintf(
		`<div style="font-family:Arial,sans-serif;max-width:640px;margin:0 auto">`+
			`<h2 style="margin:0 0 8px">%s</h2>`+
			`<p style="color:#555;margin:0 0 16px">%s</p>%s`+
			`<p style="color:#666;font-size:12px">Falls Sie Rückfragen haben, antworten Sie bitte auf diese E-Mail.</p>`+
			`<p style="color:#666;font-size:12px">%s</p></div>`,
		heading, intro, body, html.EscapeString(brand))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "–"
	}
	return s
}
