package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mydienst/internal/booking"
	"mydienst/internal/database"
	"mydienst/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SlotID   int64  `json:"slotId"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		PLZ      string `json:"plz"`
		City     string `json:"city"`
		Units    *int64 `json:"units"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	created, err := s.bookings.Create(r.Context(), booking.CreateRequest{
		SlotID:     req.SlotID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		PostalCode: req.PLZ,
		City:       req.City,
		Units:      req.Units,
		Note:       req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "missing_fields")
		case errors.Is(err, database.ErrSlotNotFound):
			writeError(w, http.StatusNotFound, "slot_not_found")
		case errors.Is(err, database.ErrSlotTaken):
			writeError(w, http.StatusConflict, "already_booked")
		default:
			s.logger.Error().Err(err).Msg("create booking failed")
			writeError(w, http.StatusInternalServerError, "booking_failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"bookingId": created.ID,
		"slotId":    created.SlotID,
	})
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.db.ListBookings, "bookings_list_failed")
}

func (s *Server) handleListCompleted(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.db.ListCompletedBookings, "bookings_list_failed")
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, from, to string) ([]*models.BookingWithSlot, error), failCode string) {

	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	rows, err := list(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings failed")
		writeError(w, http.StatusInternalServerError, failCode)
		return
	}
	if rows == nil {
		rows = []*models.BookingWithSlot{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleListCancellations(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	rows, err := s.db.ListCancellations(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("list cancellations failed")
		writeError(w, http.StatusInternalServerError, "cancellations_list_failed")
		return
	}
	if rows == nil {
		rows = []*models.CanceledBooking{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	claims := claimsFrom(r.Context())
	if err := s.bookings.Complete(r.Context(), id, claims.Username); err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		s.logger.Error().Err(err).Msg("complete booking failed")
		writeError(w, http.StatusInternalServerError, "booking_complete_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	claims := claimsFrom(r.Context())
	_, err = s.bookings.Cancel(r.Context(), id, req.Reason, claims.Username, claims.UID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrReasonRequired):
			writeError(w, http.StatusBadRequest, "reason_required")
		case errors.Is(err, database.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		default:
			s.logger.Error().Err(err).Msg("cancel booking failed")
			writeError(w, http.StatusInternalServerError, "booking_cancel_failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// dateRange reads the optional from/to filters and validates their
// format so bad input fails loudly instead of matching nothing.
func dateRange(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	for _, v := range []string{from, to} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return "", "", false
		}
	}
	return from, to, true
}
