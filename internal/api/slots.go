package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mydienst/internal/database"
	"mydienst/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
	}

	slots, err := s.db.ListSlots(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Msg("list slots failed")
		writeError(w, http.StatusInternalServerError, "slots_list_failed")
		return
	}
	if slots == nil {
		slots = []*models.Slot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string `json:"date"`
		Time     string `json:"time"`
		Duration int64  `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	if _, err := time.Parse(models.TimeLayout, req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time")
		return
	}

	slot := &models.Slot{Date: req.Date, Time: req.Time, Duration: req.Duration}
	if err := s.db.CreateSlot(r.Context(), slot); err != nil {
		s.logger.Error().Err(err).Msg("create slot failed")
		writeError(w, http.StatusInternalServerError, "slot_create_failed")
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (s *Server) handleBulkCreateSlots(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From       string `json:"from"`
		To         string `json:"to"`
		Time       string `json:"time"`
		Duration   int64  `json:"duration"`
		DaysOfWeek []int  `json:"daysOfWeek"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.From == "" || req.To == "" || req.Time == "" || len(req.DaysOfWeek) == 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	from, err := time.Parse(models.DateLayout, req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	to, err := time.Parse(models.DateLayout, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid_range")
		return
	}
	if _, err := time.Parse(models.TimeLayout, req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time")
		return
	}
	for _, d := range req.DaysOfWeek {
		if d < 1 || d > 7 {
			writeError(w, http.StatusBadRequest, "invalid_day_of_week")
			return
		}
	}

	result, err := s.db.CreateSlotsBulk(r.Context(), from, to, req.Time, req.Duration, req.DaysOfWeek)
	if err != nil {
		s.logger.Error().Err(err).Msg("bulk create slots failed")
		writeError(w, http.StatusInternalServerError, "slot_create_failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	deleted, err := s.db.DeleteSlot(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrSlotBooked) {
			writeError(w, http.StatusConflict, "slot_booked")
			return
		}
		s.logger.Error().Err(err).Msg("delete slot failed")
		writeError(w, http.StatusInternalServerError, "slot_delete_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
