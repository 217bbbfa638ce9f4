package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mydienst/internal/auth"
	"mydienst/internal/booking"
	"mydienst/internal/config"
	"mydienst/internal/database"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server is the HTTP front of the booking system.
type Server struct {
	cfg      *config.Config
	db       *database.DB
	bookings *booking.Service
	tokens   *auth.Tokens
	logger   zerolog.Logger
	server   *http.Server
}

func NewServer(cfg *config.Config, db *database.DB, bookings *booking.Service, tokens *auth.Tokens, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		bookings: bookings,
		tokens:   tokens,
		logger:   logger.With().Str("component", "api").Logger(),
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.session)

	authLimiter := newIPLimiter(s.cfg.RateLimit.Auth)
	bookingLimiter := newIPLimiter(s.cfg.RateLimit.Booking)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Wrap)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})

		r.Get("/slots", s.handleListSlots)
		r.Post("/slots", s.secure(ActionSlotCreate, s.handleCreateSlot))
		r.Post("/slots/bulk", s.secure(ActionSlotBulkCreate, s.handleBulkCreateSlots))
		r.Delete("/slots/{id}", s.secure(ActionSlotDelete, s.handleDeleteSlot))

		r.With(bookingLimiter.Wrap).Post("/bookings", s.handleCreateBooking)
		r.Get("/bookings/{id}/print", s.handlePrintBooking)
		r.Get("/bookings.csv", s.secure(ActionBookingExport, s.handleExportCSV))
		r.Get("/bookings.xlsx", s.secure(ActionBookingExport, s.handleExportXLSX))

		r.Route("/admin", func(r chi.Router) {
			r.Get("/bookings", s.secure(ActionBookingList, s.handleListBookings))
			r.Get("/completed", s.secure(ActionBookingList, s.handleListCompleted))
			r.Get("/cancellations", s.secure(ActionBookingList, s.handleListCancellations))
			r.Post("/bookings/{id}/complete", s.secure(ActionBookingComplete, s.handleCompleteBooking))
			r.Delete("/bookings/{id}", s.secure(ActionBookingCancel, s.handleCancelBooking))

			r.Get("/users", s.secure(ActionUserManage, s.handleListUsers))
			r.Post("/users", s.secure(ActionUserManage, s.handleCreateUser))
			r.Patch("/users/{id}", s.secure(ActionUserManage, s.handleUpdateUser))
			r.Delete("/users/{id}", s.secure(ActionUserManage, s.handleDeleteUser))
		})
	})

	return r
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "db_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
