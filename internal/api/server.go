package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"studiodesk/internal/config"
	"studiodesk/internal/service"

	"github.com/rs/zerolog"
)

// Services groups what the handlers call into.
type Services struct {
	Bookings  *service.BookingService
	Holidays  *service.HolidayService
	Customers *service.CustomerService
	Galleries *service.GalleryService
	Dashboard *service.DashboardService
	// Ready reports whether the store is reachable.
	Ready func(ctx context.Context) error
}

// HTTPServer exposes the studio's JSON API.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	server *http.Server
	auth   *HTTPAuth
	now    func() time.Time
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, svc: svc, auth: NewHTTPAuth(cfg), now: time.Now, logger: logger}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := srv.recoverMiddleware(srv.loggingMiddleware(srv.corsMiddleware(srv.auth.Wrap(mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/bookings", s.handleListBookings)
	mux.HandleFunc("POST /api/bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /api/bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("POST /api/bookings/{id}/approve", s.handleApproveBooking)
	mux.HandleFunc("POST /api/bookings/{id}/disapprove", s.handleDisapproveBooking)
	mux.HandleFunc("DELETE /api/bookings/{id}", s.handleDeleteBooking)

	mux.HandleFunc("GET /api/holidays", s.handleListHolidays)
	mux.HandleFunc("POST /api/holidays", s.handleCreateHoliday)
	mux.HandleFunc("DELETE /api/holidays/{id}", s.handleDeleteHoliday)

	mux.HandleFunc("GET /api/customers", s.handleListCustomers)
	mux.HandleFunc("GET /api/customers/{id}", s.handleGetCustomer)

	mux.HandleFunc("GET /api/galleries", s.handleListGalleries)
	mux.HandleFunc("GET /api/galleries/{category}", s.handleListGalleries)
	mux.HandleFunc("POST /api/galleries", s.handleCreateGallery)
	mux.HandleFunc("GET /api/gallery/{id}", s.handleGetGallery)
	mux.HandleFunc("PUT /api/gallery/{id}", s.handleUpdateGallery)
	mux.HandleFunc("DELETE /api/gallery/{id}", s.handleDeleteGallery)
	mux.HandleFunc("POST /api/upload", s.handleUpload)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/export/bookings.xlsx", s.handleExportBookings)
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
