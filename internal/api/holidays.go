package api

import (
	"net/http"

	"studiodesk/internal/service"
)

func (s *HTTPServer) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := s.svc.Holidays.ListHolidays(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(holidays))
}

func (s *HTTPServer) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req service.HolidayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	h, err := s.svc.Holidays.CreateHoliday(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *HTTPServer) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Holidays.DeleteHoliday(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Holiday deleted successfully"})
}
