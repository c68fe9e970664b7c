package api

import "net/http"

func (s *HTTPServer) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.svc.Customers.ListCustomers(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(customers))
}

func (s *HTTPServer) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Customers.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
