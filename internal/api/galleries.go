package api

import (
	"errors"
	"net/http"

	"studiodesk/internal/service"
)

const uploadField = "file"

func (s *HTTPServer) handleListGalleries(w http.ResponseWriter, r *http.Request) {
	galleries, err := s.svc.Galleries.List(r.Context(), r.PathValue("category"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(galleries))
}

func (s *HTTPServer) handleCreateGallery(w http.ResponseWriter, r *http.Request) {
	var req service.GalleryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.svc.Galleries.Create(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *HTTPServer) handleGetGallery(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Galleries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *HTTPServer) handleUpdateGallery(w http.ResponseWriter, r *http.Request) {
	var req service.GalleryUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.svc.Galleries.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *HTTPServer) handleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Galleries.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Gallery deleted successfully"})
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.cfg.HTTP.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		s.respondError(w, r, &service.ValidationError{Field: uploadField, Message: "A file is required"})
		return
	}
	defer file.Close()

	url, err := s.svc.Galleries.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
