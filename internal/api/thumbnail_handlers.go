package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfscore/shelfscore-server/internal/http/response"
)

// maxThumbnailSize caps cover uploads at 10MB.
const maxThumbnailSize = 10 << 20

// registerThumbnailRoutes registers the cover image endpoints. These are
// plain chi handlers: multipart uploads and binary responses don't fit
// Huma's typed JSON model.
func (s *Server) registerThumbnailRoutes() {
	s.router.Put("/api/books/{id}/thumbnail", s.handleUploadThumbnail)
	s.router.Get("/api/thumbnails/{bookId}", s.handleGetThumbnail)
}

func (s *Server) handleUploadThumbnail(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserID(r.Context())
	if err != nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	bookID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxThumbnailSize)
	if err := r.ParseMultipartForm(maxThumbnailSize); err != nil {
		response.BadRequest(w, "Invalid multipart form or file too large (max 10MB)", s.logger)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field", s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.InternalError(w, "Failed to read uploaded file", s.logger)
		return
	}

	book, err := s.services.Book.SetThumbnail(r.Context(), bookID, userID, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapBook(book), s.logger)
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")

	data, contentType, err := s.services.Book.GetThumbnail(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
