package api

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/services"
)

// multipartOverhead is the room left for headers and the oldPath field on
// top of the image size limit.
const multipartOverhead = 1 << 20

// multipartMemory is how much of the form is kept in memory before spilling
// to temporary files.
const multipartMemory = 1 << 20

type uploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
}

// handleUpload stores the "image" part of a multipart form and answers
// with its relative path. An optional "oldPath" names the image it
// replaces.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if !id.Authenticated {
		s.writeError(w, r, common.Unauthenticated(common.MsgUnauthenticated))
		return
	}

	if s.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, common.Validation(common.MsgFileTooLarge, nil))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			s.writeError(w, r, common.Validation(common.MsgNoFile, nil))
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var file *services.UploadFile
	f, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer f.Close()
		file = &services.UploadFile{Name: header.Filename, Size: header.Size, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.writeError(w, r, common.Validation(common.MsgNoFile, nil))
		return
	}

	path, err := s.images.Upload(r.Context(), id, file, r.FormValue("oldPath"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{Message: "File stored successfully", FilePath: path})
}
