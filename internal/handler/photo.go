package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

const (
	// photoFormField is the multipart field carrying the files.
	photoFormField = "files"
	// maxUploadBody bounds a whole multipart request.
	maxUploadBody = 20 * service.MaxPhotoSize
	// multipartMemory is held in RAM before parts spill to temp files.
	multipartMemory = 32 << 20
)

type PhotoHandler struct {
	memories *service.MemoryService
	notifier
}

func NewPhotoHandler(ms *service.MemoryService, hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{memories: ms, notifier: notifier{hub: hub, households: hs, logger: logger}}
}

func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	memoryID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, h.logger, apperror.TooLarge("upload too large"))
			return
		}
		writeError(w, r, h.logger, apperror.ValidationFailed(photoFormField, "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[photoFormField]
	uploads, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	photos, err := h.memories.UploadPhotos(r.Context(), auth.UserID(r.Context()), memoryID, uploads)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("memory", "photos_added", memoryID, map[string]any{"count": len(photos)}))

	writeJSON(w, http.StatusCreated, photos)
}

func openUploads(headers []*multipart.FileHeader) ([]model.PhotoUpload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	uploads := make([]model.PhotoUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		files = append(files, f)
		uploads = append(uploads, model.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

func (h *PhotoHandler) File(w http.ResponseWriter, r *http.Request) {
	p, body, err := h.memories.OpenPhoto(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", p.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(p.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": p.Filename}))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("serve photo", "photo", p.ID, "error", err)
	}
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.memories.DeletePhoto(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("memory", "photo_deleted", p.MemoryID, map[string]any{"photo_id": p.ID}))

	w.WriteHeader(http.StatusNoContent)
}
