package versions

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/pkg/handlers"
	"github.com/IonMich/instructor-pilot/pkg/middleware"
	"github.com/IonMich/instructor-pilot/pkg/routes"
)

// Handler provides HTTP endpoints for version and comment operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// attachResponse is the wire shape returned by the attach mutation.
type attachResponse struct {
	Success bool `json:"success"`
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "versions"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for version endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/versions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/comments", Handler: h.Attach},
			{Method: "DELETE", Pattern: "/comments/text/{id}", Handler: h.DeleteTextComment},
			{Method: "DELETE", Pattern: "/comments/file/{id}", Handler: h.DeleteFileComment},
		},
	}
}

// Find returns a single version by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidVersion)
		return
	}

	v, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Attach processes a multipart comment attach: an optional text field plus
// zero or more file attachments. Blank text and zero-byte files are dropped;
// a payload that filters down to nothing is rejected without touching storage.
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidVersion)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	cmd := AttachCommand{
		Text: strings.TrimSpace(r.FormValue("text")),
	}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		cmd.Author = identity.DisplayName()
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
				return
			}

			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
				return
			}

			if len(data) == 0 {
				h.logger.Debug("dropping empty attachment", "filename", header.Filename)
				continue
			}

			cmd.Files = append(cmd.Files, NewFileUpload(
				h.logger,
				header.Filename,
				header.Header.Get("Content-Type"),
				data,
			))
		}
	}

	if err := h.sys.Attach(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, attachResponse{Success: true})
}

// DeleteTextComment removes a text comment by its UUID path parameter.
func (h *Handler) DeleteTextComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidVersion)
		return
	}

	if err := h.sys.DeleteTextComment(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteFileComment removes a file comment and its stored blob.
func (h *Handler) DeleteFileComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidVersion)
		return
	}

	if err := h.sys.DeleteFileComment(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
