package review

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/submissions"
	"github.com/IonMich/instructor-pilot/internal/versions"
	"github.com/IonMich/instructor-pilot/pkg/handlers"
	"github.com/IonMich/instructor-pilot/pkg/middleware"
	"github.com/IonMich/instructor-pilot/pkg/routes"
)

// Handler provides the HTTP surface for review sessions plus the sessionless
// versioning operations consumed at assignment scope.
type Handler struct {
	manager       *Manager
	backend       Backend
	logger        *slog.Logger
	maxUploadSize int64
}

// versionsResponse is the wire shape of the assignment versions read.
type versionsResponse struct {
	Success      bool                               `json:"success"`
	Submissions  []submissions.Submission           `json:"submissions"`
	VersionTexts map[uuid.UUID][]versions.TextComment `json:"version_texts"`
	VersionPDFs  map[uuid.UUID][]versions.FileComment `json:"version_pdfs"`
}

// snapshotResponse is the wire shape of mutations that return a snapshot.
type snapshotResponse struct {
	Success     bool                     `json:"success"`
	Submissions []submissions.Submission `json:"submissions"`
}

// successResponse is the wire shape of bare acknowledgements.
type successResponse struct {
	Success bool `json:"success"`
}

// NewHandler creates a Handler over the session manager and review backend.
func NewHandler(
	manager *Manager,
	backend Backend,
	logger *slog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		manager:       manager,
		backend:       backend,
		logger:        logger.With("handler", "review"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for assignment-scoped review
// endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/assignments/{assignmentID}",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/versions", Handler: h.Versions},
			{Method: "POST", Pattern: "/versions/compute", Handler: h.Compute},
			{Method: "POST", Pattern: "/versions/reset", Handler: h.Reset},
		},
		Children: []routes.Group{
			{
				Prefix: "/review",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.Open},
					{Method: "GET", Pattern: "", Handler: h.View},
					{Method: "DELETE", Pattern: "", Handler: h.Close},
					{Method: "POST", Pattern: "/tabs/{groupID}", Handler: h.SelectTab},
					{Method: "POST", Pattern: "/panes/{groupID}/next", Handler: h.NextSubmission},
					{Method: "POST", Pattern: "/panes/{groupID}/prev", Handler: h.PrevSubmission},
					{Method: "POST", Pattern: "/panes/{groupID}/page", Handler: h.SetPage},
					{Method: "POST", Pattern: "/reassign/target", Handler: h.SelectTarget},
					{Method: "POST", Pattern: "/reassign/submit", Handler: h.SubmitReassignment},
					{Method: "POST", Pattern: "/cluster", Handler: h.TriggerClustering},
					{Method: "POST", Pattern: "/reset", Handler: h.ResetClustering},
					{Method: "POST", Pattern: "/comments/{versionID}", Handler: h.AttachComment},
					{Method: "DELETE", Pattern: "/comments/{kind}/{commentID}", Handler: h.DeleteComment},
				},
			},
		},
	}
}

func (h *Handler) assignmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("assignmentID"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, ok := h.assignmentID(w, r)
	if !ok {
		return nil, false
	}

	session, err := h.manager.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return session, true
}

// Versions returns the assignment's current submission snapshot and the
// comments for every version.
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.backend.Snapshot(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	sets, err := h.backend.Comments(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, versionsResponse{
		Success:      true,
		Submissions:  snapshot,
		VersionTexts: sets.Texts,
		VersionPDFs:  sets.Files,
	})
}

// Compute runs a clustering pass over the selected pages and returns the
// refreshed submission snapshot.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	var req struct {
		Pages []int `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPage)
		return
	}

	snapshot, err := h.backend.TriggerClustering(r.Context(), id, req.Pages)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snapshotResponse{
		Success:     true,
		Submissions: snapshot,
	})
}

// Reset clears the assignment's version assignments.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	if err := h.backend.ResetClustering(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, successResponse{Success: true})
}

// Open starts (or restarts) a review session for the assignment and returns
// the initial view.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	session, err := h.manager.Open(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, session.View())
}

// View returns the current render of an open session.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// Close discards the assignment's session.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	h.manager.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// SelectTab activates a tab in the open session.
func (h *Handler) SelectTab(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session.SelectTab(GroupID(r.PathValue("groupID"))))
}

// NextSubmission centers the next member of a pane's carousel.
func (h *Handler) NextSubmission(w http.ResponseWriter, r *http.Request) {
	h.paneOp(w, r, func(s *Session, id GroupID) (*View, error) {
		return s.NextSubmission(id)
	})
}

// PrevSubmission centers the previous member of a pane's carousel.
func (h *Handler) PrevSubmission(w http.ResponseWriter, r *http.Request) {
	h.paneOp(w, r, func(s *Session, id GroupID) (*View, error) {
		return s.PrevSubmission(id)
	})
}

func (h *Handler) paneOp(
	w http.ResponseWriter,
	r *http.Request,
	op func(*Session, GroupID) (*View, error),
) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := op(session, GroupID(r.PathValue("groupID")))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// SetPage displays a page across a pane's viewers.
func (h *Handler) SetPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPage)
		return
	}

	view, err := session.SetPage(GroupID(r.PathValue("groupID")), req.Page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// SelectTarget picks the reassignment target version.
func (h *Handler) SelectTarget(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		VersionID uuid.UUID `json:"version_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoTarget)
		return
	}

	view, err := session.SelectTarget(req.VersionID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// SubmitReassignment sends the active outlier to the chosen target.
func (h *Handler) SubmitReassignment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := session.SubmitReassignment(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// TriggerClustering runs a clustering pass from within the open session.
func (h *Handler) TriggerClustering(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Pages []int `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPage)
		return
	}

	view, err := session.TriggerClustering(r.Context(), req.Pages)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// ResetClustering resets versioning from within the open session.
func (h *Handler) ResetClustering(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := session.Reset(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// AttachComment submits a multipart comment draft for a version pane.
func (h *Handler) AttachComment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	versionID, err := uuid.Parse(r.PathValue("versionID"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, versions.ErrFileTooLarge)
		return
	}

	draft := CommentDraft{Text: r.FormValue("text")}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		draft.Author = identity.DisplayName()
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				handlers.RespondError(w, h.logger, http.StatusBadRequest, versions.ErrInvalidFile)
				return
			}

			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				handlers.RespondError(w, h.logger, http.StatusBadRequest, versions.ErrInvalidFile)
				return
			}

			draft.Files = append(draft.Files, versions.NewFileUpload(
				h.logger,
				header.Filename,
				header.Header.Get("Content-Type"),
				data,
			))
		}
	}

	view, err := session.AttachComment(r.Context(), versionID, draft)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, view)
}

// DeleteComment optimistically removes a comment from the session.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	kind := CommentKind(r.PathValue("kind"))
	if kind != CommentText && kind != CommentFile {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	commentID, err := uuid.Parse(r.PathValue("commentID"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.DeleteComment(r.Context(), kind, commentID))
}
