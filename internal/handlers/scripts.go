package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/novel-script/internal/storage"
	"github.com/jwebster45206/novel-script/pkg/script"
)

const maxScriptBytes = 1 << 20

type ScriptResponse struct {
	Name      string   `json:"name"`
	Text      string   `json:"text,omitempty"`
	SubScenes int      `json:"subscenes"`
	Pages     int      `json:"pages"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ParseErrorResponse reports where a submitted script failed to parse.
type ParseErrorResponse struct {
	Error string `json:"error"`
	Label string `json:"label"`
	Page  int    `json:"page"`
	Token string `json:"token,omitempty"`
}

type ScriptsHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewScriptsHandler(log *slog.Logger, storage storage.Storage) *ScriptsHandler {
	return &ScriptsHandler{
		log:     log,
		storage: storage,
	}
}

// ServeHTTP handles the script library
// Routes:
// GET    /v1/scripts         - List scripts
// GET    /v1/scripts/{name}  - Read a script
// PUT    /v1/scripts/{name}  - Validate and publish a script (raw text body)
// DELETE /v1/scripts/{name}  - Delete a published script
func (h *ScriptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scripts"), "/")

	if name == "" {
		if r.Method != http.MethodGet {
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleList(w, r)
		return
	}

	if !storage.ValidName(name) {
		writeError(w, h.log, http.StatusBadRequest, "Invalid script name")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, name)
	case http.MethodPut:
		h.handlePut(w, r, name)
	case http.MethodDelete:
		h.handleDelete(w, r, name)
	default:
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ScriptsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	scripts, err := h.storage.ListScripts(r.Context())
	if err != nil {
		h.log.Error("Failed to list scripts", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list scripts")
		return
	}
	writeJSON(w, h.log, http.StatusOK, scripts)
}

func (h *ScriptsHandler) handleGet(w http.ResponseWriter, r *http.Request, name string) {
	text, err := h.storage.GetScript(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrScriptNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Script not found")
			return
		}
		h.log.Error("Failed to get script", "error", err, "name", name)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to retrieve script")
		return
	}

	resp := ScriptResponse{Name: name, Text: text}
	if s, err := script.Parse(text); err == nil {
		resp.SubScenes = len(s.Labels())
		resp.Pages = s.PageCount()
	}
	writeJSON(w, h.log, http.StatusOK, resp)
}

func (h *ScriptsHandler) handlePut(w http.ResponseWriter, r *http.Request, name string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScriptBytes))
	if err != nil {
		writeError(w, h.log, http.StatusRequestEntityTooLarge, "Script too large")
		return
	}
	text := string(body)

	s, err := script.Parse(text)
	if err != nil {
		var pe *script.ParseError
		if errors.As(err, &pe) {
			h.log.Debug("Rejected script", "name", name, "error", err)
			writeJSON(w, h.log, http.StatusUnprocessableEntity, ParseErrorResponse{
				Error: err.Error(),
				Label: pe.Label,
				Page:  pe.Page,
				Token: pe.Token,
			})
			return
		}
		writeError(w, h.log, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.storage.SaveScript(r.Context(), name, text); err != nil {
		h.log.Error("Failed to save script", "error", err, "name", name)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to save script")
		return
	}

	resp := ScriptResponse{
		Name:      name,
		SubScenes: len(s.Labels()),
		Pages:     s.PageCount(),
	}
	for _, warn := range script.Lint(s) {
		resp.Warnings = append(resp.Warnings, warn.String())
	}

	h.log.Info("Script published", "name", name, "pages", resp.Pages, "warnings", len(resp.Warnings))
	writeJSON(w, h.log, http.StatusOK, resp)
}

func (h *ScriptsHandler) handleDelete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.storage.DeleteScript(r.Context(), name); err != nil {
		if errors.Is(err, storage.ErrScriptNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Script not found")
			return
		}
		h.log.Error("Failed to delete script", "error", err, "name", name)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to delete script")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
