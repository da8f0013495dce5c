package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/jsondiagram/pkg/buildinfo"
	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/document"
	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
	"github.com/matzehuels/jsondiagram/pkg/layout"
)

// maxBodySize bounds request bodies.
const maxBodySize = 16 << 20

// ErrorBody is the JSON form of a coded error.
type ErrorBody struct {
	Code    derrors.Code `json:"code"`
	Message string       `json:"message"`
	Line    int          `json:"line,omitempty"`
}

func errorBody(err error) ErrorBody {
	return ErrorBody{
		Code:    derrors.GetCode(err),
		Message: derrors.UserMessage(err),
		Line:    derrors.LineOf(err),
	}
}

// ValidateResponse answers POST /api/validate.
type ValidateResponse struct {
	Valid bool       `json:"valid"`
	Error *ErrorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch derrors.GetCode(err) {
	case derrors.ErrCodeInvalidInput, derrors.ErrCodeInvalidJSON, derrors.ErrCodeDuplicateKey,
		derrors.ErrCodeInvalidDirection, derrors.ErrCodeInvalidDensity:
		status = http.StatusBadRequest
	case derrors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]ErrorBody{"error": errorBody(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"sessions": s.Sessions(),
	})
}

// handleValidate checks editor text without building a diagram.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	resp := ValidateResponse{Valid: true}
	if err := document.Validate(string(body)); err != nil {
		eb := errorBody(err)
		resp = ValidateResponse{Valid: false, Error: &eb}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLayout builds and lays out the posted document in one shot.
// Query parameters direction, density and level override the defaults.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dir := s.cfg.Direction
	if v := q.Get("direction"); v != "" {
		d, err := layout.ParseDirection(v)
		if err != nil {
			writeError(w, err)
			return
		}
		dir = d
	}
	density := s.cfg.Density
	if v := q.Get("density"); v != "" {
		d, err := layout.ParseDensity(v)
		if err != nil {
			writeError(w, err)
			return
		}
		density = d
	}
	level := 0
	if v := q.Get("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, derrors.New(derrors.ErrCodeInvalidInput, "level must be a positive integer, got %q", v))
			return
		}
		level = n
	}

	doc, err := document.Import(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	view := diagram.New(diagram.Options{
		Direction: dir,
		Density:   density,
		Engine:    s.cfg.Engine,
		Logger:    s.logger,
	})
	view.Load(r.Context(), doc)
	if level > 0 {
		view.SetLevelThreshold(level)
	}
	writeJSON(w, http.StatusOK, view.Scene())
}
