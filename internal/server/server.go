// Package server exposes a design studio over HTTP so the room can be
// furnished and evaluated without the desktop UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/export"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/logger"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/piwi3910/RoomFit/internal/project"
	"github.com/piwi3910/RoomFit/internal/studio"
)

// Error types returned in APIError.Type.
const (
	ErrTypeValidation = "validation"
	ErrTypeRejected   = "rejected"
	ErrTypeConflict   = "conflict"
	ErrTypeNotFound   = "not_found"
	ErrTypeInternal   = "internal"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Server handles HTTP requests against one studio.
type Server struct {
	studio    *studio.Studio
	log       *zap.Logger
	startTime time.Time
}

// New creates a server for st.
func New(st *studio.Studio, log *zap.Logger) *Server {
	return &Server{studio: st, log: logger.OrNop(log), startTime: time.Now()}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/hover", s.handleHover)
		r.Post("/select", s.handleSelect)
		r.Post("/rotate", s.handleRotate)
		r.Post("/place", s.handlePlace)
		r.Post("/remove", s.handleRemove)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/reset", s.handleReset)
		r.Get("/share", s.handleShareGet)
		r.Get("/share.png", s.handleShareQR)
		r.Get("/report.pdf", s.handleReport)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, ctx map[string]any) {
	s.writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		Context:   ctx,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", map[string]any{"cause": err.Error()})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
		"live":   s.studio.Brief().Live,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) state() StateResponse {
	resp := newStateResponse(s.studio.Session(), s.studio.State(), s.studio.Brief(), s.studio.CanUndo(), s.studio.CanRedo())
	resp.UndoLabel = s.studio.UndoLabel()
	resp.RedoLabel = s.studio.RedoLabel()
	return resp
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	kinds := s.studio.Session().Catalog.Kinds()
	out := make([]model.FurnitureKind, len(kinds))
	for i, k := range kinds {
		out[i] = *k
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "x and y query parameters must be integers", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, newVerdictResponse(s.studio.Hover(grid.Cell{X: x, Y: y})))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Index < 0 || req.Index >= s.studio.Session().Catalog.Len() {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "catalog index out of range", map[string]any{"index": req.Index})
		return
	}
	s.studio.Select(req.Index)
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	s.studio.Rotate()
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if !s.decode(w, r, &req) {
		return
	}
	ok, v := s.studio.Place(req.Cell())
	if !ok {
		s.writeError(w, r, http.StatusConflict, ErrTypeRejected, "placement rejected by the "+v.Failed.String()+" check",
			map[string]any{"rule": v.Failed.String(), "x": req.X, "y": req.Y})
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.studio.Remove(req.Cell()) {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, "no furniture at that cell", map[string]any{"x": req.X, "y": req.Y})
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if !s.studio.Undo() {
		s.writeError(w, r, http.StatusConflict, ErrTypeConflict, "nothing to undo", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if !s.studio.Redo() {
		s.writeError(w, r, http.StatusConflict, ErrTypeConflict, "nothing to redo", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	// The evaluation outlives the request
	if !s.studio.Evaluate(context.Background()) {
		s.writeError(w, r, http.StatusConflict, ErrTypeConflict, "an evaluation is already running", nil)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.state())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.studio.Reset()
	s.writeJSON(w, http.StatusOK, s.state())
}

// shareLayout is the current design with the brief it answers.
func (s *Server) shareLayout() project.LayoutFile {
	f := project.LayoutFromSession(s.studio.Session())
	f.Request = s.studio.Brief().Text
	return f
}

func (s *Server) handleShareGet(w http.ResponseWriter, r *http.Request) {
	code, err := export.EncodeShareCode(s.shareLayout())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, ShareCode{Code: code})
}

func (s *Server) handleShareQR(w http.ResponseWriter, r *http.Request) {
	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "size must be an integer between 64 and 1024", nil)
			return
		}
		size = n
	}
	png, err := export.ShareQR(s.shareLayout(), size)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "roomfit-report-*")
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	defer os.RemoveAll(dir)

	sess := s.studio.Session()
	path := filepath.Join(dir, "report.pdf")
	report := export.Report{Layout: sess.Layout(), Request: s.studio.Brief().Text, Result: sess.Result}
	if err := export.ExportReport(path, report); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
