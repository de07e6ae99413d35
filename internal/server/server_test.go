package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/export"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/llm"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/piwi3910/RoomFit/internal/studio"
)

func newTestServer(t *testing.T) (*Server, *studio.Studio) {
	t.Helper()
	cat, err := model.NewCatalog([]model.FurnitureKind{
		{Name: "Sofa", Footprint: model.Size{W: 3, H: 2}, Appearance: "#8B5A2B"},
		{Name: "Chair", Footprint: model.Size{W: 1, H: 1}},
	})
	require.NoError(t, err)

	s := engine.NewSession(grid.Room{Width: 10, Height: 8, CellSize: 64}, cat, &model.Door{Cell: grid.Cell{X: 0, Y: 4}})
	stub := llm.NewStub(16)
	brief := llm.Brief{Text: llm.PlaceholderRequest, Embedding: llm.PlaceholderVector(16)}
	worker := evaluation.NewWorker(evaluation.NewOrchestrator(stub, nil), time.Minute)
	st := studio.New(s, brief, worker, rand.New(rand.NewSource(1)), nil)
	return New(st, nil), st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	var resp StateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var resp APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Routes(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Routes(), http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeState(t, w)
	assert.Equal(t, 10, resp.Room.Width)
	assert.Equal(t, "Sofa", resp.Selected)
	assert.Equal(t, "IDLE", resp.State)
	assert.Empty(t, resp.Placements)
	require.NotNil(t, resp.Door)
	assert.Equal(t, grid.Cell{X: 0, Y: 4}, resp.Door.Cell)
}

func TestPlaceAndRemove(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/api/v1/place", CellRequest{X: 3, Y: 3})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeState(t, w)
	require.Len(t, resp.Placements, 1)
	assert.Equal(t, "Sofa", resp.Placements[0].Kind)
	assert.Equal(t, grid.Rect{X: 3, Y: 3, W: 3, H: 1}, resp.Placements[0].Base)
	assert.Equal(t, grid.Rect{X: 3, Y: 3, W: 3, H: 2}, resp.Placements[0].Bounds)
	assert.True(t, resp.CanUndo)

	w = do(t, h, http.MethodPost, "/api/v1/place", CellRequest{X: 4, Y: 3})
	require.Equal(t, http.StatusConflict, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, ErrTypeRejected, apiErr.Type)
	assert.Equal(t, "overlap", apiErr.Context["rule"])

	w = do(t, h, http.MethodPost, "/api/v1/remove", CellRequest{X: 9, Y: 0})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/remove", CellRequest{X: 5, Y: 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Placements)

	w = do(t, h, http.MethodPost, "/api/v1/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeState(t, w)
	assert.Len(t, resp.Placements, 1)
	assert.Equal(t, "Place Sofa", resp.UndoLabel)
	assert.Equal(t, "Remove Sofa", resp.RedoLabel)

	w = do(t, h, http.MethodPost, "/api/v1/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodPost, "/api/v1/redo", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHoverEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	var v VerdictResponse
	w := do(t, h, http.MethodGet, "/api/v1/hover?x=8&y=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	assert.False(t, v.Valid)
	assert.Equal(t, "boundary", v.Rule)

	w = do(t, h, http.MethodGet, "/api/v1/hover?x=2&y=2", nil)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	assert.True(t, v.Valid)
	assert.Equal(t, "ok", v.Rule)

	w = do(t, h, http.MethodGet, "/api/v1/hover?x=a&y=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectAndRotate(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/api/v1/rotate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, decodeState(t, w).Rotation)

	w = do(t, h, http.MethodPost, "/api/v1/select", SelectRequest{Index: 1})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeState(t, w)
	assert.Equal(t, "Chair", resp.Selected)
	assert.Equal(t, 0, resp.Rotation)

	w = do(t, h, http.MethodPost, "/api/v1/select", SelectRequest{Index: 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/select", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrTypeValidation, decodeError(t, rec).Type)
}

func TestEvaluateEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Routes()

	do(t, h, http.MethodPost, "/api/v1/place", CellRequest{X: 3, Y: 3})
	w := do(t, h, http.MethodPost, "/api/v1/evaluate", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, st.Wait(ctx))

	resp := decodeState(t, do(t, h, http.MethodGet, "/api/v1/state", nil))
	assert.False(t, resp.Pending)
	require.NotNil(t, resp.Result)
	assert.Equal(t, model.StateDone, resp.Result.State)
	assert.Contains(t, resp.Result.Description, "1 Sofa")
}

func TestResetEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	do(t, h, http.MethodPost, "/api/v1/place", CellRequest{X: 3, Y: 3})
	w := do(t, h, http.MethodPost, "/api/v1/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeState(t, w)
	assert.Empty(t, resp.Placements)
	assert.False(t, resp.CanUndo)
	require.NotNil(t, resp.Door)
}

func TestShareEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	do(t, h, http.MethodPost, "/api/v1/place", CellRequest{X: 3, Y: 3})
	w := do(t, h, http.MethodGet, "/api/v1/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var code ShareCode
	require.NoError(t, json.NewDecoder(w.Body).Decode(&code))

	f, err := export.DecodeShareCode(code.Code)
	require.NoError(t, err)
	require.Len(t, f.Items, 1)
	assert.Equal(t, "Sofa", f.Items[0].Kind)
	assert.Equal(t, 3, f.Items[0].X)
	assert.Equal(t, llm.PlaceholderRequest, f.Request)

	w = do(t, h, http.MethodGet, "/api/v1/share.png?size=128", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, h, http.MethodGet, "/api/v1/share.png?size=9", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Routes(), http.MethodGet, "/api/v1/report.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}
