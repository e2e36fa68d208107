package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwebster45206/novel-script/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScriptsHandler() (*ScriptsHandler, *storage.MockStorage) {
	store := storage.NewMockStorage()
	store.AddSeed("demo", "#start&A「hi」&B「bye」")
	return NewScriptsHandler(testLogger(), store), store
}

func TestScriptsHandler_List(t *testing.T) {
	h, store := newScriptsHandler()
	require.NoError(t, store.SaveScript(context.Background(), "intro", "X「x」"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/scripts", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var scripts []storage.ScriptInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scripts))
	assert.Equal(t, []storage.ScriptInfo{
		{Name: "demo"},
		{Name: "intro", Published: true},
	}, scripts)
}

func TestScriptsHandler_Get(t *testing.T) {
	h, _ := newScriptsHandler()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "seed script", path: "/v1/scripts/demo", expectedStatus: http.StatusOK},
		{name: "missing", path: "/v1/scripts/nope", expectedStatus: http.StatusNotFound},
		{name: "bad name", path: "/v1/scripts/..%2Fsecret", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/scripts/demo", nil))
	var resp ScriptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "demo", resp.Name)
	assert.Equal(t, "#start&A「hi」&B「bye」", resp.Text)
	assert.Equal(t, 1, resp.SubScenes)
	assert.Equal(t, 2, resp.Pages)
}

func TestScriptsHandler_PutValidates(t *testing.T) {
	h, store := newScriptsHandler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/v1/scripts/broken",
		strings.NewReader(`#start&!jump_to="nowhere"`)))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var perr ParseErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &perr))
	assert.Equal(t, "start", perr.Label)
	assert.Equal(t, 0, perr.Page)
	assert.Contains(t, perr.Error, "nowhere")

	_, err := store.GetScript(context.Background(), "broken")
	assert.ErrorIs(t, err, storage.ErrScriptNotFound)
}

func TestScriptsHandler_PutPublishes(t *testing.T) {
	h, store := newScriptsHandler()
	text := `#start&!charaimg_select_pos="a"="0,0,0"&A「hi」`

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/v1/scripts/ambiguous", strings.NewReader(text)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp ScriptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Pages)
	require.Len(t, resp.Warnings, 1)

	saved, err := store.GetScript(context.Background(), "ambiguous")
	require.NoError(t, err)
	assert.Equal(t, text, saved)
}

func TestScriptsHandler_Delete(t *testing.T) {
	h, store := newScriptsHandler()
	require.NoError(t, store.SaveScript(context.Background(), "intro", "X「x」"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/scripts/intro", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/scripts/demo", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestScriptsHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newScriptsHandler()

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/scripts", nil),
		httptest.NewRequest(http.MethodPatch, "/v1/scripts/demo", nil),
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	}
}
