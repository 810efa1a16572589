package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentregistry/internal/student/service"
	"studentregistry/internal/student/store"
)

// Handler tests run against the real service over the in-memory store so
// they exercise the whole non-HTTP stack.
func newStudentRouter(t *testing.T) http.Handler {
	t.Helper()
	mem := store.NewInMemory()
	svc := service.NewService(mem, service.NewShardedTx(mem))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(svc, logger, nil).Register(r)
	return r
}

func postStudent(t *testing.T, router http.Handler, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpsertCreatesRecord(t *testing.T) {
	router := newStudentRouter(t)

	rec := postStudent(t, router, map[string]string{
		"dob": "20010403", "phone": "09012345678", "name": "山田太郎",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Version   int    `json:"version"`
		UpdatedAt string `json:"updated_at"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2001040309012345678", resp.ID)
	assert.Equal(t, "山田太郎", resp.Name)
	assert.Equal(t, 1, resp.Version)
	assert.NotEmpty(t, resp.UpdatedAt)
}

func TestUpsertThenOverwriteBumpsVersion(t *testing.T) {
	router := newStudentRouter(t)

	rec := postStudent(t, router, map[string]string{
		"dob": "20010403", "phone": "09012345678", "name": "山田太郎",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postStudent(t, router, map[string]string{
		"dob": "20010403", "phone": "09012345678", "name": "山田次郎",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Version int    `json:"version"`
		Name    string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Version)
	assert.Equal(t, "山田次郎", resp.Name)
}

func TestUpsertRejectsMalformedFields(t *testing.T) {
	router := newStudentRouter(t)

	cases := []map[string]string{
		{"dob": "2001-4-3", "phone": "09012345678", "name": "Taro"},
		{"dob": "20010403", "phone": "090-1234", "name": "Taro"},
		{"dob": "20010403", "phone": "09012345678", "name": ""},
	}
	for i, payload := range cases {
		rec := postStudent(t, router, payload)
		require.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "validation_error", body["error"], "case %d", i)
		assert.NotEmpty(t, body["error_description"], "case %d", i)
	}
}

func TestUpsertRejectsUnparseableBody(t *testing.T) {
	router := newStudentRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "bad_request", body["error"])
}

func TestLookupMissReturns404(t *testing.T) {
	router := newStudentRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/students/1999123112345678901", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
}

func TestLookupReturnsCurrentRecordOnly(t *testing.T) {
	router := newStudentRouter(t)

	postStudent(t, router, map[string]string{"dob": "20010403", "phone": "09012345678", "name": "山田太郎"})
	postStudent(t, router, map[string]string{"dob": "20010403", "phone": "09012345678", "name": "山田次郎"})

	req := httptest.NewRequest(http.MethodGet, "/students/2001040309012345678", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "山田次郎", resp.Name)
	assert.Equal(t, 2, resp.Version)
}

func TestHistoryEndpoint(t *testing.T) {
	router := newStudentRouter(t)

	names := []string{"一郎", "二郎", "三郎"}
	for _, name := range names {
		postStudent(t, router, map[string]string{"dob": "20010403", "phone": "09012345678", "name": name})
	}

	req := httptest.NewRequest(http.MethodGet, "/students/2001040309012345678/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		StudentID string `json:"student_id"`
		Entries   []struct {
			Name    string `json:"name"`
			Version int    `json:"version"`
		} `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2001040309012345678", resp.StudentID)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "一郎", resp.Entries[0].Name)
	assert.Equal(t, 1, resp.Entries[0].Version)
	assert.Equal(t, "二郎", resp.Entries[1].Name)
	assert.Equal(t, 2, resp.Entries[1].Version)
}

func TestHistoryForMissingStudentReturns404(t *testing.T) {
	router := newStudentRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/students/unknown/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryForFreshStudentIsEmptyList(t *testing.T) {
	router := newStudentRouter(t)
	postStudent(t, router, map[string]string{"dob": "20010403", "phone": "09012345678", "name": "山田太郎"})

	req := httptest.NewRequest(http.MethodGet, "/students/2001040309012345678/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)
}
