package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	api "github.com/mind-engage/mindengage-cgpa/internal/api/http"
	authmw "github.com/mind-engage/mindengage-cgpa/internal/auth/middleware"
	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/db"
	"github.com/mind-engage/mindengage-cgpa/internal/history"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

type fixture struct {
	router http.Handler
	auth   *authmw.AuthService
	store  *history.SQLStore
}

func newFixture(t *testing.T, limiter *api.RateLimiter) fixture {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbh.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	store := history.NewSQLStore(dbh)
	auth := authmw.NewAuthService("test-secret")
	r := chi.NewRouter()
	api.Mount(r, api.Deps{
		Converter:        converter.NewService(converter.WithRecorder(store)),
		DefaultDirection: scale.SourceToTarget,
		Limiter:          limiter,
		History:          store,
		Auth:             auth,
		Admin:            authmw.Admin{User: "admin", PassHash: string(hash)},
	})
	return fixture{router: r, auth: auth, store: store}
}

func (f fixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestConvert_Total(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/convert", `{"mode":"total","cgpa":"3.5"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[map[string]any](t, rec)
	assert.Equal(t, "nsu-aiub", out["direction"])
	assert.Equal(t, 3.5, out["source_cgpa"])
	assert.Equal(t, 88.0, out["percentage"])
	assert.Equal(t, 3.75, out["target_cgpa"])
	assert.Equal(t, "NSU", out["source_label"])
	assert.Equal(t, "AIUB", out["target_label"])
	assert.Equal(t, "3.50", out["source_display"])
	assert.Equal(t, "3.75", out["target_display"])
}

func TestConvert_NumericCGPAAndReverse(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/convert", `{"direction":"aiub-nsu","cgpa":3.5}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[map[string]any](t, rec)
	assert.Equal(t, "total", out["mode"])
	assert.Equal(t, 2.7, out["target_cgpa"])
	assert.Equal(t, "2.70", out["target_display"])
}

func TestConvert_Subjects(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/convert",
		`{"subjects":[{"grade":"A","credits":3},{"grade":"B","credits":"3"}]}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[map[string]any](t, rec)
	assert.Equal(t, "subjects", out["mode"])
	assert.Equal(t, 3.5, out["source_cgpa"])
	assert.Equal(t, 3.75, out["target_cgpa"])
	assert.Equal(t, 2.0, out["subjects"])
}

func TestConvert_HugeCredits(t *testing.T) {
	f := newFixture(t, nil)
	for _, body := range []string{
		`{"subjects":[{"grade":"A","credits":1e308}]}`,
		`{"subjects":[{"grade":"A","credits":1e308},{"grade":"A","credits":"1e308"}]}`,
	} {
		rec := f.do(t, http.MethodPost, "/convert", body, "")
		require.Equal(t, http.StatusOK, rec.Code, body)
		out := decode[map[string]any](t, rec)
		assert.Equal(t, 4.0, out["source_cgpa"], body)
		assert.Equal(t, 4.0, out["target_cgpa"], body)
	}
}

func TestConvert_ValidationMessages(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		body string
		want string
	}{
		{`{"mode":"total","cgpa":"5"}`, "Please enter an NSU CGPA between 0.00 and 4.00."},
		{`{"mode":"total","cgpa":"abc"}`, "Please enter a valid CGPA."},
		{`{"mode":"total"}`, "Please enter a valid CGPA."},
		{`{"direction":"aiub-nsu","cgpa":"4.5"}`, "Please enter an AIUB CGPA between 0.00 and 4.00."},
		{`{"mode":"subjects","subjects":[]}`, "Please add at least one subject."},
		{`{"subjects":[{"grade":"A","credits":"x"}]}`, "Please fill all subject fields"},
		{`{"subjects":[{"grade":"A"}]}`, "Please fill all subject fields"},
		{`{"subjects":[{"grade":"","credits":3}]}`, "Please fill all subject fields"},
		{`{"subjects":[{"grade":"A","credits":true}]}`, "Please fill all subject fields"},
		{`{"subjects":[{"grade":"Z","credits":3}]}`, "unknown grade"},
		{`{"direction":"up","cgpa":"3"}`, "unknown direction"},
		{`{"mode":"both","cgpa":"3"}`, "unknown input mode"},
		{`{`, "bad json"},
	}
	for _, c := range cases {
		rec := f.do(t, http.MethodPost, "/convert", c.body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, c.body)
		assert.Contains(t, rec.Body.String(), c.want, c.body)
	}
}

func TestPolicies(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/policies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]map[string]any](t, rec)
	require.Len(t, all, 2)
	assert.Equal(t, "NSU", all[0]["institution"])

	rec = f.do(t, http.MethodGet, "/policies/aiub", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	one := decode[struct {
		Institution string `json:"institution"`
		Grades      []struct {
			Label  string  `json:"label"`
			Points float64 `json:"points"`
		} `json:"grades"`
	}](t, rec)
	assert.Equal(t, "AIUB", one.Institution)
	require.Len(t, one.Grades, 9)
	assert.Equal(t, "A+", one.Grades[0].Label)
	assert.Equal(t, 4.0, one.Grades[0].Points)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/policies/buet", "", "").Code)
}

func TestBands(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/bands/aiub-nsu", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[struct {
		Direction string       `json:"direction"`
		Source    string       `json:"source"`
		Target    string       `json:"target"`
		ToPercent []scale.Band `json:"to_percent"`
		ToCGPA    []scale.Band `json:"to_cgpa"`
	}](t, rec)
	assert.Equal(t, "aiub-nsu", out.Direction)
	assert.Equal(t, "AIUB", out.Source)
	assert.Equal(t, "NSU", out.Target)
	assert.Equal(t, scale.Band{Threshold: 4, Value: 95}, out.ToPercent[0])
	assert.NotEmpty(t, out.ToCGPA)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/bands/sideways", "", "").Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", "", "").Code)
}

func TestHistory_Flow(t *testing.T) {
	f := newFixture(t, nil)

	for _, body := range []string{
		`{"cgpa":"3.0"}`,
		`{"direction":"aiub-nsu","cgpa":"3.0"}`,
		`{"cgpa":"9"}`, // rejected, not recorded
	} {
		f.do(t, http.MethodPost, "/convert", body, "")
	}

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/history", "", "").Code)

	rec := f.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	adminTok := decode[map[string]string](t, rec)["access_token"]
	require.NotEmpty(t, adminTok)

	rec = f.do(t, http.MethodGet, "/history", "", adminTok)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]history.Record](t, rec)
	assert.Len(t, list, 2)

	rec = f.do(t, http.MethodGet, "/history?direction=aiub-nsu", "", adminTok)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[[]history.Record](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 1.7, list[0].TargetCGPA)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/history?direction=bogus", "", adminTok).Code)

	// admin hands out a read-only token
	rec = f.do(t, http.MethodPost, "/auth/tokens", `{"sub":"registrar","role":"auditor"}`, adminTok)
	require.Equal(t, http.StatusOK, rec.Code)
	auditorTok := decode[map[string]string](t, rec)["access_token"]

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/history", "", auditorTok).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, "/history", "", auditorTok).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/auth/tokens", `{"sub":"x","role":"admin"}`, auditorTok).Code)

	rec = f.do(t, http.MethodDelete, "/history", "", adminTok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[map[string]int64](t, rec)["deleted"])
}

func TestMount_WithoutHistory(t *testing.T) {
	r := chi.NewRouter()
	api.Mount(r, api.Deps{Converter: converter.NewService(), DefaultDirection: scale.TargetToSource})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"cgpa":"4"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"aiub-nsu"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	f := newFixture(t, api.NewRateLimiter(1, 2))

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, f.do(t, http.MethodPost, "/convert", `{"cgpa":"3"}`, "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other routes are not limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/policies", "", "").Code)

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"cgpa":"3"}`))
	req.RemoteAddr = "198.51.100.7:5555"
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	assert.Nil(t, api.NewRateLimiter(0, 10))
}
