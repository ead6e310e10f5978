// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/metrics"
	"github.com/jcodagnone/alumap/query"
	"github.com/jcodagnone/alumap/spatial"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

// kmPerDegree is the length of one degree of latitude on the haversine sphere.
const kmPerDegree = 6371.0 * 3.141592653589793 / 180

func north(p spatial.Point, km float64) *spatial.Point {
	return &spatial.Point{Lat: p.Lat + km/kmPerDegree, Lng: p.Lng}
}

var shanghai = spatial.Point{Lat: 31.2304, Lng: 121.4737}

func setupServerTest(t *testing.T) (*gin.Engine, alumni.Repository) {
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := alumni.NewRepository(db)
	require.NoError(t, repo.CreateSchema())

	year := 2015
	require.NoError(t, repo.BulkInsert([]*alumni.Record{
		{ID: 1, Name: "张三", Industry: "AI", City: "上海", District: "黄浦区", Address: "南京东路1号", Point: &shanghai, PrivacyLevel: alumni.TierAddress, GraduationYear: &year},
		{ID: 2, Name: "李四", Industry: "AI", City: "上海", District: "黄浦区", Point: north(shanghai, 1), PrivacyLevel: alumni.TierAddress, IsStartup: true, FundingStage: "A轮"},
		{ID: 3, Name: "王五", Industry: "金融", City: "上海", District: "浦东新区", Point: north(shanghai, 3)},
		{ID: 4, Name: "隐身", Industry: "AI", City: "上海", Point: north(shanghai, 1), PrivacyLevel: alumni.TierHidden},
		{ID: 5, Name: "好友", Industry: "AI", City: "北京", District: "朝阳区", PrivacyLevel: alumni.TierFriends},
		{ID: 6, Name: "Ana", Industry: "AI", Country: "USA", City: "Boston", PrivacyLevel: alumni.TierCity},
		{ID: 7, Name: "赵六", Industry: "教育", City: "北京", District: "朝阳区", Major: "Computer Science"},
	}))

	reg := prometheus.NewRegistry()
	engine := query.NewEngine(repo, metrics.New(reg))
	server := NewServer(engine, repo, reg, Config{JWTSecret: testSecret})

	return server.Router(), repo
}

func do(t *testing.T, router http.Handler, method, target string, uid int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if uid != 0 {
		token, err := NewToken(testSecret, uid, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

type listResponse struct {
	Total int                  `json:"total"`
	Items []query.PublicRecord `json:"items"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, resp.Total, len(resp.Items))

	return resp
}

func itemIDs(items []query.PublicRecord) []int64 {
	out := []int64{}
	for _, it := range items {
		out = append(out, it.ID)
	}

	return out
}

func TestHealthAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/health", 0, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/alumni", 0, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/alumni", nil)
	token, err := NewToken("other_secret", 1, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := NewToken(testSecret, 1, -time.Minute)
	require.NoError(t, err)

	req, _ = http.NewRequest(http.MethodGet, "/alumni", nil)
	req.Header.Set("Authorization", "Bearer "+expired)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListAlumniAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	tests := []struct {
		name   string
		target string
		want   []int64
	}{
		{"all listable", "/alumni", []int64{1, 2, 3, 6, 7}},
		{"structured predicate", "/alumni?industry=AI", []int64{1, 2, 6}},
		{"startup flag", "/alumni?is_startup=1", []int64{2}},
		{"graduation year", "/alumni?graduation_year=2015", []int64{1}},
		{"keyword", "/alumni?keyword=%E7%8E%8B", []int64{3}},
		{"radius sorts by distance", "/alumni?lat=31.2304&lng=121.4737&radius_km=2", []int64{1, 2}},
		{"incomplete radius is ignored", "/alumni?lat=31.2304&lng=121.4737", []int64{1, 2, 3, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeList(t, do(t, router, http.MethodGet, tt.target, 1, ""))
			assert.Equal(t, tt.want, itemIDs(resp.Items))
		})
	}
}

func TestListAlumniInvalidQuery(t *testing.T) {
	router, _ := setupServerTest(t)

	for _, target := range []string{
		"/alumni?is_startup=yes",
		"/alumni?lat=abc",
		"/alumni?lat=91&lng=0&radius_km=1",
		"/alumni?graduation_year=twenty",
		"/alumni/nearby?lat=31",
		"/alumni/grouped?group_by=name",
		"/alumni/search/location",
	} {
		w := do(t, router, http.MethodGet, target, 1, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.JSONEq(t, `{"error":"invalid_query"}`, w.Body.String(), target)
	}
}

func TestListAlumniMasksLocation(t *testing.T) {
	router, _ := setupServerTest(t)

	resp := decodeList(t, do(t, router, http.MethodGet, "/alumni?industry=%E9%87%91%E8%9E%8D", 1, ""))
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	require.NotNil(t, item.District)
	assert.Equal(t, "浦东新区", *item.District)
	assert.Nil(t, item.Address)
	assert.Nil(t, item.Lat)
	assert.Nil(t, item.Lng)
}

func TestNearbyAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	resp := decodeList(t, do(t, router, http.MethodGet, "/alumni/nearby?lat=31.2304&lng=121.4737", 1, ""))
	assert.Equal(t, []int64{1, 2, 3}, itemIDs(resp.Items), "default radius is 5km")

	require.NotNil(t, resp.Items[1].DistanceKm)
	assert.InDelta(t, 1.0, *resp.Items[1].DistanceKm, 1e-9)

	resp = decodeList(t, do(t, router, http.MethodGet, "/alumni/nearby?lat=31.2304&lng=121.4737&radius_km=0.5", 1, ""))
	assert.Equal(t, []int64{1}, itemIDs(resp.Items))
}

func TestGroupedAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/alumni/grouped?industry=AI&group_radius_km=10", 1, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int                    `json:"total"`
		Items []query.ClusterSummary `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].ID)
	assert.Equal(t, "AI圈层", resp.Items[0].Name)
	assert.Equal(t, 2, resp.Items[0].VirtualCount)

	assert.NotContains(t, w.Body.String(), "张三")
	assert.NotContains(t, w.Body.String(), "李四")
}

func TestStartupsAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	resp := decodeList(t, do(t, router, http.MethodGet, "/alumni/startups?funding_stage=A%E8%BD%AE", 1, ""))
	assert.Equal(t, []int64{2}, itemIDs(resp.Items))
	assert.True(t, resp.Items[0].IsStartup)
}

func TestOverseasAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/alumni/overseas?country=USA", 1, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Groups query.OverseasGroups `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Groups["USA"]["Boston"], 1)
	assert.Equal(t, "Ana", resp.Groups["USA"]["Boston"][0].Name)
}

func TestSearchLocationAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	resp := decodeList(t, do(t, router, http.MethodGet, "/alumni/search/location?location=%E5%8C%97%E4%BA%AC+%E6%9C%9D%E9%98%B3", 1, ""))
	assert.Equal(t, []int64{7}, itemIDs(resp.Items), "friends-only profiles are excluded")

	resp = decodeList(t, do(t, router, http.MethodGet, "/alumni/search/location?location=%E5%8C%97%E4%BA%AC&major=computer", 1, ""))
	assert.Equal(t, []int64{7}, itemIDs(resp.Items))

	resp = decodeList(t, do(t, router, http.MethodGet, "/alumni/search/location?location=%E5%8C%97%E4%BA%AC&major=law", 1, ""))
	assert.Empty(t, resp.Items)
}

func TestHiddenNeverListedAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	for _, target := range []string{
		"/alumni",
		"/alumni?industry=AI",
		"/alumni?keyword=%E9%9A%90",
		"/alumni/nearby?lat=31.2304&lng=121.4737&radius_km=50",
		"/alumni/search/location?location=%E4%B8%8A%E6%B5%B7",
		"/alumni/overseas",
	} {
		w := do(t, router, http.MethodGet, target, 1, "")
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.NotContains(t, w.Body.String(), "隐身", target)
		assert.NotContains(t, w.Body.String(), "好友", target)
	}
}

func TestDetailAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/alumni/4", 1, "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail query.Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "隐身", detail.Name)
	assert.Nil(t, detail.City)
	assert.Nil(t, detail.Lat)

	w = do(t, router, http.MethodGet, "/alumni/99", 1, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/alumni/abc", 1, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid_id"}`, w.Body.String())
}

func TestMeAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/alumni/me", 4, "")
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "hidden", me["privacy_level"])
	assert.Equal(t, "上海", me["city"])
	assert.NotNil(t, me["lat"])
	assert.NotNil(t, me["lng"])
	assert.NotContains(t, me, "point", "coordinates use the same flat shape PUT /alumni/me accepts")

	w = do(t, router, http.MethodGet, "/alumni/me", 99, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMeAPI(t *testing.T) {
	router, repo := setupServerTest(t)

	body := `{"user":{"name":"张三丰"},"profile":{"company":"武当","lat":31.0,"lng":121.0,"skills":["太极"]}}`
	w := do(t, router, http.MethodPut, "/alumni/me", 1, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	rec, err := repo.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "张三丰", rec.Name)
	assert.Equal(t, "武当", rec.Company)
	assert.Equal(t, "上海", rec.City)
	assert.Equal(t, []string{"太极"}, rec.Skills)
	require.NotNil(t, rec.Point)
	assert.Equal(t, spatial.Point{Lat: 31.0, Lng: 121.0}, *rec.Point)

	w = do(t, router, http.MethodPut, "/alumni/me", 1, `{"profile":{"privacy_level":"public"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid_payload","field":"privacy_level","message":"unknown privacy level \"public\""}`, w.Body.String())

	w = do(t, router, http.MethodPut, "/alumni/me", 1, `{"profile":{"lat":"north"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid_payload"}`, w.Body.String())
}

func TestUpdatePrivacyAPI(t *testing.T) {
	router, repo := setupServerTest(t)

	w := do(t, router, http.MethodPut, "/alumni/1/privacy", 2, `{"privacy_level":"hidden"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPut, "/alumni/1/privacy", 1, `{"privacy_level":"public"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid_payload"}`, w.Body.String())

	w = do(t, router, http.MethodPut, "/alumni/1/privacy", 1, `{"privacy_level":"hidden"}`)
	require.Equal(t, http.StatusOK, w.Code)

	rec, err := repo.Get(1)
	require.NoError(t, err)
	assert.Equal(t, alumni.TierHidden, rec.PrivacyLevel)

	resp := decodeList(t, do(t, router, http.MethodGet, "/alumni?industry=AI", 2, ""))
	assert.Equal(t, []int64{2, 6}, itemIDs(resp.Items))

	w = do(t, router, http.MethodPut, "/alumni/99/privacy", 99, `{"privacy_level":"city"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPut, "/alumni/x/privacy", 1, `{"privacy_level":"city"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsAPI(t *testing.T) {
	router, _ := setupServerTest(t)

	decodeList(t, do(t, router, http.MethodGet, "/alumni", 1, ""))

	w := do(t, router, http.MethodGet, "/metrics", 0, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alumap_query_duration_seconds")
}

type failingStore struct{}

func (failingStore) FetchCandidates(_ alumni.Predicates) ([]*alumni.Record, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) Get(_ int64) (*alumni.Record, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) UpdatePrivacy(_ int64, _ alumni.PrivacyTier) error {
	return errors.New("connection reset")
}

func (failingStore) Update(_ int64, _ *alumni.ProfileUpdate) (*alumni.Record, error) {
	return nil, errors.New("connection reset")
}

func TestStoreFailureAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := failingStore{}
	server := NewServer(query.NewEngine(store, nil), store, prometheus.NewRegistry(), Config{JWTSecret: testSecret})
	router := server.Router()

	for _, target := range []string{"/alumni", "/alumni/grouped", "/alumni/1", "/alumni/me"} {
		w := do(t, router, http.MethodGet, target, 1, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, target)
		assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String(), target)
	}

	w := do(t, router, http.MethodPut, "/alumni/1/privacy", 1, `{"privacy_level":"city"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	router, _ := setupServerTest(t)

	req, _ := http.NewRequest(http.MethodOptions, "/alumni", bytes.NewReader(nil))
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/health", 0, "")
	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
