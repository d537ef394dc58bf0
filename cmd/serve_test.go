package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsight/sic-cli/internal/model"
	"github.com/statsight/sic-cli/internal/sic"
	"github.com/statsight/sic-cli/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	idx, err := sic.NewIndex([]model.Record{
		{Description: "Growing of rice", Code: "01120", Bridge: "A"},
		{Description: "Growing of cereals", Code: "01110", Bridge: "A"},
		{Description: "Insulating activities", Code: "43290", Bridge: "QRSUY"},
	})
	require.NoError(t, err)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv := httptest.NewServer(newRouter(idx, testResolver(t), st))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Lookup(t *testing.T) {
	srv := testServer(t)

	var result lookupResult
	status := getJSON(t, srv.URL+"/v1/lookup?description=insulating+activities", &result)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, result.Matched)
	require.NotNil(t, result.Record)
	assert.Equal(t, "43290", result.Record.Code)
	assert.Equal(t, "43", result.Division)

	status = getJSON(t, srv.URL+"/v1/lookup?description=nothing+here", &result)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, result.Matched)

	status = getJSON(t, srv.URL+"/v1/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Divisions(t *testing.T) {
	srv := testServer(t)

	var records []model.Record
	status := getJSON(t, srv.URL+"/v1/divisions/01110", &records)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, records, 2)

	status = getJSON(t, srv.URL+"/v1/divisions/xx", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_UniqueDivisions(t *testing.T) {
	srv := testServer(t)

	var result struct {
		Divisions []model.DivisionGroup `json:"divisions"`
		Issues    []model.Issue         `json:"issues"`
	}
	status := postJSON(t, srv.URL+"/v1/divisions/unique",
		`[{"sic_code":"01110"},{"sic_code":"01120"},{"sic_code":"43290"},{"sic_code":"x"}]`,
		&result)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, result.Divisions, 2)
	assert.Equal(t, "01", result.Divisions[0].Division)
	assert.Equal(t, "43", result.Divisions[1].Division)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 3, result.Issues[0].Index)

	status = postJSON(t, srv.URL+"/v1/divisions/unique", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Rephrase(t *testing.T) {
	srv := testServer(t)

	var result struct {
		SICCode             string `json:"sic_code"`
		Matched             bool   `json:"matched"`
		ReviewedDescription string `json:"reviewed_description"`
	}
	status := getJSON(t, srv.URL+"/v1/rephrase/01110", &result)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, result.Matched)
	assert.Equal(t, "Crop growing", result.ReviewedDescription)

	status = getJSON(t, srv.URL+"/v1/rephrase/99999", &result)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, result.Matched)
}

func TestServer_RephraseProcess(t *testing.T) {
	srv := testServer(t)

	var result struct {
		Payload model.ClassificationPayload `json:"payload"`
		Issues  []model.Issue               `json:"issues"`
	}
	status := postJSON(t, srv.URL+"/v1/rephrase/process",
		`{"sic_code":"01110","sic_candidates":[{"sic_code":"01120","likelihood":0.4},{"sic_code":"99999"}]}`,
		&result)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Crop growing", result.Payload.SICDescription)
	require.Len(t, result.Payload.SICCandidates, 2)
	assert.Equal(t, "Rice growing", result.Payload.SICCandidates[0].Descriptive)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 1, result.Issues[0].Index)

	// Each processed payload is recorded as a run.
	var runs []model.ResolutionRun
	status = getJSON(t, srv.URL+"/v1/runs", &runs)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, runs, 1)
	assert.Equal(t, "01110", runs[0].Input.SICCode)
}
