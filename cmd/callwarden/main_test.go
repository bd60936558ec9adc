package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callwarden/callwarden/pkg/domain"
	"github.com/callwarden/callwarden/pkg/screening"
)

const testConfig = `logging:
  level: error
screening:
  timeout_ms: 2000
  blocklist:
    - "+19005550100"
  contacts:
    - number: "+15550111"
      name: Robo
      send_to_voicemail: true
`

const testScenario = `calls:
  - number: "+19005550100"
  - number: "+15550111"
  - number: "+15559999"
    caller_name: Stranger
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestScreenCommandPrintsVerdicts(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "callwarden.yaml", testConfig)
	scenarioPath := writeFile(t, dir, "scenario.yaml", testScenario)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"screen", "--config", configPath, scenarioPath})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "reject")
	assert.Contains(t, lines[0], "blocked_number")
	assert.Contains(t, lines[1], "silence")
	assert.Contains(t, lines[2], "allow")
}

func TestScreenCommandRequiresScenario(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"screen"})

	require.Error(t, cmd.Execute())
}

func TestScreenCommandRejectsEmptyScenario(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "scenario.yaml", "calls: []\n")

	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"screen", scenarioPath})

	require.Error(t, cmd.Execute())
}

func TestScreenHandler(t *testing.T) {
	screener := screening.NewScreener(screening.Options{})
	require.NoError(t, screener.Apply(t.Context(), domain.Snapshot{
		Generation: 1,
		Screening: domain.ScreeningConfig{
			TimeoutMS:                      2000,
			CheckCompletedFiltersOnTimeout: true,
			Blocklist:                      []string{"+19005550100"},
		},
	}))

	handler := screenHandler(screener)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/screen",
		strings.NewReader(`{"number": "+19005550100"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reject":true`)
	assert.Contains(t, rec.Body.String(), `"block_reason":"blocked_number"`)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/screen", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/screen", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
