package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCollection = `
name: orders-suite
vars:
  host: api.example.com
  token: t-1
items:
  - name: login
    method: POST
    url: https://{{host}}/login
    headers:
      Content-Type: application/json
    body: '{"user":"u"}'
    capture: true
    postScript: |
      vars.session = parse_json(response.body).session;
  - name: create
    method: POST
    url: https://{{host}}/orders
    params:
      dry_run: "true"
    timeout: 5s
perf:
  item: create
  iterations: 500
  concurrency: 20
  rate: 100.5
`

func TestParseCollection(t *testing.T) {
	c, err := Parse([]byte(sampleCollection))
	require.NoError(t, err)

	assert.Equal(t, "orders-suite", c.Name)
	assert.Equal(t, "api.example.com", c.Vars["host"])
	require.Len(t, c.Items, 2)

	items := c.PipelineItems()
	assert.Equal(t, "login", items[0].Name)
	assert.Equal(t, "application/json", items[0].Headers["Content-Type"])
	assert.Contains(t, items[0].PostScript, "vars.session")
	assert.True(t, items[0].Capture)
	assert.False(t, items[1].Capture)
	assert.Equal(t, 5*time.Second, items[1].Timeout)
	assert.Equal(t, "true", items[1].Params["dry_run"])

	require.NotNil(t, c.Perf)
	assert.Equal(t, 500, c.Perf.Iterations)
	assert.Equal(t, 20, c.Perf.Concurrency)
	assert.InDelta(t, 100.5, c.Perf.Rate, 0.001)

	item, err := c.Item("create")
	require.NoError(t, err)
	assert.Equal(t, "https://{{host}}/orders", item.URL)
}

func TestParseRejectsInvalidItems(t *testing.T) {
	_, err := Parse([]byte("items:\n  - name: nope\n    method: GET\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")

	_, err = Parse([]byte("items: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("items: {broken\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("items:\n  - name: a\n    method: GET\n    url: http://x\n    timeout: fast\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestPerfDurationParsing(t *testing.T) {
	c, err := Parse([]byte(`
items:
  - name: a
    method: GET
    url: http://example.com
perf:
  item: a
  duration: 30s
  concurrency: 2
`))
	require.NoError(t, err)
	d, err := c.Perf.ParseDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	var none *PerfConfig
	d, err = none.ParseDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = Parse([]byte(`
items:
  - name: a
    method: GET
    url: http://example.com
perf:
  duration: forever
`))
	assert.Error(t, err)
}

func TestParseRejectsUnknownPerfItem(t *testing.T) {
	_, err := Parse([]byte(`
items:
  - name: a
    method: GET
    url: http://example.com
perf:
  item: missing
  iterations: 10
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCollection), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
