package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/model"
	"github.com/sup9097/table-dice-app/internal/table"
)

var exportedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sample() model.Export {
	return Build(map[table.Name][]dice.Roll{
		"sim-2f": {{1, 1, 2}},
		"2f":     {{1, 2, 3}, {4, 5, 6}},
		"1-1":    nil,
	}, exportedAt)
}

func TestBuildOrdersTablesAndSkipsEmpty(t *testing.T) {
	exp := sample()
	require.Len(t, exp.Tables, 2)
	assert.Equal(t, "2f", exp.Tables[0].Table)
	assert.Equal(t, "base", exp.Tables[0].Kind)
	assert.Equal(t, 2, exp.Tables[0].Rows)
	assert.Equal(t, "sim-2f", exp.Tables[1].Table)
	assert.Equal(t, "simulation", exp.Tables[1].Kind)
	assert.Equal(t, "2024-03-01T12:00:00Z", exp.ExportedAt)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatJSON))

	var got model.Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), `"table": "2f"`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatYAML))
	assert.True(t, strings.HasPrefix(buf.String(), "exported_at:"))

	var got model.Export
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sample(), "csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
