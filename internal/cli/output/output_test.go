package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsift/pollwatch/internal/cli/output"
)

func TestTable_RenderTo(t *testing.T) {
	table := output.NewTable("Poll ID", "Name")
	table.AddRow("7", "Best language")
	table.AddRow("42", "Lunch spot")

	var buf bytes.Buffer
	table.RenderTo(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "POLL ID")
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "Best language")
	assert.Contains(t, lines[2], "Lunch spot")

	// Columns align: every NAME cell starts at the same offset
	col := strings.Index(lines[0], "NAME")
	assert.Equal(t, col, strings.Index(lines[1], "Best language"))
	assert.Equal(t, col, strings.Index(lines[2], "Lunch spot"))
}

func TestTable_Empty(t *testing.T) {
	table := output.NewTable("Poll ID")

	var buf bytes.Buffer
	table.RenderTo(&buf)

	assert.Equal(t, "POLL ID\n", buf.String())
}
