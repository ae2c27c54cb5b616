package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDecodePrintsSpanSummary(t *testing.T) {
	input := `[{"traceId":"1","id":"2","parentId":"1","name":"op","duration":500,
		"annotations":[{"value":"cs","timestamp":1}],
		"binaryAnnotations":[{"key":"k","value":"v"}]}]`

	var out bytes.Buffer
	err := runDecode(strings.NewReader(input), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "op")
	assert.Contains(t, text, "parent=1")
	assert.Contains(t, text, "cs")
	assert.Contains(t, text, "k=v")
}

func TestRunDecodeRejectsInvalidJSON(t *testing.T) {
	var out bytes.Buffer
	err := runDecode(strings.NewReader("not json"), &out)
	assert.Error(t, err)
}
