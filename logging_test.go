package ztrace

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLoggerRedirectsPackageLogger(t *testing.T) {
	original := logger()
	defer SetLogger(*original)

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger().Error().Msg("boom")
	assert.Contains(t, buf.String(), "boom")
}
