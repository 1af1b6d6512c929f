package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputCapture(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("query %q took %dms", "fees", 12)
	Warn("persisted tier write failed")
	Section("Cache Lookup")

	out := buf.String()
	assert.Contains(t, out, `query \"fees\" took 12ms`)
	assert.Contains(t, out, "persisted tier write failed")
	assert.Contains(t, out, "=== Cache Lookup ===")
}

func TestSetupWithoutFile(t *testing.T) {
	err := Setup(true, "")
	assert.NoError(t, err)
	assert.True(t, IsVerbose())
	assert.NoError(t, Close())
}
