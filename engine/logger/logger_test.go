package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		_ = SetLevel("info")
	})

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, log.WarnLevel, Logger().GetLevel())

	Infof("hidden %d", 1)
	assert.Empty(t, buf.String())

	Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	require.NoError(t, SetLevel("error"))
	t.Cleanup(func() { _ = SetLevel("info") })

	assert.Error(t, SetLevel("chatty"))
	assert.Equal(t, log.ErrorLevel, Logger().GetLevel())
}
