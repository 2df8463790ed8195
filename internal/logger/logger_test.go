package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("probe %s", "full")

	assert.Equal(t, "[DEBUG] probe full\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Bootstrap")
	assert.Empty(t, buf.String(), "sections are verbose-only")

	SetVerbose(true)
	Section("Bootstrap")
	assert.Equal(t, "\n=== Bootstrap ===\n", buf.String())
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("ingested %d chunks", 42)

	assert.Equal(t, "[INFO] ingested 42 chunks\n", buf.String())
}

func TestWarn_AlwaysWritten(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("unsupported file type: %s", ".xls")

	assert.Equal(t, "[WARN] unsupported file type: .xls\n", buf.String())
}

func TestError(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Error("extract %s: %v", "a.pdf", "malformed")

	assert.Equal(t, "[ERROR] extract a.pdf: malformed\n", buf.String())
}

func TestSetLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	require.NoError(t, SetLevel("warn"))
	Info("dropped")
	Warn("kept")
	assert.Equal(t, "[WARN] kept\n", buf.String())

	require.NoError(t, SetLevel("debug"))
	assert.True(t, IsVerbose())

	err := SetLevel("loud")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid level")
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
