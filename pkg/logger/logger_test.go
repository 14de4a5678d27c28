package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
	assert.Equal(t, logrus.InfoLevel, parseLevel("verbose"))
}

func TestComponentWritesJSON(t *testing.T) {
	Init("info")
	var buf bytes.Buffer
	SetOutput(&buf)

	Component("merger").WithField("contributors", 3).Info("merged")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "merger", entry["component"])
	assert.Equal(t, float64(3), entry["contributors"])
	assert.Equal(t, "merged", entry["msg"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	Init("info")
	var buf bytes.Buffer
	SetOutput(&buf)

	GetLogger().Debug("hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	GetLogger().Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
