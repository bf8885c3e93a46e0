package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { base = newBase(bytes.NewBuffer(nil)) })
	require.NoError(t, Configure("debug", "json"))

	New("checker").Info("abcd1234", "probe %s", "1.2.3.4:80")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "checker", line["component"])
	assert.Equal(t, "abcd1234", line["id"])
	assert.Equal(t, "probe 1.2.3.4:80", line["msg"])
	assert.Equal(t, "info", line["level"])
}

func TestBackgroundID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { base = newBase(bytes.NewBuffer(nil)) })
	require.NoError(t, Configure("info", "json"))

	New("scraper").WarnBg("no rows")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, backgroundID, line["id"])
}

func TestBackgroundLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { base = newBase(bytes.NewBuffer(nil)) })
	require.NoError(t, Configure("debug", "json"))

	l := New("main")
	l.DebugBg("d %d", 1)
	l.InfoBg("i %d", 2)
	l.WarnBg("w %d", 3)
	l.ErrorBg("e %d", 4)

	want := []struct{ level, msg string }{
		{"debug", "d 1"},
		{"info", "i 2"},
		{"warning", "w 3"},
		{"error", "e 4"},
	}
	dec := json.NewDecoder(&buf)
	for _, w := range want {
		var line map[string]interface{}
		require.NoError(t, dec.Decode(&line))
		assert.Equal(t, w.level, line["level"])
		assert.Equal(t, w.msg, line["msg"])
		assert.Equal(t, backgroundID, line["id"])
		assert.Equal(t, "main", line["component"])
	}
	assert.False(t, dec.More())
}

func TestConfigureRejectsBadInput(t *testing.T) {
	assert.Error(t, Configure("loud", "text"))
	assert.Error(t, Configure("info", "xml"))
}
