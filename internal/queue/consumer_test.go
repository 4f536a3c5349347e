package queue

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttendanceChangedEvent(t *testing.T) {
	ev := NewAttendanceChangedEvent(3, "alex", 42, 2013, "Cardiff City", "attend", true)
	_, err := uuid.Parse(ev.EventID)
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ChangedAt)
	assert.True(t, ev.Attended)
}

func TestHandleMessage_WritesLine(t *testing.T) {
	ev := NewAttendanceChangedEvent(3, "alex", 42, 2013, "Cardiff City", "attend", true)
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, HandleMessage(&buf, body))
	line := buf.String()
	assert.Contains(t, line, "Attendance attend")
	assert.Contains(t, line, "game_id=42")
	assert.Contains(t, line, `opponents="Cardiff City"`)
	assert.Contains(t, line, "now=attended")
}

func TestHandleMessage_Rejects(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, HandleMessage(&buf, []byte("{not json")))
	assert.Error(t, HandleMessage(&buf, []byte(`{"user_id":1}`)))
	assert.Zero(t, buf.Len())
}
