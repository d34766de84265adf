package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2fo/pilot"
)

func TestDecode(t *testing.T) {
	msg := []byte(`{
		"event": "DATASET_FILE_NOTIFICATION",
		"payload": {
			"source": {"global_entity_id": "file-1", "name": "a.txt"},
			"session_id": "alice-1",
			"status": "FINISH",
			"action": "dataset_file_rename",
			"payload": {"name": "b.txt"}
		}
	}`)

	n, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, pilot.EventDatasetFileNotification, n.Event)
	assert.Equal(t, "file-1", n.SourceID())
	assert.Equal(t, "alice-1", n.Payload.SessionID)
	assert.Equal(t, pilot.StatusFinish, n.Payload.Status)
	assert.Equal(t, pilot.ActionRename, n.Payload.Action)
	assert.JSONEq(t, `{"name": "b.txt"}`, string(n.Payload.Payload))

	_, err = Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	in := pilot.Notification{Event: pilot.EventDatasetFileNotification}
	in.Payload.Source.GlobalEntityID = "file-2"
	in.Payload.Action = pilot.ActionMove

	data, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
