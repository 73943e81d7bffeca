package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	body, err := Encode("import.completed", map[string]any{"batchId": "b-1", "imported": 3})
	require.NoError(t, err)

	var msg struct {
		Pattern string         `json:"pattern"`
		Data    map[string]any `json:"data"`
		ID      string         `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &msg))

	assert.Equal(t, "import.completed", msg.Pattern)
	assert.Equal(t, "b-1", msg.Data["batchId"])
	assert.Equal(t, float64(3), msg.Data["imported"])
	_, err = uuid.Parse(msg.ID)
	assert.NoError(t, err)
}

func TestEncode_Unmarshalable(t *testing.T) {
	_, err := Encode("import.completed", make(chan int))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "import.completed", nil))
}
