package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	evt := New(PromptSaved, map[string]interface{}{"user_id": "42"})

	raw, err := Encode(evt)
	require.NoError(t, err)

	got, ok, err := Decode(raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, evt.ID, got.ID)
	assert.Equal(t, PromptSaved, got.EventType())
	assert.Equal(t, "42", got.Payload()["user_id"])
	assert.True(t, evt.OccurredAt.Equal(got.Timestamp()))
}

func TestDecode_BarePayload(t *testing.T) {
	_, ok, err := Decode([]byte(`{"user_id": "42", "text": "hello"}`))

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecode_Invalid(t *testing.T) {
	_, _, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}
