package nbt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterEmitsRootCompoundHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.StartCompound("")
	w.String("greeting", "hi")
	w.EndCompound()
	require.NoError(t, w.Err())

	out := buf.Bytes()
	require.GreaterOrEqual(t, len(out), 3)
	assert.Equal(t, byte(TagCompound), out[0])
	assert.Equal(t, byte(0), out[1]) // name length high byte
	assert.Equal(t, byte(0), out[2]) // name length low byte (unnamed root)
	assert.Equal(t, byte(TagEnd), out[len(out)-1])
}

func TestWriterNestedCompoundAndList(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.StartCompound("root")
	w.StartCompound("nested")
	w.Int("x", 42)
	w.EndCompound()
	w.StartList("items", TagString, 0)
	w.EndCompound()
	require.NoError(t, w.Err())
	assert.NotEmpty(t, buf.Bytes())
}

func TestWriterPropagatesFirstError(t *testing.T) {
	w := NewWriter(failingWriter{})
	w.StartCompound("root")
	w.Int("x", 1)
	require.Error(t, w.Err())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, bytes.ErrTooLarge
}
