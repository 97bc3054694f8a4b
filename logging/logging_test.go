package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironautomata/ironautomata/logging"
)

func TestEmitNilSinkIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		logging.Emit(nil, logging.Event{Severity: logging.Warning, Message: "unused"})
	})
}

func TestEmitDeliversToSink(t *testing.T) {
	var got []logging.Event
	sink := logging.Sink(func(e logging.Event) { got = append(got, e) })

	logging.Emit(sink, logging.Event{
		Severity: logging.Error,
		Location: "codec.Read",
		Message:  "dangling reference",
		Fields:   map[string]any{"id": 7},
	})

	require := assert.New(t)
	require.Len(got, 1)
	require.Equal(logging.Error, got[0].Severity)
	require.Equal("codec.Read", got[0].Location)
	require.Equal(7, got[0].Fields["id"])
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "DEBUG", logging.Debug.String())
	assert.Equal(t, "INFO", logging.Info.String())
	assert.Equal(t, "WARN", logging.Warning.String())
	assert.Equal(t, "ERROR", logging.Error.String())
}

func TestDiscardSwallowsEvents(t *testing.T) {
	sink := logging.Discard()
	assert.NotPanics(t, func() {
		sink(logging.Event{Severity: logging.Info, Message: "ignored"})
	})
}
