package worker

import (
	"bytes"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refutils/go-refutils/referr"
)

func TestPayload_ValueRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := &ProcResult{ExitCode: 3, Stdout: []byte("out"), Stderr: []byte("err")}
	require.NoError(t, sendResult(&buf, want))

	got, err := decodePayload(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPayload_ErrorRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"timeout", &referr.TimeoutError{Cmd: "sleep 100", Timeout: 10 * time.Second}},
		{"exec", &referr.ExecError{Cmd: "./a.out", ExitCode: -9, Stdout: []byte("so"), Stderr: []byte("se")}},
		{"validation", referr.Validationf("argument 3 contains a NUL byte at offset 7")},
		{"wrong-output", &referr.WrongOutputError{Output: "garbage"}},
		{"config", referr.Configf("bad group")},
		{"internal", referr.Internalf("anomaly")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, sendError(&buf, tc.err))

			res, err := decodePayload(buf.Bytes())
			assert.Nil(t, res)
			require.Error(t, err)
			assert.Equal(t, tc.err, err, "error should survive the channel unchanged")
		})
	}
}

func TestPayload_UnclassifiedErrorBecomesInternal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sendError(&buf, errors.New("some unexpected fault")))

	_, err := decodePayload(buf.Bytes())
	var internal *referr.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Contains(t, internal.Msg, "some unexpected fault")
}

func TestPayload_EmptyChannel(t *testing.T) {
	_, err := decodePayload(nil)
	var internal *referr.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Contains(t, internal.Msg, "without a payload")
}

func TestPayload_GarbageRejected(t *testing.T) {
	_, err := decodePayload([]byte("\x01\x02not a gob stream"))
	var internal *referr.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Contains(t, internal.Msg, "rejected worker payload")
}

func TestPayload_UnknownKindRejected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(&payload{Kind: payloadKind(99)}))

	res, err := decodePayload(buf.Bytes())
	assert.Nil(t, res, "an unknown shape must never be reconstructed")
	var internal *referr.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Contains(t, internal.Msg, "unknown kind 99")
}

func TestPayload_UnknownErrorKindRejected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(&payload{
		Kind: payloadError,
		Err:  &wireError{Kind: referr.Kind(42), Msg: "mystery"},
	}))

	_, err := decodePayload(buf.Bytes())
	var internal *referr.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Contains(t, internal.Msg, "unknown kind 42")
}

func TestPayload_ValueWithoutResultRejected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(&payload{Kind: payloadValue}))

	_, err := decodePayload(buf.Bytes())
	var internal *referr.InternalError
	require.ErrorAs(t, err, &internal)
}
