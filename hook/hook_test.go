package hook

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	tryErr   error
	panicMsg string

	caughtErr  error
	finallyRan bool
}

func (h *recordingHook) Try() error {
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.tryErr
}

func (h *recordingHook) Catch(err error) error {
	h.caughtErr = err
	return err
}

func (h *recordingHook) Finally() {
	h.finallyRan = true
}

func TestCallSuccess(t *testing.T) {
	h := &recordingHook{}
	require.NoError(t, Call(h))
	assert.True(t, h.finallyRan)
	assert.Nil(t, h.caughtErr)
}

func TestCallErrorGoesThroughCatch(t *testing.T) {
	boom := errors.New("boom")
	h := &recordingHook{tryErr: boom}

	err := Call(h)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, h.caughtErr, boom)
	assert.True(t, h.finallyRan)
}

func TestCallRecoversPanic(t *testing.T) {
	h := &recordingHook{panicMsg: "nil pointer somewhere"}

	err := Call(h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic occurred")
	assert.Contains(t, err.Error(), "nil pointer somewhere")
	assert.True(t, h.finallyRan)
}

func TestCallNil(t *testing.T) {
	assert.Error(t, Call(nil))
}

func TestGuard(t *testing.T) {
	require.NoError(t, Guard(func() error { return nil }))

	boom := errors.New("action failed")
	assert.ErrorIs(t, Guard(func() error { return boom }), boom)

	err := Guard(func() error { panic("unexpected state") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected state")
}
