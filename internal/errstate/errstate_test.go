package errstate_test

import (
	"errors"
	"testing"

	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/stretchr/testify/assert"
)

func TestChannel_WriteWins(t *testing.T) {
	t.Parallel()

	ch := errstate.NewChannel()

	_, present := ch.Message()
	assert.False(t, present)

	ch.Fail(errors.New("first failure"))
	ch.Fail(errors.New("second failure"))

	msg, present := ch.Message()
	assert.True(t, present)
	assert.Equal(t, "second failure", msg)
}

func TestChannel_ClearAndDismiss(t *testing.T) {
	t.Parallel()

	ch := errstate.NewChannel()
	ch.Fail(errors.New("boom"))

	ch.Clear()
	_, present := ch.Message()
	assert.False(t, present)

	ch.Fail(errors.New("boom again"))
	ch.Dismiss()
	_, present = ch.Message()
	assert.False(t, present)
}

func TestChannel_NilErrorIgnored(t *testing.T) {
	t.Parallel()

	ch := errstate.NewChannel()
	ch.Fail(nil)

	_, present := ch.Message()
	assert.False(t, present)
}
