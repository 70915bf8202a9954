package console

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	err := fmt.Errorf("language French: %w", ModalNotFound("French"))
	assert.True(t, IsKind(err, KindModalNotFound))
	assert.False(t, IsKind(err, KindApplyNotFound))
	assert.Equal(t, "language French: console error: translation dialog did not open for French", err.Error())

	assert.True(t, IsKind(InsufficientInputs(2), KindInsufficientInputs))
	assert.Contains(t, InsufficientInputs(2).Error(), "expected at least 3 input fields, found 2")
	assert.True(t, IsKind(ApplyNotFound(), KindApplyNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindApplyNotFound))

	wrapped := &Error{Kind: KindModalNotFound, Message: "x", Cause: errors.New("timeout")}
	assert.Equal(t, "console error: x: timeout", wrapped.Error())
}
