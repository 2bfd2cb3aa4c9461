// internal/util/errors_test.go
package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferError_Fatal(t *testing.T) {
	assert.True(t, NewTransferError(KindStateCorruption, "").Fatal())
	for _, kind := range []TransferErrorKind{KindInvalidAmount, KindSelfTransfer, KindUnknownRecipient, KindInsufficientFunds} {
		assert.False(t, NewTransferError(kind, "").Fatal(), kind)
	}
}

func TestTransferError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewTransferError(KindInsufficientFunds, "need more"))

	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, "wrapped: need more", err.Error())
	kind, ok := TransferErrorKindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindInsufficientFunds, kind)
}
