// internal/service/transfer_log_test.go
package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferLog_BoundedNewestFirst(t *testing.T) {
	log := NewTransferLog(3)
	for i := 1; i <= 5; i++ {
		log.Record(TransferLogEntry{Action: ActionInitiated, Details: fmt.Sprintf("#%d", i)})
	}

	all := log.Recent(0)
	assert.Len(t, all, 3)
	assert.Equal(t, "#5", all[0].Details)
	assert.Equal(t, "#3", all[2].Details)
	assert.NotEmpty(t, all[0].ID)
	assert.False(t, all[0].Timestamp.IsZero())

	assert.Len(t, log.Recent(1), 1)
	assert.Len(t, log.Recent(10), 3)
}

func TestTransferLog_DefaultSize(t *testing.T) {
	log := NewTransferLog(0)
	for i := 0; i < DefaultTransferLogSize+5; i++ {
		log.Record(TransferLogEntry{Action: ActionSuccess})
	}
	assert.Len(t, log.Recent(0), DefaultTransferLogSize)
}
