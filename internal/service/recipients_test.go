// internal/service/recipients_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList(t *testing.T) {
	list := NewAllowList("Client@Client.com", " amit@client.com ")

	assert.True(t, list.Exists("client@client.com"))
	assert.True(t, list.Exists("AMIT@client.com"))
	assert.False(t, list.Exists("admin@bank.com"))
	assert.False(t, list.Exists(""))
}

func TestRecipientValidatorFunc(t *testing.T) {
	var v RecipientValidator = RecipientValidatorFunc(func(id string) bool { return id == "x" })
	assert.True(t, v.Exists("x"))
	assert.False(t, v.Exists("y"))
}
