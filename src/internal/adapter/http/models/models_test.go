package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateCustomerRequestValidate(t *testing.T) {
	assert.NoError(t, CreateCustomerRequest{Name: "Ada", Email: "ada@example.com"}.Validate())

	err := CreateCustomerRequest{Email: "not-an-email"}.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "email must be a valid address")
	}

	for _, email := range []string{"a@@example.com", "@example.com", "ada@", "ada smith@example.com"} {
		assert.Error(t, CreateCustomerRequest{Name: "Ada", Email: email}.Validate(), email)
	}
}

func TestCreateAccountRequestValidate(t *testing.T) {
	assert.NoError(t, CreateAccountRequest{CustomerID: 1}.Validate())
	assert.NoError(t, CreateAccountRequest{CustomerID: 1, InitialBalance: decimal.RequireFromString("10.50")}.Validate())
	assert.Error(t, CreateAccountRequest{}.Validate())
	assert.Error(t, CreateAccountRequest{CustomerID: 1, InitialBalance: decimal.NewFromInt(-1)}.Validate())
}

func TestTransferRequestValidate(t *testing.T) {
	valid := TransferRequest{FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(5), IdempotencyKey: "k1"}
	assert.NoError(t, valid.Validate())

	err := TransferRequest{}.Validate()
	if assert.Error(t, err) {
		for _, msg := range []string{"fromAccountId", "toAccountId", "amount", "idempotencyKey"} {
			assert.Contains(t, err.Error(), msg)
		}
	}

	blank := valid
	blank.IdempotencyKey = "   "
	assert.Error(t, blank.Validate())
}
