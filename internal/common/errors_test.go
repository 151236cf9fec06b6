package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialError_MatchesKindAndFamily(t *testing.T) {
	cause := errors.New("boom")

	exp := Expired(cause)
	assert.ErrorIs(t, exp, ErrExpiredCredential)
	assert.ErrorIs(t, exp, ErrInvalidCredentials)
	assert.ErrorIs(t, exp, cause)
	assert.NotErrorIs(t, exp, ErrMalformedCredential)

	mal := fmt.Errorf("verify: %w", Malformed(nil))
	assert.ErrorIs(t, mal, ErrMalformedCredential)
	assert.ErrorIs(t, mal, ErrInvalidCredentials)
	assert.NotErrorIs(t, mal, ErrExpiredCredential)
	assert.Equal(t, "verify: credential malformed", mal.Error())
}

func TestValidation_CarriesMessage(t *testing.T) {
	err := Validation("filename is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "filename is required", err.Error())

	var me *MessageError
	assert.True(t, errors.As(err, &me))
}
