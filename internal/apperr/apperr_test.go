package apperr_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	withStatus := &apperr.APIError{Status: http.StatusNotFound, Message: "Product not found"}
	assert.Equal(t, "[404] Product not found", withStatus.Error())

	network := apperr.NewNetworkError()
	assert.Equal(t, "network failure", network.Error())
}

func TestClassifiers(t *testing.T) {
	t.Parallel()

	authErr := &apperr.APIError{Status: http.StatusUnauthorized, Message: "Authentication required"}
	notFound := &apperr.APIError{Status: http.StatusNotFound, Message: "not found"}
	server := &apperr.APIError{Status: http.StatusInternalServerError, Message: "boom"}
	network := apperr.NewNetworkError()
	validation := apperr.Validation("target price must be a positive number")

	assert.True(t, apperr.IsAuth(authErr))
	assert.False(t, apperr.IsAuth(notFound))
	assert.False(t, apperr.IsAuth(validation))

	assert.True(t, apperr.IsNotFound(notFound))
	assert.False(t, apperr.IsNotFound(server))

	assert.True(t, apperr.IsNetwork(network))
	assert.False(t, apperr.IsNetwork(server))

	assert.True(t, apperr.IsValidation(validation))
	assert.False(t, apperr.IsValidation(network))
}

func TestClassifiers_SeeThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("collection.Load: %w", &apperr.APIError{Status: http.StatusUnauthorized, Message: "expired"})
	assert.True(t, apperr.IsAuth(wrapped))

	wrappedValidation := fmt.Errorf("alerts.Create: %w", apperr.Validation("no product selected"))
	require.True(t, apperr.IsValidation(wrappedValidation))
	assert.False(t, apperr.IsAuth(wrappedValidation))
}
