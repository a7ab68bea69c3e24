package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorCarriesCode(t *testing.T) {
	err := NewError(http.StatusBadGateway, "engine unavailable")

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusBadGateway, respErr.Code)
	assert.Equal(t, "engine unavailable", err.Error())
}

func TestErrorIsMatchesCodeAndMessage(t *testing.T) {
	assert.ErrorIs(t, NewError(http.StatusNotFound, "missing"), NewError(http.StatusNotFound, "missing"))
	assert.NotErrorIs(t, NewError(http.StatusNotFound, "missing"), NewError(http.StatusInternalServerError, "missing"))
	assert.NotErrorIs(t, NewError(http.StatusNotFound, "missing"), NewError(http.StatusNotFound, "other"))
}
