package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hr/nimbus-hr/internal/shared"
	_ "github.com/nimbus-hr/nimbus-hr/testing"
)

func decodeEnvelope(t *testing.T, body []byte) ErrorEnvelope {
	t.Helper()
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestErrorEnvelopeShape(t *testing.T) {
	rc := shared.NewRequestContext()
	rc.Set(shared.KeyCorrelationID, "corr-1")
	rc.Set(shared.KeyRequestID, "req-1")

	req := httptest.NewRequest(http.MethodGet, "/employees/42", nil)
	req = req.WithContext(shared.ContextWithRequestContext(req.Context(), rc))
	res := httptest.NewRecorder()

	Error(res, req, http.StatusForbidden, "Insufficient permissions")

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	envelope := decodeEnvelope(t, res.Body.Bytes())
	assert.Equal(t, http.StatusForbidden, envelope.Error.StatusCode)
	assert.Equal(t, "Insufficient permissions", envelope.Error.Message)
	assert.Equal(t, "/employees/42", envelope.Error.Path)
	assert.Equal(t, "corr-1", envelope.Meta.CorrelationID)
	assert.Equal(t, "req-1", envelope.Meta.RequestID)

	_, err := time.Parse(time.RFC3339, envelope.Error.Timestamp)
	assert.NoError(t, err)
}

func TestErrorWithoutScope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	res := httptest.NewRecorder()

	Error(res, req, http.StatusUnauthorized, "No token provided")

	envelope := decodeEnvelope(t, res.Body.Bytes())
	assert.Equal(t, "No token provided", envelope.Error.Message)
	assert.Empty(t, envelope.Meta.CorrelationID)
}

func TestRespondErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{shared.AuthenticationError("Invalid token"), http.StatusUnauthorized, "Invalid token"},
		{shared.TenancyError("User not associated with any organization"), http.StatusUnauthorized, "User not associated with any organization"},
		{shared.AuthorizationError("Insufficient role permissions"), http.StatusForbidden, "Insufficient role permissions"},
		{shared.UpstreamError("Sign in failed", errors.New("connection refused")), http.StatusInternalServerError, "Sign in failed"},
		{ErrNotFound, http.StatusNotFound, "resource not found"},
		{ErrDuplicate, http.StatusConflict, "duplicate entry"},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		res := httptest.NewRecorder()
		RespondError(res, req, tc.err)

		envelope := decodeEnvelope(t, res.Body.Bytes())
		assert.Equal(t, tc.status, res.Code, "error %v", tc.err)
		assert.Equal(t, tc.message, envelope.Error.Message, "error %v", tc.err)
	}
}

func TestUpstreamCauseNeverRendered(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	res := httptest.NewRecorder()
	RespondError(res, req, shared.UpstreamError("Signup failed", errors.New("dial tcp 10.0.0.1:5432: i/o timeout")))

	assert.NotContains(t, res.Body.String(), "10.0.0.1")
	assert.NotContains(t, res.Body.String(), "i/o timeout")
}
