package external_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentis/credentis/pkg/actions/external"
	"github.com/credentis/credentis/pkg/models"
)

func TestFetchActionWritesDecodedResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"verified": true, "receiptId": "r-1"}`))
	}))
	defer server.Close()

	action := external.NewFetchAction(server.Client())

	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	err := action.Execute(context.Background(), ec, map[string]any{
		"url": server.URL,
		"headers": map[string]any{
			"Authorization": "Bearer token-1",
		},
		"resultKey": "verification",
	}, slog.Default())
	require.NoError(t, err)

	result, ok := ec.State["verification"].(map[string]any)
	require.True(t, ok, "expected state.verification to be written")
	assert.Equal(t, http.StatusOK, result["status_code"])

	body, ok := result["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, "r-1", body["receiptId"])
}

func TestFetchActionDefaultResultKeyAndRawBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	action := external.NewFetchAction(server.Client())

	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	require.NoError(t, action.Execute(context.Background(), ec, map[string]any{"url": server.URL}, slog.Default()))

	result := ec.State["external"].(map[string]any)
	assert.Equal(t, "plain text", result["body"])
}

func TestFetchActionPostsEncodedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "r-1", payload["receiptId"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	action := external.NewFetchAction(server.Client())

	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	err := action.Execute(context.Background(), ec, map[string]any{
		"url":    server.URL,
		"method": "post",
		"body":   map[string]any{"receiptId": "r-1"},
	}, slog.Default())
	require.NoError(t, err)
}

func TestFetchActionFailsOnErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	action := external.NewFetchAction(server.Client())

	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	err := action.Execute(context.Background(), ec, map[string]any{"url": server.URL}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), server.URL)
	assert.NotContains(t, ec.State, "external")
}

func TestFetchActionRequiresURL(t *testing.T) {
	t.Parallel()

	action := external.NewFetchAction(nil)
	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	require.Error(t, action.Execute(context.Background(), ec, map[string]any{}, slog.Default()))
}

func TestEcoCashPaymentAction(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, 25.5, payload["amount"])
		assert.Equal(t, "263771234567", payload["msisdn"])
		assert.Equal(t, "tenant-1", payload["tenantId"])
		assert.NotEmpty(t, payload["reference"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "PENDING"}`))
	}))
	defer server.Close()

	action := external.NewEcoCashPaymentAction(server.Client())

	ec := models.NewActionContext("wf-1", "tenant-1", map[string]any{
		"payer": map[string]any{"msisdn": "263771234567"},
	})
	ec.State["finance"] = map[string]any{"grandTotal": 25.5}

	err := action.Execute(context.Background(), ec, map[string]any{
		"url":        server.URL,
		"amountPath": "state.finance.grandTotal",
		"msisdnPath": "input.payer.msisdn",
	}, slog.Default())
	require.NoError(t, err)

	payment, ok := ec.State["payment"].(map[string]any)
	require.True(t, ok, "expected state.payment to be written")
	assert.Equal(t, 25.5, payment["amount"])
	assert.NotEmpty(t, payment["reference"])

	response := payment["response"].(map[string]any)
	assert.Equal(t, "PENDING", response["status"])
}

func TestEcoCashPaymentActionLiteralValues(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "PENDING"}`))
	}))
	defer server.Close()

	action := external.NewEcoCashPaymentAction(server.Client())

	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	err := action.Execute(context.Background(), ec, map[string]any{
		"url":      server.URL,
		"amount":   10.0,
		"msisdn":   "263770000000",
		"currency": "ZWL",
	}, slog.Default())
	require.NoError(t, err)

	payment := ec.State["payment"].(map[string]any)
	assert.Equal(t, "ZWL", payment["currency"])
}

func TestEcoCashPaymentActionUnresolvedPath(t *testing.T) {
	t.Parallel()

	action := external.NewEcoCashPaymentAction(nil)

	ec := models.NewActionContext("wf-1", "tenant-1", nil)

	err := action.Execute(context.Background(), ec, map[string]any{
		"url":        "http://gateway.invalid",
		"amountPath": "state.finance.grandTotal",
		"msisdn":     "263770000000",
	}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amountPath")
	assert.NotContains(t, ec.State, "payment")
}
