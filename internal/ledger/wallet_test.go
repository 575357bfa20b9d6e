package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletBridgeSignAndExecute(t *testing.T) {
	var got signRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sign-and-execute", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(signResponse{Digest: "D9"})
	}))
	defer srv.Close()

	bridge := NewWalletBridge(srv.URL+"/", "0xuser", "testnet", srv.Client())
	tx := NewTransaction()
	tx.MoveCall("0xabc::certificate::complete_module", Object("0xp"), PureU8(2))

	digest, err := bridge.SignAndExecute(context.Background(), tx)

	require.NoError(t, err)
	assert.Equal(t, "D9", digest)
	assert.Equal(t, "0xuser", got.Sender)
	assert.Equal(t, "testnet", got.Network)
	require.Len(t, got.Transaction.Calls, 1)
	assert.Equal(t, "0xabc::certificate::complete_module", got.Transaction.Calls[0].Target)
}

func TestWalletBridgeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(signResponse{Error: "User rejected the request"})
	}))
	defer srv.Close()

	bridge := NewWalletBridge(srv.URL, "0xuser", "testnet", srv.Client())
	_, err := bridge.SignAndExecute(context.Background(), NewTransaction())

	require.Error(t, err)
	assert.Equal(t, "User rejected the request", err.Error())
}

func TestWalletBridgeMissingDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	bridge := NewWalletBridge(srv.URL, "0xuser", "testnet", srv.Client())
	_, err := bridge.SignAndExecute(context.Background(), NewTransaction())

	assert.Error(t, err)
}
