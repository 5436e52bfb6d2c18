package handlers_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFlow(t *testing.T) {
	h := newHandler()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	code, body := do(t, h, http.MethodPost, "/api/session/challenge", map[string]string{"address": address}, "")
	require.Equal(t, http.StatusOK, code)
	challenge := body.(map[string]interface{})
	message := challenge["message"].(string)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	code, body = do(t, h, http.MethodPost, "/api/session", map[string]string{
		"address":   address,
		"challenge": challenge["challenge"].(string),
		"signature": hexutil.Encode(sig),
	}, "")
	require.Equal(t, http.StatusOK, code)
	session := body.(map[string]interface{})
	assert.Equal(t, address, session["address"])

	claims, err := utils.ValidateJWT(testSecret, session["token"].(string))
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(address, claims.Address))

	code, _ = do(t, h, http.MethodGet, "/api/me/orders", nil, session["token"].(string))
	assert.Equal(t, http.StatusOK, code)
}

func TestCreateSession_BadSignature(t *testing.T) {
	h := newHandler()
	code, body := do(t, h, http.MethodPost, "/api/session/challenge", map[string]string{"address": sellerAddr}, "")
	require.Equal(t, http.StatusOK, code)
	challenge := body.(map[string]interface{})["challenge"].(string)

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte("something else")), other)
	require.NoError(t, err)

	code, body = do(t, h, http.MethodPost, "/api/session", map[string]string{
		"address":   sellerAddr,
		"challenge": challenge,
		"signature": hexutil.Encode(sig),
	}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid signature", body.(map[string]interface{})["error"])
}

func TestCreateChallenge_Validation(t *testing.T) {
	h := newHandler()

	code, body := do(t, h, http.MethodPost, "/api/session/challenge", map[string]string{"address": "0x123"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid address format", body.(map[string]interface{})["error"])

	code, body = do(t, h, http.MethodPost, "/api/session/challenge", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Address is required", body.(map[string]interface{})["error"])
}

func TestMeRoutes_RequireSession(t *testing.T) {
	h := newHandler()
	for _, target := range []string{"/api/me/orders", "/api/me/products", "/api/me/settings"} {
		code, _ := do(t, h, http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusUnauthorized, code, target)
	}
}

func TestChainInfo(t *testing.T) {
	h := newHandler()

	code, body := do(t, h, http.MethodGet, "/api/chain", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(11155111), body.(map[string]interface{})["chainId"])

	h.Chain = fakeChain{id: 1}
	code, body = do(t, h, http.MethodGet, "/api/chain", nil, "")
	assert.Equal(t, http.StatusOK, code)
	info := body.(map[string]interface{})
	assert.Equal(t, float64(1), info["networkChainId"])
	assert.Equal(t, false, info["match"])

	h.Chain = fakeChain{id: 11155111}
	_, body = do(t, h, http.MethodGet, "/api/chain", nil, "")
	assert.Equal(t, true, body.(map[string]interface{})["match"])

	h.Chain = fakeChain{err: errors.New("dial tcp: refused")}
	code, _ = do(t, h, http.MethodGet, "/api/chain", nil, "")
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestListenerHealth(t *testing.T) {
	h := newHandler()

	code, _ := do(t, h, http.MethodGet, "/api/listener/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	h.Listener = fakeListener{health: utils.HealthStatus{IsHealthy: true, IsListening: true, ProcessedEvents: 4}}
	code, body := do(t, h, http.MethodGet, "/api/listener/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(4), body.(map[string]interface{})["processedEvents"])

	h.Listener = fakeListener{health: utils.HealthStatus{LastError: "subscription dropped"}}
	code, body = do(t, h, http.MethodGet, "/api/listener/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "subscription dropped", body.(map[string]interface{})["lastError"])
}

func TestHealth(t *testing.T) {
	code, body := do(t, newHandler(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.(map[string]interface{})["status"])
}
