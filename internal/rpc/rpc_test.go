package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/caip/internal/catalog"
	"github.com/Klingon-tech/caip/internal/provider"
	"github.com/Klingon-tech/caip/internal/storage"
	"github.com/Klingon-tech/caip/pkg/caip"
	"github.com/Klingon-tech/caip/pkg/logging"
)

const foxAssetID = "eip155:1/erc20:0xc770eefad204b5180df6a14ee197d99d808ee52d"

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
	ID      interface{}     `json:"id"`
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()

	log := logging.Discard()
	cat := catalog.New(log)
	_, err := cat.FromChains()
	require.NoError(t, err)
	_, err = cat.LoadDefaultSeed()
	require.NoError(t, err)

	providers := provider.NewRegistry()
	for _, name := range provider.Names() {
		providers.Register(provider.NewCache(name, provider.StaticFetch(provider.DefaultTable(name)), provider.WithLogger(log)))
	}

	store, err := storage.New(&storage.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts.Logger = log
	s := NewServer(cat, providers, store, opts)
	if hub := s.WSHub(); hub != nil {
		go hub.Run()
		t.Cleanup(hub.Stop)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) *testResponse {
	t.Helper()

	req := map[string]interface{}{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		req["params"] = params
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out testResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func decodeResult(t *testing.T, resp *testResponse, v interface{}) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, v))
}

func TestResponseJSON(t *testing.T) {
	data, err := json.Marshal(&Response{JSONRPC: "2.0", Result: map[string]string{"status": "ok"}, ID: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)

	data, err = json.Marshal(&Response{JSONRPC: "2.0", Error: &Error{Code: InvalidParams, Message: "bad"}, ID: nil})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":null`)
	assert.NotContains(t, string(data), `"result"`)
}

func TestErrorConstants(t *testing.T) {
	assert.Equal(t, -32700, ParseError)
	assert.Equal(t, -32600, InvalidRequest)
	assert.Equal(t, -32601, MethodNotFound)
	assert.Equal(t, -32602, InvalidParams)
	assert.Equal(t, -32603, InternalError)
}

func TestProtocolErrors(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL, "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	var out testResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.NotNil(t, out.Error)
	assert.Equal(t, ParseError, out.Error.Code)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, err = http.Post(ts.URL, "application/json", strings.NewReader(`{"jsonrpc":"1.0","method":"node_status","id":7}`))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, InvalidRequest, out.Error.Code)
	assert.EqualValues(t, 7, out.ID)

	r := call(t, ts, "caip_nope", nil)
	require.NotNil(t, r.Error)
	assert.Equal(t, MethodNotFound, r.Error.Code)

	r = call(t, ts, "caip_fromChainId", nil)
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)

	r = call(t, ts, "caip_fromChainId", []string{"eip155:1"})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)
}

func TestHTTPMethodCheck(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestChainIDMethods(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var chain ChainIDResult
	decodeResult(t, call(t, ts, "caip_toChainId", ChainIDParams{ChainNamespace: "eip155", ChainReference: "1"}), &chain)
	assert.Equal(t, "eip155:1", chain.ChainID)

	decodeResult(t, call(t, ts, "caip_fromChainId", ChainIDStringParams{ChainID: "cosmos:osmosis-1"}), &chain)
	assert.Equal(t, "cosmos", chain.ChainNamespace)
	assert.Equal(t, "osmosis-1", chain.ChainReference)

	var valid ValidResult
	decodeResult(t, call(t, ts, "caip_isChainId", ChainIDStringParams{ChainID: "bip122:1"}), &valid)
	assert.False(t, valid.Valid)
}

func TestCodecFailureIsInvalidParams(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	r := call(t, ts, "caip_fromChainId", ChainIDStringParams{ChainID: "bip122:1"})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)

	data, ok := r.Error.Data.(map[string]interface{})
	require.True(t, ok, "data = %#v", r.Error.Data)
	assert.Equal(t, caip.Codespace, data["codespace"])
	assert.EqualValues(t, caip.ErrUnsupportedChainReference.ABCICode(), data["code"])
	assert.Equal(t, "unsupported chain reference", data["kind"])

	r = call(t, ts, "caip_fromAssetId", AssetIDStringParams{AssetID: "invalid"})
	require.NotNil(t, r.Error)
	data = r.Error.Data.(map[string]interface{})
	assert.Equal(t, "malformed identifier", data["kind"])
}

func TestAssetIDMethods(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var asset AssetIDResult
	decodeResult(t, call(t, ts, "caip_toAssetId", AssetIDParams{
		ChainNamespace: "eip155",
		ChainReference: "1",
		AssetNamespace: "erc20",
		AssetReference: "0xC770EEfAd204B5180dF6a14Ee197D99d808ee52d",
	}), &asset)
	assert.Equal(t, foxAssetID, asset.AssetID)

	decodeResult(t, call(t, ts, "caip_fromAssetId", AssetIDStringParams{AssetID: "eip155:1/erc20:0xC770EEfAd204B5180dF6a14Ee197D99d808ee52d"}), &asset)
	assert.Equal(t, "eip155:1", asset.ChainID)
	assert.Equal(t, "erc20", asset.AssetNamespace)
	assert.Equal(t, "0xc770eefad204b5180df6a14ee197d99d808ee52d", asset.AssetReference)

	var valid ValidResult
	decodeResult(t, call(t, ts, "caip_isAssetId", AssetIDStringParams{AssetID: "eip155:1/slip44:60"}), &valid)
	assert.True(t, valid.Valid)
}

func TestAccountIDMethods(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var account AccountIDResult
	decodeResult(t, call(t, ts, "caip_toAccountId", AccountIDParams{ChainID: "eip155:1", Account: "0xDEF1CAFE"}), &account)
	assert.Equal(t, "eip155:1:0xdef1cafe", account.AccountID)

	decodeResult(t, call(t, ts, "caip_toAccountId", AccountIDParams{ChainNamespace: "cosmos", ChainReference: "cosmoshub-4", Account: "cosmos1Abc"}), &account)
	assert.Equal(t, "cosmos:cosmoshub-4:cosmos1Abc", account.AccountID)

	decodeResult(t, call(t, ts, "caip_fromAccountId", AccountIDStringParams{AccountID: "bip122:000000000019d6689c085ae165831e93:xpubFoo"}), &account)
	assert.Equal(t, "xpubFoo", account.Account)
	assert.Equal(t, "bip122", account.ChainNamespace)

	r := call(t, ts, "caip_toAccountId", AccountIDParams{ChainID: "eip155:1"})
	require.NotNil(t, r.Error)
	assert.Equal(t, "missing field", r.Error.Data.(map[string]interface{})["kind"])
}

func TestChainsMethods(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var chains []ChainInfo
	decodeResult(t, call(t, ts, "chains_list", nil), &chains)
	assert.Len(t, chains, len(caip.ChainIDs()))

	var info ChainInfo
	decodeResult(t, call(t, ts, "chains_get", ChainsGetParams{ChainID: "eip155:56"}), &info)
	assert.Equal(t, "BSC", info.Symbol)
	assert.Equal(t, "BNB", info.NativeToken)
	assert.Equal(t, "eip155:56/slip44:60", info.NativeAssetID)

	r := call(t, ts, "chains_get", ChainsGetParams{ChainID: "eip155:999"})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)
}

func TestChainsListByFamily(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	total := 0
	for _, family := range []string{"bitcoin", "evm", "cosmos"} {
		var chains []ChainInfo
		decodeResult(t, call(t, ts, "chains_list", ChainsListParams{Family: family}), &chains)
		require.NotEmpty(t, chains, family)
		for _, c := range chains {
			assert.Equal(t, family, c.Family)
		}
		total += len(chains)
	}
	assert.Equal(t, len(caip.ChainIDs()), total)

	var cosmos []ChainInfo
	decodeResult(t, call(t, ts, "chains_list", ChainsListParams{Family: "cosmos"}), &cosmos)
	ids := make([]string, 0, len(cosmos))
	for _, c := range cosmos {
		ids = append(ids, c.ChainID)
	}
	assert.ElementsMatch(t, []string{"cosmos:cosmoshub-4", "cosmos:vega-testnet", "cosmos:osmosis-1", "cosmos:osmo-testnet-1"}, ids)

	r := call(t, ts, "chains_list", ChainsListParams{Family: "solana"})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)
}

func TestChainsGetByEVMChainID(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var info ChainInfo
	decodeResult(t, call(t, ts, "chains_get", ChainsGetParams{EVMChainID: 8453}), &info)
	assert.Equal(t, "eip155:8453", info.ChainID)
	assert.Equal(t, "BASE", info.Symbol)

	decodeResult(t, call(t, ts, "chains_get", ChainsGetParams{EVMChainID: 11155111}), &info)
	assert.Equal(t, "eip155:11155111", info.ChainID)
	assert.Equal(t, "testnet", info.Network)

	r := call(t, ts, "chains_get", ChainsGetParams{EVMChainID: 999999})
	require.NotNil(t, r.Error)
	assert.Equal(t, NotFound, r.Error.Code)

	r = call(t, ts, "chains_get", ChainsGetParams{ChainID: "eip155:1", EVMChainID: 1})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)

	r = call(t, ts, "chains_get", ChainsGetParams{})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)
}

func TestAssetsMethods(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var asset catalog.Asset
	decodeResult(t, call(t, ts, "assets_get", AssetIDStringParams{AssetID: foxAssetID}), &asset)
	assert.Equal(t, "FOX", asset.Symbol)
	assert.Equal(t, foxAssetID, asset.AssetID.String())

	// valid but unknown
	r := call(t, ts, "assets_get", AssetIDStringParams{AssetID: "cosmos:osmosis-1/native:unknown"})
	require.NotNil(t, r.Error)
	assert.Equal(t, NotFound, r.Error.Code)

	var assets []catalog.Asset
	decodeResult(t, call(t, ts, "assets_list", AssetsListParams{ChainID: "cosmos:osmosis-1"}), &assets)
	require.NotEmpty(t, assets)
	for _, a := range assets {
		assert.Equal(t, "cosmos:osmosis-1", a.AssetID.ChainID().String())
	}

	decodeResult(t, call(t, ts, "assets_list", AssetsListParams{ChainID: "cosmos:vega-testnet"}), &assets)
	assert.Len(t, assets, 2) // slip44:118 + native:uatom

	decodeResult(t, call(t, ts, "assets_list", nil), &assets)
	assert.Greater(t, len(assets), len(caip.ChainIDs()))
}

func TestProviderMethods(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var res ProviderIDResult
	decodeResult(t, call(t, ts, "provider_toAssetId", ProviderIDParams{Provider: "thorchain", ProviderID: "GAIA.ATOM"}), &res)
	assert.Equal(t, "cosmos:cosmoshub-4/slip44:118", res.AssetID)

	decodeResult(t, call(t, ts, "provider_fromAssetId", ProviderAssetParams{Provider: "coingecko", AssetID: "eip155:1/erc20:0xC770EEfAd204B5180dF6a14Ee197D99d808ee52d"}), &res)
	assert.Equal(t, "shapeshift-fox-token", res.ProviderID)

	r := call(t, ts, "provider_toAssetId", ProviderIDParams{Provider: "messari", ProviderID: "eth"})
	require.NotNil(t, r.Error)
	assert.Equal(t, NotFound, r.Error.Code)

	r = call(t, ts, "provider_toAssetId", ProviderIDParams{ProviderID: "eth"})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)

	r = call(t, ts, "provider_fromAssetId", ProviderAssetParams{Provider: "coingecko", AssetID: "eip155:1/erc20:0xfoo"})
	require.NotNil(t, r.Error)
	assert.Equal(t, InvalidParams, r.Error.Code)

	var stats provider.Stats
	decodeResult(t, call(t, ts, "provider_refresh", ProviderParams{Provider: "osmosis"}), &stats)
	assert.Equal(t, provider.Osmosis, stats.Provider)
	assert.Equal(t, len(provider.DefaultTable(provider.Osmosis)), stats.Entries)

	var list []provider.Stats
	decodeResult(t, call(t, ts, "provider_list", nil), &list)
	assert.Len(t, list, len(provider.Names()))
}

func TestNodeStatus(t *testing.T) {
	s, ts := newTestServer(t, Options{EnableWebSocket: true})

	var status NodeStatusResult
	decodeResult(t, call(t, ts, "node_status", nil), &status)
	assert.True(t, status.Running)
	assert.Equal(t, Version, status.Version)
	assert.Equal(t, 18, status.Chains)
	assert.Equal(t, s.catalog.Len(), status.Assets)
	assert.Zero(t, status.StoredAssets)
	assert.Len(t, status.Providers, len(provider.Names()))
}

func TestRequestIDHeader(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(`{"jsonrpc":"2.0","method":"node_status","id":1}`))
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))

	resp, err = http.Post(ts.URL, "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"node_status","id":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36) // uuid
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, Options{AllowedOrigins: []string{"https://app.example"}})

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, ts.URL, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := preflight("https://app.example")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = preflight("https://evil.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, Options{EnableMetrics: true})

	call(t, ts, "caip_fromChainId", ChainIDStringParams{ChainID: "eip155:1"})
	call(t, ts, "caip_fromChainId", ChainIDStringParams{ChainID: "eip155:999"})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `caip_rpc_requests_total{method="caip_fromChainId",status="ok"} 1`)
	assert.Contains(t, text, `caip_rpc_requests_total{method="caip_fromChainId",status="error"} 1`)
	assert.Contains(t, text, `caip_codec_failures_total{kind="unsupported chain reference"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func TestWebSocketRPC(t *testing.T) {
	s, ts := newTestServer(t, Options{EnableWebSocket: true})
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "caip_fromAssetId",
		"params":  AssetIDStringParams{AssetID: "cosmos:cosmoshub-4/slip44:118"},
		"id":      "a",
	}))

	var resp testResponse
	require.NoError(t, json.Unmarshal(readWS(t, conn), &resp))
	assert.Equal(t, "a", resp.ID)
	var asset AssetIDResult
	decodeResult(t, &resp, &asset)
	assert.Equal(t, "cosmos:cosmoshub-4", asset.ChainID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	require.NoError(t, json.Unmarshal(readWS(t, conn), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ParseError, resp.Error.Code)

	assert.Eventually(t, func() bool { return s.WSHub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketProviderEvent(t *testing.T) {
	s, ts := newTestServer(t, Options{EnableWebSocket: true})
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(WSSubscription{Action: "subscribe", Events: []string{string(EventProviderRefreshed)}}))
	require.Eventually(t, func() bool { return s.WSHub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Refresh over HTTP; the event arrives over the socket.
	var stats provider.Stats
	decodeResult(t, call(t, ts, "provider_refresh", ProviderParams{Provider: "coincap"}), &stats)

	var event struct {
		Type EventType      `json:"type"`
		Data provider.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(readWS(t, conn), &event))
	assert.Equal(t, EventProviderRefreshed, event.Type)
	assert.Equal(t, provider.CoinCap, event.Data.Provider)
}

func TestWebSocketDisabled(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	assert.Nil(t, s.WSHub())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	cat := catalog.New(logging.Discard())
	s := NewServer(cat, provider.NewRegistry(), nil, Options{EnableWebSocket: true, Logger: logging.Discard()})

	require.NoError(t, s.Start("127.0.0.1:0"))
	require.NotNil(t, s.Addr())

	resp, err := http.Post("http://"+s.Addr().String(), "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"node_status","id":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
}
