package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"proof-of-learning-go/internal/catalog"
	"proof-of-learning-go/internal/ledger"
	"proof-of-learning-go/internal/model"
	"proof-of-learning-go/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x2222222222222222222222222222222222222222222222222222222222222222"

type instantClock struct{}

func (instantClock) Now() time.Time { return time.Now() }

func (instantClock) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func (instantClock) AfterFunc(time.Duration, func()) {}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendCertificateEmail(to string, _ model.Certificate, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

type testAPI struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T, cfg session.Config, mailer Mailer) *testAPI {
	cfg.JWTKey = "test-key"
	cfg.Clock = instantClock{}

	srv := NewServer(0, catalog.NewStatic(), session.NewManager(cfg), ServerOptions{
		Mailer:     mailer,
		Explorer:   ledger.Config{Network: "testnet", ExplorerURL: "https://explorer.rebased.iota.org"}.Explorer(),
		Blockchain: cfg.Blockchain,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testAPI{t: t, server: ts}
}

func (a *testAPI) do(method, path string, body any) *http.Response {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(a.t, err)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) login(email string) {
	a.t.Helper()
	resp := a.do("POST", "/sessions", CreateSessionRequest{Email: email})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)

	var created CreateSessionResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&created))
	a.token = created.Token
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetCourses(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)

	resp := api.do("GET", "/courses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	courses := decode[[]model.Course](t, resp)
	assert.Len(t, courses, 6)
}

func TestGetCourseByID(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)

	resp := api.do("GET", "/courses/iota-basics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	course := decode[CourseResponse](t, resp)
	assert.Equal(t, "IOTA Fundamentals", course.Title)
	assert.Len(t, course.ModuleOutline, 4)

	resp = api.do("GET", "/courses/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthenticationRequired(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)

	resp := api.do("GET", "/progress", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	api.token = "garbage"
	resp = api.do("GET", "/progress", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLearningFlow(t *testing.T) {
	mailer := &fakeMailer{}
	api := newTestAPI(t, session.Config{}, mailer)
	api.login("student@example.com")

	resp := api.do("POST", "/courses/iota-basics/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for i := 0; i < 4; i++ {
		resp = api.do("POST", fmt.Sprintf("/courses/iota-basics/modules/%d/complete", i), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	progress := decode[ProgressResponse](t, resp)
	assert.Equal(t, 100, progress.Percent)
	assert.NotNil(t, progress.CompletedAt)

	resp = api.do("POST", "/courses/iota-basics/certificate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cert := decode[CertificateResponse](t, resp)
	assert.Equal(t, "iota-basics", cert.CourseID)
	assert.Equal(t, "IOTA Fundamentals", cert.CourseName)
	assert.Contains(t, cert.Explorer.Transaction, "/txblock/"+cert.TransactionDigest)

	resp = api.do("POST", "/courses/iota-basics/certificate", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = api.do("GET", "/certificates", nil)
	certs := decode[[]CertificateResponse](t, resp)
	assert.Len(t, certs, 1)

	assert.Equal(t, []string{"student@example.com"}, mailer.sent)
}

func TestCompleteModuleBeforeStart(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)
	api.login("")

	resp := api.do("POST", "/courses/iota-basics/modules/2/complete", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = api.do("GET", "/progress/iota-basics", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, decodeList(t, api.do("GET", "/progress", nil)))
}

func decodeList(t *testing.T, resp *http.Response) []ProgressResponse {
	return decode[[]ProgressResponse](t, resp)
}

func TestInvalidModuleIndex(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)
	api.login("")
	api.do("POST", "/courses/iota-basics/start", nil)

	resp := api.do("POST", "/courses/iota-basics/modules/7/complete", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMintBeforeCompletion(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)
	api.login("")
	api.do("POST", "/courses/iota-basics/start", nil)

	resp := api.do("POST", "/courses/iota-basics/certificate", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWalletWithoutLedger(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)
	api.login("")

	resp := api.do("POST", "/wallet", ConnectWalletRequest{Address: testAddress})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp = api.do("GET", "/chain/certificates", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	api := newTestAPI(t, session.Config{}, nil)
	api.login("")

	resp := api.do("DELETE", "/sessions", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.do("GET", "/status", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// chainFixture runs a fake IOTA node and wallet bridge.
type chainFixture struct {
	node   *httptest.Server
	bridge *httptest.Server
	reject atomic.Bool
	digest atomic.Int64
}

func newChainFixture(t *testing.T) *chainFixture {
	f := &chainFixture{}

	f.node = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64  `json:"id"`
			Method string `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		var result any
		switch req.Method {
		case "iota_getTransactionBlock":
			result = map[string]any{
				"digest":  "D",
				"effects": map[string]any{"status": map[string]any{"status": "success"}},
				"objectChanges": []map[string]any{
					{"type": "created", "objectType": "0xabc::certificate::LearningProgress", "objectId": "0xprogress"},
					{"type": "created", "objectType": "0xabc::certificate::CourseCertificate", "objectId": "0xcert"},
				},
			}
		case "iotax_getOwnedObjects":
			result = map[string]any{
				"data": []map[string]any{
					{"data": map[string]any{
						"objectId": "0xcert",
						"content": map[string]any{
							"dataType": "moveObject",
							"fields":   map[string]any{"course_id": "iota-basics", "issued_at": "1733826480"},
						},
					}},
				},
				"hasNextPage": false,
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	t.Cleanup(f.node.Close)

	f.bridge = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.reject.Load() {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "User rejected the request"})
			return
		}
		n := f.digest.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"digest": fmt.Sprintf("D%d", n)})
	}))
	t.Cleanup(f.bridge.Close)

	return f
}

func (f *chainFixture) sessionConfig() session.Config {
	ledgerCfg := ledger.Config{Network: "testnet", PackageID: "0xabc", ModuleName: "certificate"}
	client := ledger.NewRPCClient(f.node.URL, f.node.Client(), time.Millisecond)
	return session.Config{
		Blockchain:    true,
		BadgeImageURL: "/nft-badge.png",
		NewLedger: func() *ledger.Adapter {
			return ledger.NewAdapter(client, ledgerCfg)
		},
		NewWallet: func(address string) ledger.Wallet {
			return ledger.NewWalletBridge(f.bridge.URL, address, "testnet", f.bridge.Client())
		},
	}
}

func TestOnChainLearningFlow(t *testing.T) {
	chain := newChainFixture(t)
	api := newTestAPI(t, chain.sessionConfig(), nil)
	api.login("")

	resp := api.do("POST", "/wallet", ConnectWalletRequest{Address: testAddress})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do("POST", "/courses/iota-basics/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	progress := decode[ProgressResponse](t, resp)
	assert.Equal(t, "0xprogress", progress.ProgressObjectID)

	for i := 0; i < 4; i++ {
		resp = api.do("POST", fmt.Sprintf("/courses/iota-basics/modules/%d/complete", i), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp = api.do("POST", "/courses/iota-basics/certificate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cert := decode[CertificateResponse](t, resp)
	assert.Equal(t, "0xcert", cert.ObjectID)
	assert.Equal(t, testAddress, cert.OwnerAddress)
	assert.Equal(t, "https://explorer.rebased.iota.org/object/0xcert?network=testnet", cert.Explorer.Object)

	resp = api.do("GET", "/chain/certificates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	onChain := decode[[]model.OnChainCertificate](t, resp)
	require.Len(t, onChain, 1)
	assert.Equal(t, "", onChain[0].CourseName)
	assert.Equal(t, int64(1733826480), onChain[0].IssuedAt)
}

func TestOnChainModuleRejected(t *testing.T) {
	chain := newChainFixture(t)
	api := newTestAPI(t, chain.sessionConfig(), nil)
	api.login("")
	api.do("POST", "/wallet", ConnectWalletRequest{Address: testAddress})
	api.do("POST", "/courses/iota-basics/start", nil)

	chain.reject.Store(true)
	resp := api.do("POST", "/courses/iota-basics/modules/0/complete", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	progress := decode[ProgressResponse](t, api.do("GET", "/progress/iota-basics", nil))
	assert.False(t, progress.ModulesCompleted[0])

	status := decode[StatusResponse](t, api.do("GET", "/status", nil))
	assert.False(t, status.Loading)
	assert.Equal(t, "User rejected the request", status.Error)
	assert.Equal(t, testAddress, status.WalletAddress)
}
