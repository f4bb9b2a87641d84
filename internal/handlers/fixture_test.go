package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"uk.co.dudmesh.checkup/internal/handlers"
	"uk.co.dudmesh.checkup/internal/keylock"
	"uk.co.dudmesh.checkup/internal/model"
	"uk.co.dudmesh.checkup/internal/service/credential"
	"uk.co.dudmesh.checkup/internal/service/token"
	"uk.co.dudmesh.checkup/internal/store"
)

const testMaxChecks = 3

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

type fixture struct {
	t       *testing.T
	dataDir string
	db      handlers.Database
	clock   *testClock
	router  *handlers.Router
}

func newFixture(t *testing.T) *fixture {
	dataDir := t.TempDir()
	db, err := store.NewFileStore(dataDir)
	require.NoError(t, err)
	return newFixtureWith(t, dataDir, db)
}

func newFixtureWith(t *testing.T, dataDir string, db handlers.Database) *fixture {
	clock := &testClock{time.UnixMilli(1_700_000_000_000)}
	tokens := token.New(db).WithClock(clock.now)
	codec := credential.NewHMAC("test-secret")
	locks := keylock.New()

	router := handlers.NewRouter(
		handlers.NewUsers(db, tokens, codec, locks),
		handlers.NewTokens(db, tokens, codec),
		handlers.NewChecks(db, tokens, locks, testMaxChecks),
	)
	return &fixture{t: t, dataDir: dataDir, db: db, clock: clock, router: router}
}

type call struct {
	method  string
	path    string
	query   url.Values
	token   string
	payload string
}

func (f *fixture) do(c call) handlers.Response {
	f.t.Helper()
	payload := map[string]interface{}{}
	if c.payload != "" {
		require.NoError(f.t, json.Unmarshal([]byte(c.payload), &payload))
	}
	headers := http.Header{}
	if c.token != "" {
		headers.Set(handlers.TokenHeader, c.token)
	}
	return f.router.Route(&handlers.Request{
		Method:  c.method,
		Path:    c.path,
		Query:   c.query,
		Headers: headers,
		Payload: payload,
	})
}

// decode round-trips a response payload through JSON, the way the transport sends it.
func decode(t *testing.T, resp handlers.Response, out interface{}) {
	t.Helper()
	data, err := json.Marshal(resp.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func messageOf(t *testing.T, resp handlers.Response) string {
	t.Helper()
	var m handlers.Message
	decode(t, resp, &m)
	return m.Message
}

func (f *fixture) signup(email, password string) {
	f.t.Helper()
	resp := f.do(call{method: "post", path: "users", payload: `{
		"firstName": "Ada",
		"lastName": "Lovelace",
		"email": "` + email + `",
		"password": "` + password + `",
		"tosAgreement": true
	}`})
	require.Equal(f.t, http.StatusOK, resp.Status, messageOf(f.t, resp))
}

func (f *fixture) login(email, password string) *model.Token {
	f.t.Helper()
	resp := f.do(call{method: "post", path: "tokens", payload: `{"email":"` + email + `","password":"` + password + `"}`})
	require.Equal(f.t, http.StatusOK, resp.Status, messageOf(f.t, resp))
	tok := &model.Token{}
	decode(f.t, resp, tok)
	return tok
}

func (f *fixture) createCheck(tokenID string) handlers.Response {
	f.t.Helper()
	return f.do(call{method: "post", path: "checks", token: tokenID, payload: `{
		"protocol": "https",
		"url": "example.com",
		"method": "get",
		"successCodes": [200, 201],
		"timeoutSeconds": 3
	}`})
}

func (f *fixture) user(email string) *model.User {
	f.t.Helper()
	user := &model.User{}
	require.NoError(f.t, f.db.Read(store.Users, email, user))
	return user
}

func (f *fixture) files(collection store.Collection) []string {
	f.t.Helper()
	entries, err := os.ReadDir(path.Join(f.dataDir, string(collection)))
	require.NoError(f.t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func query(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return q
}
