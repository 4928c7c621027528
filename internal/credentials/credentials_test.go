package credentials

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Valid(t *testing.T) {
	cases := []struct {
		name  string
		creds Credentials
		want  bool
	}{
		{
			name:  "complete without expiration",
			creds: Credentials{AccessKeyID: "ak", AccessKeySecret: "sk"},
			want:  true,
		},
		{
			name: "complete with far expiration",
			creds: Credentials{
				AccessKeyID: "ak", AccessKeySecret: "sk",
				Expiration: time.Now().Add(time.Hour),
			},
			want: true,
		},
		{
			name: "inside expiry margin",
			creds: Credentials{
				AccessKeyID: "ak", AccessKeySecret: "sk",
				Expiration: time.Now().Add(time.Minute),
			},
			want: false,
		},
		{
			name:  "missing key id",
			creds: Credentials{AccessKeySecret: "sk"},
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.creds.Valid())
		})
	}
}

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{Creds: Credentials{AccessKeyID: "ak", AccessKeySecret: "sk"}}

	creds, err := p.GetValidCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ak", creds.AccessKeyID)

	empty := &StaticProvider{}
	_, err = empty.GetValidCredentials(context.Background())
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func newSTSTestServer(t *testing.T, calls *atomic.Int64, expiration time.Time) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		q := r.URL.Query()
		assert.Equal(t, "AssumeRole", q.Get("Action"))
		assert.Equal(t, "acs:ram::1234:role/analyst", q.Get("RoleArn"))
		assert.NotEmpty(t, q.Get("Signature"))
		assert.NotEmpty(t, q.Get("SignatureNonce"))

		resp := map[string]interface{}{
			"RequestId": "req-1",
			"Credentials": map[string]string{
				"AccessKeyId":     "sts-ak",
				"AccessKeySecret": "sts-sk",
				"SecurityToken":   "sts-token",
				"Expiration":      expiration.UTC().Format(iso8601),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testSTSConfig(endpoint string) STSConfig {
	return STSConfig{
		Endpoint:        endpoint,
		RoleARN:         "acs:ram::1234:role/analyst",
		SessionName:     "culprit-analysis",
		DurationSeconds: 3600,
		AccessKeyID:     "root-ak",
		AccessKeySecret: "root-sk",
	}
}

func TestSTSProvider_AssumeRoleAndCache(t *testing.T) {
	var calls atomic.Int64
	server := newSTSTestServer(t, &calls, time.Now().Add(time.Hour))
	defer server.Close()

	p, err := NewSTSProvider(testSTSConfig(server.URL))
	require.NoError(t, err)

	creds, err := p.GetValidCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sts-ak", creds.AccessKeyID)
	assert.Equal(t, "sts-token", creds.SecurityToken)

	// Second call must hit the cache, not the server.
	_, err = p.GetValidCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	p.ClearCache()
	_, err = p.GetValidCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestSTSProvider_RejectsExpiredCredentials(t *testing.T) {
	var calls atomic.Int64
	server := newSTSTestServer(t, &calls, time.Now().Add(time.Minute))
	defer server.Close()

	p, err := NewSTSProvider(testSTSConfig(server.URL))
	require.NoError(t, err)

	_, err = p.GetValidCredentials(context.Background())
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestSTSProvider_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"Code":    "NoPermission",
			"Message": "role trust policy does not allow this account",
		})
	}))
	defer server.Close()

	p, err := NewSTSProvider(testSTSConfig(server.URL))
	require.NoError(t, err)

	_, err = p.GetValidCredentials(context.Background())
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, err.Error(), "NoPermission")
}

func TestNewSTSProvider_InvalidConfig(t *testing.T) {
	cfg := testSTSConfig("")
	_, err := NewSTSProvider(cfg)
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestSignRPCRequest_Deterministic(t *testing.T) {
	params := map[string]string{
		"Action":  "AssumeRole",
		"Version": "2015-04-01",
	}
	sig1 := signRPCRequest(http.MethodGet, params, "secret")
	sig2 := signRPCRequest(http.MethodGet, params, "secret")
	assert.Equal(t, sig1, sig2)
	assert.NotEqual(t, sig1, signRPCRequest(http.MethodGet, params, "other"))
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "%2A", percentEncode("*"))
	assert.Equal(t, "~", percentEncode("~"))
	assert.Equal(t, "acs%3Aram%3A%3A1234%3Arole%2Fanalyst", percentEncode("acs:ram::1234:role/analyst"))
}
