package credentials

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moolen/culprit/internal/logging"
)

const (
	stsAPIVersion     = "2015-04-01"
	stsActionAssume   = "AssumeRole"
	defaultTimeout    = 10 * time.Second
	iso8601           = "2006-01-02T15:04:05Z"
	signatureMethod   = "HMAC-SHA1"
	signatureVersion  = "1.0"
	minDurationSecond = 900
)

// STSConfig configures the assume-role provider.
type STSConfig struct {
	// Endpoint is the STS API endpoint, e.g. "https://sts.cn-qingdao.aliyuncs.com".
	Endpoint string
	// RoleARN is the role to assume.
	RoleARN string
	// SessionName labels the assumed-role session.
	SessionName string
	// DurationSeconds is the requested credential lifetime (900..3600).
	DurationSeconds int
	// AccessKeyID and AccessKeySecret are the long-lived account keys used
	// to sign the AssumeRole request itself.
	AccessKeyID     string
	AccessKeySecret string
}

// Validate checks the STS configuration.
func (c STSConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("sts endpoint must not be empty")
	}
	if c.RoleARN == "" {
		return fmt.Errorf("sts role ARN must not be empty")
	}
	if c.AccessKeyID == "" || c.AccessKeySecret == "" {
		return fmt.Errorf("sts access key id/secret must not be empty")
	}
	if c.DurationSeconds < minDurationSecond {
		return fmt.Errorf("sts duration must be at least %d seconds", minDurationSecond)
	}
	return nil
}

// STSProvider obtains temporary credentials via an STS assume-role call and
// caches them until they approach expiry. Safe for concurrent use.
type STSProvider struct {
	cfg        STSConfig
	httpClient *http.Client
	logger     *logging.Logger

	mu     sync.Mutex
	cached Credentials
}

// NewSTSProvider creates an assume-role credential provider.
func NewSTSProvider(cfg STSConfig) (*STSProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &CredentialError{Op: "configuration", Err: err}
	}
	return &STSProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.GetLogger("credentials.sts"),
	}, nil
}

// GetValidCredentials returns cached credentials when still valid, otherwise
// performs a fresh assume-role call.
func (p *STSProvider) GetValidCredentials(ctx context.Context) (Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached.Valid() {
		return p.cached, nil
	}

	creds, err := p.assumeRole(ctx)
	if err != nil {
		return Credentials{}, err
	}

	p.cached = creds
	p.logger.InfoWithFields("assumed role",
		logging.Field("role_arn", p.cfg.RoleARN),
		logging.Field("expiration", creds.Expiration.Format(time.RFC3339)),
	)
	return creds, nil
}

// ClearCache drops any cached credentials, forcing a refresh on next use.
func (p *STSProvider) ClearCache() {
	p.mu.Lock()
	p.cached = Credentials{}
	p.mu.Unlock()
}

type assumeRoleResponse struct {
	RequestID   string `json:"RequestId"`
	Credentials struct {
		AccessKeyID     string `json:"AccessKeyId"`
		AccessKeySecret string `json:"AccessKeySecret"`
		SecurityToken   string `json:"SecurityToken"`
		Expiration      string `json:"Expiration"`
	} `json:"Credentials"`
}

type stsErrorResponse struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (p *STSProvider) assumeRole(ctx context.Context) (Credentials, error) {
	params := map[string]string{
		"Action":           stsActionAssume,
		"Version":          stsAPIVersion,
		"Format":           "JSON",
		"RoleArn":          p.cfg.RoleARN,
		"RoleSessionName":  p.cfg.SessionName,
		"DurationSeconds":  strconv.Itoa(p.cfg.DurationSeconds),
		"AccessKeyId":      p.cfg.AccessKeyID,
		"SignatureMethod":  signatureMethod,
		"SignatureVersion": signatureVersion,
		"SignatureNonce":   uuid.NewString(),
		"Timestamp":        time.Now().UTC().Format(iso8601),
	}
	params["Signature"] = signRPCRequest(http.MethodGet, params, p.cfg.AccessKeySecret)

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	reqURL := fmt.Sprintf("%s/?%s", strings.TrimSuffix(p.cfg.Endpoint, "/"), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Credentials{}, &CredentialError{Op: "assume-role request", Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Credentials{}, &CredentialError{Op: "assume-role call", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credentials{}, &CredentialError{Op: "assume-role response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var stsErr stsErrorResponse
		if json.Unmarshal(body, &stsErr) == nil && stsErr.Code != "" {
			return Credentials{}, &CredentialError{
				Op:  "assume-role",
				Err: fmt.Errorf("%s: %s (status %d)", stsErr.Code, stsErr.Message, resp.StatusCode),
			}
		}
		return Credentials{}, &CredentialError{
			Op:  "assume-role",
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed assumeRoleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Credentials{}, &CredentialError{Op: "assume-role decode", Err: err}
	}

	expiration, err := time.Parse(iso8601, parsed.Credentials.Expiration)
	if err != nil {
		return Credentials{}, &CredentialError{
			Op:  "assume-role decode",
			Err: fmt.Errorf("bad expiration %q: %w", parsed.Credentials.Expiration, err),
		}
	}

	creds := Credentials{
		AccessKeyID:     parsed.Credentials.AccessKeyID,
		AccessKeySecret: parsed.Credentials.AccessKeySecret,
		SecurityToken:   parsed.Credentials.SecurityToken,
		Expiration:      expiration,
	}
	if !creds.Valid() {
		return Credentials{}, &CredentialError{
			Op:  "assume-role",
			Err: fmt.Errorf("received incomplete or already-expired credentials (request %s)", parsed.RequestID),
		}
	}
	return creds, nil
}

// signRPCRequest computes the RPC-style HMAC-SHA1 request signature over the
// canonicalized query string.
func signRPCRequest(method string, params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params[k]))
	}
	canonicalized := strings.Join(pairs, "&")

	stringToSign := method + "&" + percentEncode("/") + "&" + percentEncode(canonicalized)

	mac := hmac.New(sha1.New, []byte(secret+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode applies the stricter RFC 3986 escaping the signature
// algorithm requires on top of Go's query escaping.
func percentEncode(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "*", "%2A")
	escaped = strings.ReplaceAll(escaped, "%7E", "~")
	return escaped
}
