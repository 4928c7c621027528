package sls

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moolen/culprit/internal/credentials"
	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/models"
)

const (
	logAPIVersion      = "0.6.0"
	logSignatureMethod = "hmac-sha1"
)

// ClientConfig configures the HTTP query client.
type ClientConfig struct {
	// Endpoint is the base URL of the log store project,
	// e.g. "https://proj-tracing.cn-qingdao.log.aliyuncs.com".
	Endpoint string
	// Scope identifies project/logstore/region for query routing.
	Scope Scope
	// QueryTimeout bounds a single query round trip.
	QueryTimeout time.Duration
}

// HTTPClient queries the SLS GetLogs API with signed requests. It holds a
// tuned connection pool and is safe for concurrent use. Credentials are
// resolved per request through the injected provider, never cached here.
type HTTPClient struct {
	cfg        ClientConfig
	creds      credentials.Provider
	httpClient *http.Client
	metrics    *Metrics
	logger     *logging.Logger
}

// NewHTTPClient creates a query client with pooled connections.
func NewHTTPClient(cfg ClientConfig, creds credentials.Provider, reg prometheus.Registerer) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	timeout := cfg.QueryTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		cfg:   cfg,
		creds: creds,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		metrics: NewMetrics(reg, cfg.Scope.Logstore),
		logger:  logging.GetLogger("sls.client"),
	}
}

type errorResponse struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Query executes one GetLogs call scoped to params.Window. Results are
// returned in backend order; no re-sorting, no retries.
func (c *HTTPClient) Query(ctx context.Context, params QueryParams) ([]models.LogRecord, error) {
	creds, err := c.creds.GetValidCredentials(ctx)
	if err != nil {
		return nil, err
	}

	from, to := params.Window.UnixRange()
	query := url.Values{}
	query.Set("type", "log")
	query.Set("query", params.Query)
	query.Set("from", strconv.FormatInt(from, 10))
	query.Set("to", strconv.FormatInt(to, 10))
	if params.Limit > 0 {
		query.Set("line", strconv.Itoa(params.Limit))
	}

	resource := fmt.Sprintf("/logstores/%s", c.cfg.Scope.Logstore)
	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimSuffix(c.cfg.Endpoint, "/"), resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("create query request: %w", err)}
	}
	c.signRequest(req, resource, query, creds)

	c.metrics.QueriesTotal.Inc()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.QueryErrorsTotal.Inc()
		// Network-level failures are worth retrying upstream.
		return nil, &QueryError{Transient: true, Err: fmt.Errorf("execute query: %w", err)}
	}
	defer resp.Body.Close()

	// Always drain the body for connection reuse.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.QueryErrorsTotal.Inc()
		return nil, &QueryError{Transient: true, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.QueryErrorsTotal.Inc()
		return nil, c.classifyHTTPError(resp.StatusCode, body)
	}

	var records []models.LogRecord
	if err := json.Unmarshal(body, &records); err != nil {
		c.metrics.QueryErrorsTotal.Inc()
		return nil, &QueryError{Err: fmt.Errorf("parse query response: %w", err)}
	}

	c.logger.DebugWithFields("query complete",
		logging.Field("records", len(records)),
		logging.Field("duration_ms", time.Since(start).Milliseconds()),
		logging.Field("window", params.Window.String()),
	)
	return records, nil
}

// classifyHTTPError maps an HTTP failure to a transient or permanent
// QueryError. Server-side errors and throttling are transient; client-side
// rejections (bad query, auth denied) are permanent.
func (c *HTTPClient) classifyHTTPError(status int, body []byte) *QueryError {
	transient := status >= http.StatusInternalServerError || status == http.StatusTooManyRequests

	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.ErrorCode != "" {
		c.logger.Error("query failed: status=%d code=%s message=%s", status, parsed.ErrorCode, parsed.ErrorMessage)
		return &QueryError{
			StatusCode: status,
			Code:       parsed.ErrorCode,
			Message:    parsed.ErrorMessage,
			Transient:  transient,
		}
	}

	c.logger.Error("query failed: status=%d body=%s", status, string(body))
	return &QueryError{
		StatusCode: status,
		Message:    string(body),
		Transient:  transient,
	}
}

// signRequest attaches the LOG API authentication headers. The signature
// covers the verb, date, canonicalized x-log/x-acs headers, and the
// canonicalized resource.
func (c *HTTPClient) signRequest(req *http.Request, resource string, query url.Values, creds credentials.Credentials) {
	date := time.Now().UTC().Format(http.TimeFormat)
	req.Header.Set("Date", date)
	req.Header.Set("x-log-apiversion", logAPIVersion)
	req.Header.Set("x-log-signaturemethod", logSignatureMethod)
	if creds.SecurityToken != "" {
		req.Header.Set("x-acs-security-token", creds.SecurityToken)
	}

	canonicalHeaders := canonicalizeLogHeaders(req.Header)
	canonicalResource := canonicalizeResource(resource, query)

	stringToSign := strings.Join([]string{
		http.MethodGet,
		"", // Content-MD5: empty for GET
		"", // Content-Type: empty for GET
		date,
		canonicalHeaders + "\n" + canonicalResource,
	}, "\n")

	mac := hmac.New(sha1.New, []byte(creds.AccessKeySecret))
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("Authorization", fmt.Sprintf("LOG %s:%s", creds.AccessKeyID, signature))
}

// canonicalizeLogHeaders returns the sorted "k:v" lines for x-log-* and
// x-acs-* headers.
func canonicalizeLogHeaders(headers http.Header) string {
	var lines []string
	for key, values := range headers {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "x-log-") || strings.HasPrefix(lower, "x-acs-") {
			lines = append(lines, lower+":"+values[0])
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// canonicalizeResource returns the resource path with sorted query params.
func canonicalizeResource(resource string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query.Get(k))
	}
	if len(pairs) == 0 {
		return resource
	}
	return resource + "?" + strings.Join(pairs, "&")
}
