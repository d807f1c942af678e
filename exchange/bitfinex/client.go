package bitfinex

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/pkg/errors"
)

var _ exchange.Client = (*Client)(nil)

// Options configures a Client. Every zero value selects the documented default.
type Options struct {
	BaseURL        string         // Defaults to BaseURL. Must end with a slash.
	Version        string         // Defaults to Version.
	NonceGenerator NonceGenerator // Defaults to TimestampNonce.
	Transformer    Transformer    // Defaults to PassThrough(). Only applied to public responses.
	HTTPClient     *http.Client   // Defaults to a client without its own timeout.
	Observer       Callback       // Invoked with the outcome of every request. Defaults to none.
	Metrics        *Metrics       // Collectors to report request counts and latency into. Defaults to none.
	Verbose        bool           // Logs every outgoing request.
}

// Client implements the exchange.Client interface for the Bitfinex v2 REST API. Its configuration
// is fixed at construction apart from the credential pair, which Auth swaps atomically, so a single
// client may be shared by concurrent callers. Nonce uniqueness across concurrent authenticated calls
// is the job of the configured NonceGenerator.
type Client struct {
	url         string
	version     string
	creds       atomic.Pointer[credentials]
	nonce       NonceGenerator
	transformer Transformer
	httpClient  *http.Client
	observer    Callback
	metrics     *Metrics
	verbose     bool
}

// NewClient instantiates a client with the provided credentials. Both may be empty, in which case
// only public endpoints can be used. A nil options pointer selects every default.
func NewClient(key string, secret string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}

	o := &Client{
		url:         opts.BaseURL,
		version:     opts.Version,
		nonce:       opts.NonceGenerator,
		transformer: opts.Transformer,
		httpClient:  opts.HTTPClient,
		observer:    opts.Observer,
		metrics:     opts.Metrics,
		verbose:     opts.Verbose,
	}

	o.creds.Store(&credentials{key: key, secret: secret})

	if o.url == "" {
		o.url = BaseURL
	}

	if o.version == "" {
		o.version = Version
	}

	if o.nonce == nil {
		o.nonce = TimestampNonce
	}

	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}

	return o
}

// Auth replaces the client's credentials. Requests already in flight keep the pair they started
// with.
func (o *Client) Auth(key string, secret string) {
	o.creds.Store(&credentials{key: key, secret: secret})
}

// endpoint builds the full URL of the provided path.
func (o *Client) endpoint(path string) string {
	return o.url + o.version + "/" + path
}

// sendPublic issues an unauthenticated GET of the provided path (which may already carry a query
// string) and runs the decoded body through the client's transformer.
func (o *Client) sendPublic(ctx context.Context, path string) (*Response, error) {
	start := time.Now()

	resp, err := o.public(ctx, path)
	o.metrics.observe(KindPublic, start, err)

	return o.deliver(resp, err)
}

func (o *Client) public(ctx context.Context, path string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, PublicTimeout)
	defer cancel()

	resp, err := o.request(ctx, http.MethodGet, o.endpoint(path), nil, nil)
	if err != nil {
		return resp, err
	}

	//
	// Only successful public responses are transformed.
	//
	resp.data, err = o.transformer.Apply(resp.data, path)
	if err != nil {
		return resp, errors.Wrapf(err, "failed to transform response of %s", path)
	}

	return resp, nil
}

// sendAuthenticated signs and issues a POST of the provided payload. A nil payload is sent as an
// empty JSON object. The response is never transformed.
func (o *Client) sendAuthenticated(ctx context.Context, path string, payload interface{}) (*Response, error) {
	start := time.Now()

	resp, err := o.authenticated(ctx, path, payload)
	o.metrics.observe(KindAuthenticated, start, err)

	return o.deliver(resp, err)
}

func (o *Client) authenticated(ctx context.Context, path string, payload interface{}) (*Response, error) {
	//
	// Refuse to do anything without a full set of credentials.
	//
	creds := o.creds.Load()
	if creds.key == "" || creds.secret == "" {
		return nil, errMissingCredentials
	}

	//
	// Serialize the payload once. These exact bytes are both signed and sent.
	//
	url := o.endpoint(path)

	rawBody, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}

	return o.request(ctx, http.MethodPost, url, rawBody, o.sign(creds, url, rawBody))
}

// request makes the specified request to the Bitfinex API and returns a wrapped response (parsed as
// much as generically possible) and/or an error if something went wrong.
func (o *Client) request(
	ctx context.Context,
	method string,
	url string,
	rawBody []byte,
	headers *SignedHeaders,
) (*Response, error) {
	//
	// Build the request.
	//
	var body io.Reader

	if rawBody != nil {
		body = bytes.NewReader(rawBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request for %s", method, url)
	}

	req.Header.Set("Accept", "application/json")

	if rawBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if headers != nil {
		headers.Apply(req.Header)
	}

	if o.verbose {
		logger.Printf("%s %s", method, url)
	}

	//
	// Make a request to the endpoint.
	//
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	defer resp.Body.Close()

	//
	// Begin wrapping the response in the standard response structure and read the body.
	//
	wrappedResp := &Response{
		response: resp,
	}

	wrappedResp.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	//
	// Make sure the status code was valid. The HTTP error stays reachable through errors.As.
	//
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return wrappedResp, &TransportError{
			Method: method,
			URL:    url,
			Err:    exchange.NewHTTPError(resp.StatusCode, wrappedResp.body),
		}
	}

	//
	// Decode the body and check it for the error sentinel.
	//
	if len(bytes.TrimSpace(wrappedResp.body)) == 0 {
		return wrappedResp, nil
	}

	//
	// A body that is not JSON is handed back as its raw text.
	//
	if !json.Valid(wrappedResp.body) {
		if o.verbose {
			logger.Printf("Response of %s %s is not JSON.", method, url)
		}

		wrappedResp.data = string(wrappedResp.body)

		return wrappedResp, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(wrappedResp.body))
	decoder.UseNumber()

	if err := decoder.Decode(&wrappedResp.data); err != nil {
		return wrappedResp, errors.Wrapf(err, "failed to decode response of %s %s", method, url)
	}

	if apiErr := sentinelError(wrappedResp.data); apiErr != nil {
		return wrappedResp, apiErr
	}

	return wrappedResp, nil
}

// sentinelError returns an APIError if the decoded body is an array whose first element is the
// error sentinel.
func sentinelError(data interface{}) *APIError {
	arr, ok := data.([]interface{})
	if !ok || len(arr) == 0 {
		return nil
	}

	if s, ok := arr[0].(string); ok && s == ErrorSentinel {
		return newAPIError(arr)
	}

	return nil
}

// deliver reports the outcome to the configured observer and hands it back to the caller.
func (o *Client) deliver(resp *Response, err error) (*Response, error) {
	if o.observer != nil {
		if err != nil {
			o.observer(err, nil)
		} else {
			o.observer(nil, resp)
		}
	}

	return resp, err
}
