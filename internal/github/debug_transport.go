package github

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
)

// debugTransport wraps an HTTP transport and dumps all API traffic to the
// debug log. Enabled at the highest verbosity level only; dumps include
// request bodies, so the authorization header is the caller's concern.
type debugTransport struct {
	transport http.RoundTripper
}

func (d *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqDump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump request: %w", err)
	}
	slog.Debug("http request", "dump", string(reqDump))

	resp, err := d.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	respDump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump response: %w", err)
	}
	slog.Debug("http response", "dump", string(respDump))

	return resp, nil
}
