package session

import "net/http"

// Transport attaches the session credential to every outbound request
// and reports credential rejections so the owner can re-authenticate.
type Transport struct {
	Base    http.RoundTripper
	Session *Session

	// OnUnauthorized runs whenever the server answers 401. The cart
	// engine itself never handles re-auth; that is the session
	// owner's hook.
	OnUnauthorized func()
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	req := r.Clone(r.Context())
	if tok := t.Session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.OnUnauthorized != nil {
		t.OnUnauthorized()
	}
	return resp, nil
}
