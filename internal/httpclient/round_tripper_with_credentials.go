package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"time"
)

type RoundTripperWithCredentials struct {
	r       http.RoundTripper
	header  http.Header
	cookies []*http.Cookie
}

func NewRoundTripperWithCredentials(r http.RoundTripper, headers map[string]string, cookies map[string]string) *RoundTripperWithCredentials {
	if r == nil {
		r = http.DefaultTransport
	}

	header := make(http.Header, len(headers))
	for k, v := range headers {
		// the transport only decompresses responses when it negotiates encoding itself
		if http.CanonicalHeaderKey(k) == "Accept-Encoding" {
			continue
		}
		header.Set(k, v)
	}

	cookieList := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		cookieList = append(cookieList, &http.Cookie{Name: name, Value: value})
	}

	return &RoundTripperWithCredentials{
		r:       r,
		header:  header,
		cookies: cookieList,
	}
}

func (rt *RoundTripperWithCredentials) RoundTrip(r *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	r = r.Clone(r.Context())

	for k, vs := range rt.header {
		for _, v := range vs {
			r.Header.Set(k, v)
		}
	}

	for _, c := range rt.cookies {
		if _, err := r.Cookie(c.Name); err == http.ErrNoCookie {
			r.AddCookie(c)
		}
	}

	return rt.r.RoundTrip(r)
}

// New returns a client that sends the given headers and cookies with every request.
func New(headers map[string]string, cookies map[string]string, timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Jar:       jar,
		Timeout:   timeout,
		Transport: NewRoundTripperWithCredentials(transport, headers, cookies),
	}
}
