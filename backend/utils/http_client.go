package utils

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient returns the client used for calls between services. Circuit
// breakers are applied at the call site, not here.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
			MaxIdleConns:        20,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}
