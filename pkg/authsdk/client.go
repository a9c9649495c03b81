package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to a bartab-oidc provider. Client credentials are passed
// per call so one SDKClient can serve several registered clients.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 10 second request timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ClientCredentials identify a registered client. The secret doubles as the
// HS512 key for ID tokens issued to it.
type ClientCredentials struct {
	ID     string
	Secret string
}
