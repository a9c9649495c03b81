package domain

import "slices"

// Client is a registered OAuth client. Secrets double as the client's HS512
// signing keys, so each must be at least 64 bytes.
type Client struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Secrets      []string `yaml:"secrets"`
	RedirectURIs []string `yaml:"redirect_uris"`
	AllowGuests  bool     `yaml:"allow_guests"`
}

// AllowsRedirect reports whether uri is registered for the client.
func (c Client) AllowsRedirect(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// ClientRegistry holds the registered clients by id.
type ClientRegistry map[string]Client

// Lookup returns the client with the given id.
func (r ClientRegistry) Lookup(id string) (Client, bool) {
	c, ok := r[id]
	return c, ok
}

// Secrets returns every client's secrets keyed by client id, the shape the
// signing key store is built from.
func (r ClientRegistry) Secrets() map[string][]string {
	out := make(map[string][]string, len(r))
	for id, c := range r {
		out[id] = c.Secrets
	}
	return out
}
