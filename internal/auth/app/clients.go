package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
)

var ErrInvalidClients = errors.New("invalid client registry")

// clientsFile is the on-disk registry:
//
//	clients:
//	  - id: web
//	    name: Web frontend
//	    secrets: ["..."]
//	    redirect_uris: ["https://app.example.com/callback"]
//	    allow_guests: true
type clientsFile struct {
	Clients []domain.Client `yaml:"clients"`
}

// LoadClients reads the client registry from path.
func LoadClients(path string) (domain.ClientRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clients file: %w", err)
	}
	return ParseClients(data)
}

// ParseClients decodes a registry and checks that ids are present and
// unique and every client has at least one secret and redirect URI.
// Secret strength is checked when the signing key store is built.
func ParseClients(data []byte) (domain.ClientRegistry, error) {
	var f clientsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClients, err)
	}
	if len(f.Clients) == 0 {
		return nil, fmt.Errorf("%w: no clients", ErrInvalidClients)
	}

	reg := make(domain.ClientRegistry, len(f.Clients))
	for i, c := range f.Clients {
		switch {
		case c.ID == "":
			return nil, fmt.Errorf("%w: client %d has no id", ErrInvalidClients, i)
		case len(c.Secrets) == 0:
			return nil, fmt.Errorf("%w: client %q has no secrets", ErrInvalidClients, c.ID)
		case len(c.RedirectURIs) == 0:
			return nil, fmt.Errorf("%w: client %q has no redirect_uris", ErrInvalidClients, c.ID)
		}
		if _, dup := reg[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate client %q", ErrInvalidClients, c.ID)
		}
		reg[c.ID] = c
	}
	return reg, nil
}
