package domain

// DataScope selects which profile fields the identity backend returns and
// which of them end up in a claims document.
type DataScope int

const (
	// ScopeIDToken is used for OIDC ID tokens.
	ScopeIDToken DataScope = iota

	// ScopeBearerToken is used for ES512 bearer tokens. Email is never
	// included at this scope.
	ScopeBearerToken

	// ScopeProfile is used for the user-info response and returns the full
	// set of profile properties.
	ScopeProfile
)

func (s DataScope) String() string {
	switch s {
	case ScopeIDToken:
		return "id_token"
	case ScopeBearerToken:
		return "bearer_token"
	case ScopeProfile:
		return "profile"
	default:
		return "unknown"
	}
}
