package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/bartab-oidc/api/auth" // Swagger docs
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

// RateLimits selects the limiter profile for each endpoint class.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultRateLimits returns the env-tunable profiles from httpx.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	jwks         jwtx.JWKS
	keys         *jwtx.KeySet
	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	TokenService *service.TokenService
	UserService  *service.UserService

	// Gatherer backs /metrics. Nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	Limits   RateLimits
}

// NewRouter builds a router publishing jwks. Bearer tokens presented to the
// API are verified against the same key set.
func NewRouter(
	jwks jwtx.JWKS,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) (*Router, error) {
	keys := jwtx.NewKeySet()
	if err := keys.ResetFromJWKS(jwks); err != nil {
		return nil, err
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		jwks:         jwks,
		keys:         keys,
		verifier:     jwtx.NewVerifier(keys, jwtx.VerifyOptions{Issuer: issuer, Leeway: 30 * time.Second}),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r, nil
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerSession()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						bartab-oidc Token Service API
//	@version					0.1.0
//	@description				OAuth2/OpenID Connect token issuance. ID tokens are HS512-signed with the
//	@description				client secret; bearer and guest tokens are ES512-signed and verify against the JWKS.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bartab-oidc
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	authorize := &AuthorizeHandler{TokenService: r.TokenService}
	tokens := &TokenHandler{TokenService: r.TokenService}

	// Credential guessing is limited per address and login name.
	r.Mux.Handle("POST /v1/oauth2/authorize",
		httpx.Chain(authorize,
			httpx.RateLimitByIPAndFormField(r.Limits.Strict, "username"),
		),
	)

	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(http.HandlerFunc(tokens.HandleToken),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/oauth2/bearer-token",
		httpx.Chain(http.HandlerFunc(tokens.HandleBearerToken),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/oauth2/guest-token",
		httpx.Chain(http.HandlerFunc(tokens.HandleGuestToken),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.jwks),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{TokenService: r.TokenService}

	r.Mux.Handle("GET /v1/user",
		httpx.Chain(http.HandlerFunc(h.HandleUserInfo),
			httpx.OpaqueTokenMiddleware(r.TokenService),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.OpaqueTokenMiddleware(r.TokenService),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("PUT /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleModify),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/users/password",
		httpx.Chain(http.HandlerFunc(h.HandleSetPassword),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/password-reset",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/users/query",
		httpx.Chain(http.HandlerFunc(h.HandleQuery),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRegisteredUser(),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring polls these often.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{}))
	}
}
