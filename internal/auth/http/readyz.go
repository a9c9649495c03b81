package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store"
	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

// schemaReporter is implemented by stores that track migrations.
type schemaReporter interface {
	SchemaVersion() (version uint, dirty bool, err error)
}

// ReadyzHandler godoc
//
//	@Summary		Readiness check
//	@Description	Checks the account database, the applied schema and that the signing key is published.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Schema:   "ok",
			Signer:   "ok",
		}
		status := "ok"
		code := http.StatusOK
		fail := func() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			fail()
		}

		if sr, ok := st.(schemaReporter); ok {
			v, dirty, err := sr.SchemaVersion()
			switch {
			case err != nil:
				checks.Schema = "error: " + err.Error()
				fail()
			case dirty:
				checks.Schema = fmt.Sprintf("error: version %d is dirty", v)
				fail()
			default:
				checks.Schema = fmt.Sprintf("ok (version %d)", v)
			}
		}

		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			fail()
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
