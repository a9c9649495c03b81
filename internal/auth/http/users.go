package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
)

// maxJSONBody caps request bodies on the JSON endpoints.
const maxJSONBody = 64 << 10

// UsersHandler serves account management for registered clients and user
// lookups for signed-in users.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate godoc
//
//	@Summary		Create user
//	@Description	Registers an account. The calling client authenticates with HTTP basic auth.
//	@Description	When password is omitted one is generated and returned in the password field.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.CreateUserRequest	true	"Account properties"
//	@Success		201		{object}	map[string]interface{}		"Profile claims, plus password when generated"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation failure"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid_client"
//	@Router			/v1/users [post]
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	clientID, clientSecret := clientCredentials(r)

	props := domain.UserProperties{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		Organization: req.Organization,
		Interests:    req.Interests,
	}

	claims, err := h.UserService.CreateUser(r.Context(), clientID, clientSecret, props, req.Password)
	if err != nil {
		writeServiceError(w, r, "create user", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, claims)
}

// HandleResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Assigns a generated password and signs the user out everywhere. The calling
//	@Description	client authenticates with HTTP basic auth.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string					true	"User id"
//	@Success		200	{object}	map[string]interface{}	"Profile claims with the new password"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_client"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Unknown user"
//	@Router			/v1/users/{id}/password-reset [post]
func (h *UsersHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	clientID, clientSecret := clientCredentials(r)

	claims, err := h.UserService.ResetPassword(r.Context(), clientID, clientSecret, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "reset password", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, claims)
}

// HandleModify godoc
//
//	@Summary		Modify user
//	@Description	Replaces the profile of a user, validated as on creation, and returns it as
//	@Description	stored. An omitted username clears it. The calling client authenticates with
//	@Description	HTTP basic auth.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User id"
//	@Param			body	body		authsdk.ModifyUserRequest	true	"Account properties"
//	@Success		200		{object}	map[string]interface{}		"Profile claims"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation failure"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid_client"
//	@Failure		403		{object}	authsdk.ErrorResponse		"Unknown user or guest"
//	@Router			/v1/users/{id} [put]
func (h *UsersHandler) HandleModify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ModifyUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	clientID, clientSecret := clientCredentials(r)

	props := domain.UserProperties{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		Organization: req.Organization,
		Interests:    req.Interests,
	}

	claims, err := h.UserService.ModifyUser(r.Context(), clientID, clientSecret, r.PathValue("id"), props)
	if err != nil {
		writeServiceError(w, r, "modify user", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, claims)
}

// HandleSetPassword godoc
//
//	@Summary		Set password
//	@Description	Overwrites the password of the user logging in as login (email or username)
//	@Description	and signs them out everywhere. When password is omitted one is generated and
//	@Description	returned. The calling client authenticates with HTTP basic auth.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SetPasswordRequest	true	"Login and new password"
//	@Success		200		{object}	map[string]interface{}		"Profile claims, plus password when generated"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid_client"
//	@Failure		403		{object}	authsdk.ErrorResponse		"Unknown login"
//	@Router			/v1/users/password [post]
func (h *UsersHandler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetPasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	clientID, clientSecret := clientCredentials(r)

	claims, err := h.UserService.SetPassword(r.Context(), clientID, clientSecret, req.Login, req.Password)
	if err != nil {
		writeServiceError(w, r, "set password", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, claims)
}

// HandleQuery godoc
//
//	@Summary		Query users
//	@Description	Looks up public records by user id. Requires an ES512 bearer token of a
//	@Description	registered user; guest tokens are refused.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.QueryUsersRequest	true	"userId or userIds"
//	@Success		200		{object}	authsdk.QueryUsersResponse	"One record per requested id"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Malformed query"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid or missing token"
//	@Failure		403		{object}	authsdk.ErrorResponse		"Guest token"
//	@Router			/v1/users/query [post]
func (h *UsersHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var q identity.UserQuery
	if !decodeJSONBody(w, r, &q) {
		return
	}

	records, err := h.UserService.QueryUsers(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, "query users", err)
		return
	}
	if records == nil {
		records = []domain.UserRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": records})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return false
	}
	return true
}
