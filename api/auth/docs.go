// Package auth registers the Swagger 2.0 document for the token service with
// swag, which serves it at /swagger/doc.json. Keep it in step with the
// handler annotations in internal/auth/http.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/bartab-oidc"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/.well-known/jwks.json": {
            "get": {
                "description": "Returns the key set: kid \"0\" is the HS512 descriptor (the key is each client's\nown secret), kid \"1\" is the P-521 public key for ES512 tokens.",
                "produces": ["application/json"],
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "responses": {
                    "200": {
                        "description": "The JSON Web Key Set",
                        "schema": {"$ref": "#/definitions/jwtx.JWKS"}
                    }
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Returns 200 while the process is running, with uptime and version.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "status, uptime, version",
                        "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Checks the account database, the applied schema and that the signing key is published.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "status, uptime, version, checks",
                        "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}
                    },
                    "503": {
                        "description": "status, uptime, version, checks",
                        "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}
                    }
                }
            }
        },
        "/v1/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Invalidates every authorization code and access token of the token's owner.",
                "tags": ["User"],
                "summary": "Log out",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {
                        "description": "Invalid or missing access token",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/oauth2/authorize": {
            "post": {
                "description": "Checks the user's credentials and redirects to redirect_uri with an authorization code.\nThe code is bound to the client and to the optional nonce, which is echoed in the ID token.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "OAuth2 authorization endpoint",
                "parameters": [
                    {"type": "string", "default": "code", "description": "Must be 'code' when given", "name": "response_type", "in": "formData"},
                    {"type": "string", "description": "OAuth2 client identifier", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Registered callback URI", "name": "redirect_uri", "in": "formData", "required": true},
                    {"type": "string", "description": "Opaque value echoed in the redirect", "name": "state", "in": "formData"},
                    {"type": "string", "description": "Echoed in the ID token", "name": "nonce", "in": "formData"},
                    {"type": "string", "description": "Email address or username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "302": {
                        "description": "Redirect to redirect_uri with code and state",
                        "schema": {"type": "string"}
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/oauth2/bearer-token": {
            "post": {
                "description": "Redeems an authorization code for an ES512-signed access token that resource\nservers verify with the public key from the JWKS. No email claims are included.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "ES512 bearer token",
                "parameters": [
                    {"enum": ["authorization_code"], "type": "string", "description": "Grant type", "name": "grant_type", "in": "formData", "required": true},
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "formData", "required": true},
                    {"type": "string", "description": "Client identifier", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Client secret", "name": "client_secret", "in": "formData", "required": true},
                    {"type": "string", "description": "Must be registered for the client when given", "name": "redirect_uri", "in": "formData"}
                ],
                "responses": {
                    "200": {
                        "description": "access_token, token_type, expires_in",
                        "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/oauth2/guest-token": {
            "post": {
                "description": "Creates a guest user and returns an ES512 access token for it. The client must\nbe registered with allow_guests.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "Guest token",
                "parameters": [
                    {"type": "string", "description": "Client identifier", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Client secret", "name": "client_secret", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "access_token, token_type, expires_in",
                        "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}
                    },
                    "400": {
                        "description": "guests_not_supported or unauthorized_client",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "invalid_client",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/oauth2/token": {
            "post": {
                "description": "Redeems an authorization code for an opaque access token and an HS512 ID token\nsigned with the client secret. Codes stay redeemable until they expire.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "OAuth2 token endpoint",
                "parameters": [
                    {"enum": ["authorization_code"], "type": "string", "description": "Grant type", "name": "grant_type", "in": "formData", "required": true},
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "formData", "required": true},
                    {"type": "string", "description": "Client identifier", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Client secret", "name": "client_secret", "in": "formData", "required": true},
                    {"type": "string", "description": "Must be registered for the client when given", "name": "redirect_uri", "in": "formData"}
                ],
                "responses": {
                    "200": {
                        "description": "access_token, token_type, expires_in, id_token",
                        "schema": {"$ref": "#/definitions/authsdk.TokenResponse"},
                        "headers": {
                            "Cache-Control": {"type": "string", "description": "no-store"}
                        }
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "500": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/user": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the profile of the user owning the access token: sub, is_guest, email,\nemail_verified, preferred_username, signature and the backend's profile fields.",
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Get user information",
                "responses": {
                    "200": {
                        "description": "Profile claims",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "401": {
                        "description": "Invalid or missing access token",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "403": {
                        "description": "User no longer exists",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/users": {
            "post": {
                "description": "Registers an account. The calling client authenticates with HTTP basic auth.\nWhen password is omitted one is generated and returned in the password field.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create user",
                "parameters": [
                    {
                        "description": "Account properties",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.CreateUserRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Profile claims, plus password when generated",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "400": {
                        "description": "Validation failure",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "invalid_client",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/users/password": {
            "post": {
                "description": "Overwrites the password of the user logging in as login (email or username)\nand signs them out everywhere. When password is omitted one is generated and\nreturned. The calling client authenticates with HTTP basic auth.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Set password",
                "parameters": [
                    {
                        "description": "Login and new password",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.SetPasswordRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile claims, plus password when generated",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "401": {
                        "description": "invalid_client",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "403": {
                        "description": "Unknown login",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/users/query": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Looks up public records by user id. Requires an ES512 bearer token of a\nregistered user; guest tokens are refused.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Query users",
                "parameters": [
                    {
                        "description": "userId or userIds",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.QueryUsersRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "One record per requested id",
                        "schema": {"$ref": "#/definitions/authsdk.QueryUsersResponse"}
                    },
                    "400": {
                        "description": "Malformed query",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "Invalid or missing token",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "403": {
                        "description": "Guest token",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/users/{id}": {
            "put": {
                "description": "Replaces the profile of a user, validated as on creation, and returns it as\nstored. An omitted username clears it. The calling client authenticates with\nHTTP basic auth.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Modify user",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Account properties",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.ModifyUserRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile claims",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "400": {
                        "description": "Validation failure",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "invalid_client",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "403": {
                        "description": "Unknown user or guest",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/users/{id}/password-reset": {
            "post": {
                "description": "Assigns a generated password and signs the user out everywhere. The calling\nclient authenticates with HTTP basic auth.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Reset password",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "Profile claims with the new password",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "401": {
                        "description": "invalid_client",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "403": {
                        "description": "Unknown user",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "authsdk.CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ada@example.org"},
                "firstName": {"type": "string", "example": "Ada"},
                "interests": {"type": "string"},
                "lastName": {"type": "string", "example": "Lovelace"},
                "middleName": {"type": "string"},
                "organization": {"type": "string", "example": "Analytical Engines"},
                "password": {"type": "string"},
                "username": {"type": "string", "example": "ada"}
            }
        },
        "authsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "schema": {"type": "string"},
                "signer": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"},
                "status": {"type": "string", "example": "ok"},
                "uptime": {"type": "string", "example": "1h23m45s"},
                "version": {"type": "string"}
            }
        },
        "authsdk.ModifyUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ada@example.org"},
                "firstName": {"type": "string", "example": "Ada"},
                "interests": {"type": "string"},
                "lastName": {"type": "string", "example": "Lovelace"},
                "middleName": {"type": "string"},
                "organization": {"type": "string", "example": "Analytical Engines"},
                "username": {"type": "string", "example": "ada"}
            }
        },
        "authsdk.QueryUsersRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "integer"},
                "userIds": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "authsdk.QueryUsersResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/authsdk.UserRecord"}}
            }
        },
        "authsdk.SetPasswordRequest": {
            "type": "object",
            "properties": {
                "login": {"type": "string", "example": "ada"},
                "password": {"type": "string"}
            }
        },
        "authsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string", "example": "3q2-7wEAAQ..."},
                "expires_in": {"type": "integer", "example": 3600},
                "id_token": {"type": "string"},
                "token_type": {"type": "string", "example": "bearer"}
            }
        },
        "authsdk.UserRecord": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "found": {"type": "boolean"},
                "isGuest": {"type": "boolean"},
                "name": {"type": "string"},
                "organization": {"type": "string"},
                "userId": {"type": "integer"}
            }
        },
        "jwtx.JWK": {
            "type": "object",
            "properties": {
                "alg": {"type": "string"},
                "crv": {"type": "string"},
                "fmt": {"type": "string"},
                "k": {"type": "string"},
                "kid": {"type": "string"},
                "kty": {"type": "string"},
                "use": {"type": "string"},
                "x": {"type": "string"},
                "y": {"type": "string"}
            }
        },
        "jwtx.JWKS": {
            "type": "object",
            "properties": {
                "keys": {"type": "array", "items": {"$ref": "#/definitions/jwtx.JWK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "bartab-oidc Token Service API",
	Description:      "OAuth2/OpenID Connect token issuance. ID tokens are HS512-signed with the\nclient secret; bearer and guest tokens are ES512-signed and verify against the JWKS.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
