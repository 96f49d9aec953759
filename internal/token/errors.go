// Package token implements the token service: issuing signed access/refresh
// pairs from verified credentials, validating bearer tokens, and revoking
// refresh tokens through the blacklist ledger.
package token

import "errors"

// ErrInvalidCredentials is returned by Issue when the username does not
// exist or the password does not match the stored hash. Handlers translate
// it into an HTTP 401 response.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a token is malformed, expired, carries
// the wrong signature, or is of the wrong type for the operation.
var ErrInvalidToken = errors.New("token is invalid or expired")

// ErrTokenRevoked is returned when a refresh token's jti is already present
// in the blacklist ledger.
var ErrTokenRevoked = errors.New("token revoked")
