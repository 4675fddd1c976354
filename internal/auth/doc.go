// Package auth implements bearer token authentication for the maintenance API.
//
// Tokens are HS256 JWTs carrying a subject and the read and control scopes.
// With no secret configured the middleware admits every request with full
// scopes.
package auth
