// Package common contains shared constants and sentinel errors used across
// the dailyjournal server and client.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// Roles a principal may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
