// Package common contains shared constants and sentinel errors used across
// the blog server components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme the server understands.
const BearerScheme = "Bearer"
