// Package common contains shared constants, sentinel errors and small helpers
// used by both the gallery server and the terminal client.
package common

// AuthorizationHeader carries the admin session token as "Bearer <token>".
const AuthorizationHeader = "Authorization"

// BearerPrefix is the scheme prefix expected in AuthorizationHeader.
const BearerPrefix = "Bearer "

// SessionTokenBytes is the number of random bytes behind a session token.
// The hex encoding doubles the visible length.
const SessionTokenBytes = 32
