// Package auth implements the forum's stateless authentication:
// HS256 JWT issuance and validation, email+password credential checks,
// the soft per-request bearer-token middleware, and the ordered route
// authorization policy.
//
// Authentication and authorization are split across two middlewares. The
// authenticator never rejects a request; it only attaches an AuthContext
// when the presented token is valid. The policy middleware then decides,
// per route, whether an unauthenticated request is allowed through or
// refused with 401.
package auth
