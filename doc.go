// Package identity implements local-credential authentication for a modular
// identity service: registration, password login, password reset, and
// mutable identity attributes (username, email) bound to a transport
// session.
//
// The package is transport agnostic. The core type, LocalAuthenticator,
// composes a CredentialStore, the password policy and hasher, and a reset
// token source; transports hand it a UserSession implementation that knows
// how to bind a user id to their session mechanism. Ready-made session
// implementations cover in-process memory sessions, JWT cookies for fiber,
// and server-side sessions backed by a SessionStore (redis or memory).
//
// Hosts that want ready-made routes can mount the HTTP controller, which
// registers the /local/* endpoints and a /status query.
package identity
