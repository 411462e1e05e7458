package common

// SessionCookieName is the cookie carrying the viewer's session token.
const SessionCookieName = "fis_session"

// AuthorizationScheme prefixes a session token passed in the Authorization header.
const AuthorizationScheme = "Bearer "
