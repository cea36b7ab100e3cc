// Package auth provides authentication for the HTTP API.
//
// It supports two authentication modes:
//   - "none": No authentication (default). The acting user is whoever the
//     request names, in the path or the JSON body.
//   - "local": Accounts log in with a password and receive a session cookie.
//     The acting user is the session user and requests naming anyone else
//     are refused.
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires password login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_LIFETIME=24h     # Session duration
//	AUTH_BCRYPT_COST=12           # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true      # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5     # Failed logins allowed per window
//	AUTH_RATE_LIMIT_WINDOW=15m    # Time for the login budget to refill
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(db.Users, cfg.Auth)
//	sessions, err := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions, cfg.Auth).Handler())
//
// Resolve the acting user in handlers:
//
//	actor, err := auth.ResolveActor(c, body.Username)
package auth
