package server

// Route path constants
// All broker routes are defined here to ensure consistency and prevent typos
const (
	// CLI-facing routes
	RouteNewSession = "/newsession"
	RouteStatus     = "/status"
	RouteProxy      = "/proxy"

	// Browser-facing routes
	RouteLogin    = "/login"
	RouteCallback = "/callback"
)
