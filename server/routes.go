package server

func (s *Server) initRoutes() {
	// CLI routes (trusted network, session id via private headers)
	s.RegisterRouteFunc("POST "+RouteNewSession, ChainMiddleware(s.NewSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteProxy, ChainMiddleware(s.ProxyHandler(), s.APIMiddleware()...))

	// Browser routes (redirect token / provider redirects only)
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.BrowserMiddleware()...))
}
