package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartSweeper launches the background expiry sweep. Sessions and
// redirect tokens are swept on distinct schedules: tokens live for
// minutes and are reaped tightly, sessions survive for the long
// retention window. The sweeper only deletes; it never blocks request
// handling.
func (s *Server) StartSweeper(ctx context.Context) {
	go s.sweepLoop(ctx)
}

func (s *Server) sweepLoop(ctx context.Context) {
	sessionTicker := time.NewTicker(s.config.GetSessionSweepInterval())
	tokenTicker := time.NewTicker(s.config.GetTokenSweepInterval())
	defer sessionTicker.Stop()
	defer tokenTicker.Stop()

	s.sweepSessions(ctx)
	s.sweepTokens(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sessionTicker.C:
			s.sweepSessions(ctx)
		case <-tokenTicker.C:
			s.sweepTokens(ctx)
		}
	}
}

func (s *Server) sweepSessions(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.GetSessionRetention())
	if err := s.repos.Sessions.DeleteOlderThan(ctx, cutoff); err != nil {
		log.Err(err).Msg("Session sweep failed")
	}
}

func (s *Server) sweepTokens(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.GetRedirectTokenTTL())
	if err := s.repos.RedirectTokens.DeleteOlderThan(ctx, cutoff); err != nil {
		log.Err(err).Msg("Redirect token sweep failed")
	}
}
