package services

import (
	"context"
	"fmt"

	"github.com/emontalvo610/sso-oauth/domain"
)

// mintRedirectPlan runs after a successful login and decides where the
// browser goes next and which opaque token it carries.
//
// The default plan points at the companion app with a fresh OLT. When the
// second downstream domain is configured and answers its health probe, the
// plan is upgraded: the whole session is sealed into a composite handoff
// token and the browser is sent to the downstream's /session endpoint
// instead. The downstream never sees the session cookie itself.
func (s *LoginService) mintRedirectPlan(ctx context.Context, creds domain.Credentials, user *domain.User, data domain.SessionData) (*domain.RedirectPlan, error) {
	redirectTarget := creds.Redirect
	if creds.Session != "" {
		// A sister app started this login; trade its continuation payload
		// for the redirect that resumes its flow.
		cont, err := s.api.ExchangeContinuation(ctx, creds.Session, user.UUID, user.Email)
		if err != nil {
			return nil, err
		}
		redirectTarget = fmt.Sprintf("%s?session=%s", cont.Redirect, cont.Encryption.Reveal())
	}

	olt, err := s.api.EncryptOLT(ctx, user.UUID, redirectTarget)
	if err != nil {
		return nil, err
	}

	plan := &domain.RedirectPlan{
		RedirectURI: s.companionURI,
		OLT:         olt,
	}

	if s.tournamentsURI != "" && s.api.CheckHealth(ctx, s.tournamentsURI) {
		handoff, err := s.api.EncryptHandoff(ctx, data, s.companionURI, olt)
		if err != nil {
			return nil, err
		}
		plan.OLT = handoff
		plan.RedirectURI = s.tournamentsURI + "/session"
	}

	return plan, nil
}
