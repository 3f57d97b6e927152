// Package identity runs the Google OAuth code flow and turns a verified ID token into an Identity.
package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// Identity is a verified Google account.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

var ErrUnverifiedIdentity = errors.New("identity provider returned an unverified identity")

type tokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type Google struct {
	oauth    *oauth2.Config
	validate tokenValidator
	states   *StateStore
}

func NewGoogle(clientID, clientSecret, redirectURL string, states *StateStore) *Google {
	return newGoogle(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}, idtoken.Validate, states)
}

func newGoogle(cfg *oauth2.Config, validate tokenValidator, states *StateStore) *Google {
	return &Google{oauth: cfg, validate: validate, states: states}
}

// AuthCodeURL starts a login and returns the consent page URL.
func (g *Google) AuthCodeURL(ctx context.Context) (string, error) {
	state, err := g.states.Issue(ctx)
	if err != nil {
		return "", err
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange completes a login started by AuthCodeURL.
func (g *Google) Exchange(ctx context.Context, state, code string) (*Identity, error) {
	if err := g.states.Consume(ctx, state); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, errors.New("token response has no id_token")
	}
	payload, err := g.validate(ctx, raw, g.oauth.ClientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*Identity, error) {
	claim := func(name string) string {
		s, _ := p.Claims[name].(string)
		return s
	}
	if verified, ok := p.Claims["email_verified"].(bool); ok && !verified {
		return nil, ErrUnverifiedIdentity
	}
	id := &Identity{
		ExternalID: p.Subject,
		Email:      claim("email"),
		Name:       claim("name"),
		AvatarURL:  claim("picture"),
	}
	if id.ExternalID == "" || id.Email == "" {
		return nil, ErrUnverifiedIdentity
	}
	return id, nil
}
