package auth

import (
	"fmt"

	"github.com/vlaanderen-mow/amsync/config"
)

// NewRequester builds the Requester for authMethod/env from settings,
// matching API/RequesterFactory.py's create_requester dispatch. cookie is
// only consulted for config.AuthCookie.
func NewRequester(method config.AuthMethod, env config.Environment, settings *config.Settings, cookie string) (Requester, error) {
	switch method {
	case config.AuthCookie:
		if cookie == "" {
			return nil, fmt.Errorf("cookie is required for COOKIE authentication")
		}
		return NewCookieRequester(cookie), nil

	case config.AuthJWT:
		creds, ok := settings.Authentication.JWT[env]
		if !ok {
			return nil, fmt.Errorf("no authentication.JWT.%s settings", env)
		}
		return NewJWTRequester(creds.KeyPath, creds.ClientID, 0)

	case config.AuthCERT:
		creds, ok := settings.Authentication.CERT[env]
		if !ok {
			return nil, fmt.Errorf("no authentication.CERT.%s settings", env)
		}
		return NewCertRequester(creds.CertPath, creds.KeyPath)

	default:
		return nil, fmt.Errorf("invalid authentication method: %s", method)
	}
}
