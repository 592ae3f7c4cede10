package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vlaanderen-mow/amsync/config"
	amhttp "github.com/vlaanderen-mow/amsync/http"
)

func TestCookieRequester_Apply(t *testing.T) {
	r := NewCookieRequester("abc123")
	req := &amhttp.Request{Headers: map[string]string{}}

	assert.NoError(t, r.Apply(req))
	assert.Equal(t, "acm-awv=abc123", req.Headers["Cookie"])
	assert.Equal(t, "application/json", req.Headers["Accept"])
}

func TestNewRequester_CookieMissing(t *testing.T) {
	_, err := NewRequester(config.AuthCookie, config.EnvTEI, &config.Settings{}, "")
	assert.ErrorContains(t, err, "cookie is required")
}

func TestNewRequester_Cookie(t *testing.T) {
	r, err := NewRequester(config.AuthCookie, config.EnvTEI, &config.Settings{}, "sess-1")
	assert.NoError(t, err)
	assert.IsType(t, &CookieRequester{}, r)
}

func TestNewRequester_JWTMissingSettings(t *testing.T) {
	_, err := NewRequester(config.AuthJWT, config.EnvTEI, &config.Settings{}, "")
	assert.ErrorContains(t, err, "no authentication.JWT.tei settings")
}

func TestNewRequester_CertMissingSettings(t *testing.T) {
	_, err := NewRequester(config.AuthCERT, config.EnvTEI, &config.Settings{}, "")
	assert.ErrorContains(t, err, "no authentication.CERT.tei settings")
}

func TestNewRequester_InvalidMethod(t *testing.T) {
	_, err := NewRequester(config.AuthMethod("BASIC"), config.EnvTEI, &config.Settings{}, "")
	assert.ErrorContains(t, err, "invalid authentication method")
}

func TestCertRequester_ApplyAttachesCertificate(t *testing.T) {
	r := &CertRequester{}
	req := &amhttp.Request{Headers: map[string]string{}}

	assert.NoError(t, r.Apply(req))
	assert.NotNil(t, req.ClientCertificate)
}
