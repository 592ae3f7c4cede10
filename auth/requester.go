// Package auth builds the per-request authentication headers and TLS
// material for the three upstream authentication variants (spec §4.1): a
// signed JWT assertion, a mutual-TLS client certificate, or an opaque session
// cookie. Selection happens once at client construction; it never affects
// the paging contract upstream.Client exposes.
package auth

import (
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	amhttp "github.com/vlaanderen-mow/amsync/http"
)

// Requester decorates an outgoing http.Request with whatever this auth
// variant needs (an Authorization header, a Cookie header, or a client
// certificate attached to the transport).
type Requester interface {
	Apply(req *amhttp.Request) error
}

// JWTRequester signs a short-lived bearer assertion from a private key file
// on every call, matching the original's per-requester JWTRequester (backed
// here by lestrrat-go/jwx, the JWT library the base module already depends on).
type JWTRequester struct {
	ClientID   string
	PrivateKey jwk.Key
	TTL        time.Duration
}

// NewJWTRequester loads the PEM/JWK private key at keyPath and prepares a
// signer for clientID. TTL defaults to 5 minutes if zero.
func NewJWTRequester(keyPath, clientID string, ttl time.Duration) (*JWTRequester, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read JWT key: %w", err)
	}
	key, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse JWT key: %w", err)
	}
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &JWTRequester{ClientID: clientID, PrivateKey: key, TTL: ttl}, nil
}

func (j *JWTRequester) Apply(req *amhttp.Request) error {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(j.ClientID).
		Subject(j.ClientID).
		IssuedAt(now).
		Expiration(now.Add(j.TTL)).
		Build()
	if err != nil {
		return fmt.Errorf("build JWT assertion: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, j.PrivateKey))
	if err != nil {
		return fmt.Errorf("sign JWT assertion: %w", err)
	}
	req.Headers["Authorization"] = "Bearer " + string(signed)
	return nil
}

// CertRequester authenticates via mutual TLS; the client certificate is
// attached to the HTTP transport rather than a header.
type CertRequester struct {
	cert tls.Certificate
}

// NewCertRequester loads a client certificate/key pair for mutual TLS.
func NewCertRequester(certPath, keyPath string) (*CertRequester, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load client certificate: %w", err)
	}
	return &CertRequester{cert: cert}, nil
}

func (c *CertRequester) Apply(req *amhttp.Request) error {
	req.ClientCertificate = &c.cert
	return nil
}

// CookieRequester carries an opaque session cookie obtained out-of-band
// (e.g. from an interactive login), matching API/CookieRequester.py.
type CookieRequester struct {
	Cookie string
}

func NewCookieRequester(cookie string) *CookieRequester {
	return &CookieRequester{Cookie: cookie}
}

func (c *CookieRequester) Apply(req *amhttp.Request) error {
	req.Headers["Cookie"] = fmt.Sprintf("acm-awv=%s", c.Cookie)
	req.Headers["Accept"] = "application/json"
	req.Headers["Content-Type"] = "application/vnd.awv.eminfra.v1+json"
	return nil
}
