package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Environment selects one of the four upstream deployments. The mapping from
// Environment to a base URL lives in upstream.BaseURLs so it stays
// configurable without touching this package.
type Environment string

const (
	EnvPRD Environment = "prd"
	EnvTEI Environment = "tei"
	EnvDEV Environment = "dev"
	EnvAIM Environment = "aim"
)

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvPRD, EnvTEI, EnvDEV, EnvAIM:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("invalid environment %q", s)
	}
}

// AuthMethod selects how upstream requests are authenticated. Selection does
// not affect the paging contract (spec §4.1).
type AuthMethod string

const (
	AuthJWT    AuthMethod = "JWT"
	AuthCERT   AuthMethod = "CERT"
	AuthCookie AuthMethod = "COOKIE"
)

func ParseAuthMethod(s string) (AuthMethod, error) {
	switch AuthMethod(s) {
	case AuthJWT, AuthCERT, AuthCookie:
		return AuthMethod(s), nil
	default:
		return "", fmt.Errorf("invalid authentication method %q", s)
	}
}

// DatabaseSettings is the databases.<env> settings block.
type DatabaseSettings struct {
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// JWTCredentials is authentication.JWT.<env>.
type JWTCredentials struct {
	KeyPath  string `json:"key_path"`
	ClientID string `json:"client_id"`
}

// CertCredentials is authentication.CERT.<env>.
type CertCredentials struct {
	CertPath string `json:"cert_path"`
	KeyPath  string `json:"key_path"`
}

// AuthenticationSettings groups the per-method, per-environment credential blocks.
type AuthenticationSettings struct {
	JWT  map[Environment]JWTCredentials  `json:"JWT"`
	CERT map[Environment]CertCredentials `json:"CERT"`
}

// Settings is the settings-file document described in spec §6. Unrecognized
// top-level keys are ignored by virtue of encoding/json's default behavior.
type Settings struct {
	Databases      map[Environment]DatabaseSettings `json:"databases"`
	Authentication AuthenticationSettings            `json:"authentication"`

	// Transform holds the one configurable policy decision from spec §9.
	Transform TransformSettings `json:"transform"`
}

// TransformSettings configures the Asset Transformer's open-question policy.
type TransformSettings struct {
	// WKTPolicy is either "fail_page" (default) or "skip_geometry".
	WKTPolicy string `json:"wkt_policy"`
}

// LoadSettings reads and parses the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	return &s, nil
}

// DatabaseFor returns the database settings for env, or an error if absent.
func (s *Settings) DatabaseFor(env Environment) (DatabaseSettings, error) {
	db, ok := s.Databases[env]
	if !ok {
		return DatabaseSettings{}, fmt.Errorf("no databases.%s entry in settings", env)
	}
	return db, nil
}
