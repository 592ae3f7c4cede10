package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvConfig_GetString(t *testing.T) {
	os.Setenv("AMSYNC_SETTINGS", "/etc/amsync/settings.json")
	defer os.Unsetenv("AMSYNC_SETTINGS")

	ec := NewEnvConfig("AMSYNC")
	assert.Equal(t, "/etc/amsync/settings.json", ec.GetString("SETTINGS", "./settings.json"))
	assert.Equal(t, "./settings.json", ec.GetString("UNSET_KEY", "./settings.json"))
}

func TestEnvConfig_GetInt(t *testing.T) {
	os.Setenv("AMSYNC_PAGE_SIZE", "250")
	defer os.Unsetenv("AMSYNC_PAGE_SIZE")

	ec := NewEnvConfig("AMSYNC")
	assert.Equal(t, 250, ec.GetInt("PAGE_SIZE", 1000))
	assert.Equal(t, 1000, ec.GetInt("UNSET_KEY", 1000))
}

func TestValidator_RequireOneOf(t *testing.T) {
	v := NewValidator()
	v.RequireOneOf("env", "tei", []string{"prd", "tei", "dev", "aim"})
	assert.True(t, v.IsValid())
	assert.NoError(t, v.Validate())
}

func TestValidator_RequireOneOf_Invalid(t *testing.T) {
	v := NewValidator()
	v.RequireOneOf("env", "staging", []string{"prd", "tei", "dev", "aim"})
	assert.False(t, v.IsValid())
	assert.ErrorContains(t, v.Validate(), "env must be one of")
}

func TestValidator_RequireOneOf_Missing(t *testing.T) {
	v := NewValidator()
	v.RequireOneOf("auth", "", []string{"JWT", "CERT", "COOKIE"})
	assert.ErrorContains(t, v.Validate(), "auth is required")
}

func TestValidator_AccumulatesMultipleErrors(t *testing.T) {
	v := NewValidator()
	v.RequireString("settings", "")
	v.RequireOneOf("env", "bogus", []string{"prd", "tei"})
	err := v.Validate()
	assert.ErrorContains(t, err, "settings is required")
	assert.ErrorContains(t, err, "env must be one of")
}

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment("tei")
	assert.NoError(t, err)
	assert.Equal(t, EnvTEI, env)

	_, err = ParseEnvironment("staging")
	assert.Error(t, err)
}

func TestParseAuthMethod(t *testing.T) {
	method, err := ParseAuthMethod("JWT")
	assert.NoError(t, err)
	assert.Equal(t, AuthJWT, method)

	_, err = ParseAuthMethod("BASIC")
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	f, err := os.CreateTemp("", "settings-*.json")
	assert.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString(`{
		"databases": {"tei": {"database": "couchdb.tei.internal", "user": "svc", "password": "secret"}},
		"authentication": {"JWT": {"tei": {"key_path": "/keys/tei.pem", "client_id": "amsync"}}},
		"transform": {"wkt_policy": "skip_geometry"}
	}`)
	assert.NoError(t, err)
	f.Close()

	settings, err := LoadSettings(f.Name())
	assert.NoError(t, err)
	assert.Equal(t, "skip_geometry", settings.Transform.WKTPolicy)

	dbSettings, err := settings.DatabaseFor(EnvTEI)
	assert.NoError(t, err)
	assert.Equal(t, "couchdb.tei.internal", dbSettings.Database)
	assert.Equal(t, "svc", dbSettings.User)

	_, err = settings.DatabaseFor(EnvPRD)
	assert.Error(t, err)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings("/no/such/file.json")
	assert.Error(t, err)
}
