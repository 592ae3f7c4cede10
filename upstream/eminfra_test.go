package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vlaanderen-mow/amsync/config"
)

func TestNewEMInfraClient_UnknownEnvironment(t *testing.T) {
	_, err := NewEMInfraClient(config.Environment("staging"), nil)
	assert.Error(t, err)
}

func TestNewEMInfraClient_ValidEnvironment(t *testing.T) {
	c, err := NewEMInfraClient(config.EnvDEV, nil)
	assert.NoError(t, err)
	assert.Equal(t, "https://services.apps-dev.mow.vlaanderen.be/", c.baseURL)
}

func TestNewEMSONClient_UnknownEnvironment(t *testing.T) {
	_, err := NewEMSONClient(config.Environment("staging"), nil)
	assert.Error(t, err)
}

func TestNewEMSONClient_ValidEnvironment(t *testing.T) {
	c, err := NewEMSONClient(config.EnvPRD, nil)
	assert.NoError(t, err)
	assert.Equal(t, "https://services.apps.mow.vlaanderen.be/", c.baseURL)
}
