package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vlaanderen-mow/amsync/config"
	amhttp "github.com/vlaanderen-mow/amsync/http"
)

func TestBaseURLFor(t *testing.T) {
	url, err := baseURLFor(config.EnvTEI)
	assert.NoError(t, err)
	assert.Equal(t, "https://services.apps-tei.mow.vlaanderen.be/", url)
}

func TestBaseURLFor_Unknown(t *testing.T) {
	_, err := baseURLFor(config.Environment("staging"))
	assert.ErrorContains(t, err, "no base URL configured")
}

func TestDecodeJSON(t *testing.T) {
	resp := &amhttp.Response{Body: []byte(`{"uuid": "abc-123"}`), BodyString: `{"uuid": "abc-123"}`}

	var out struct {
		UUID string `json:"uuid"`
	}
	assert.NoError(t, decodeJSON(resp, &out))
	assert.Equal(t, "abc-123", out.UUID)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	resp := &amhttp.Response{Body: []byte(`not json`), BodyString: `not json`}

	var out map[string]interface{}
	err := decodeJSON(resp, &out)
	assert.ErrorContains(t, err, "decode response")
}

func TestNewBaseClient_DefaultsRetryCount(t *testing.T) {
	c := newBaseClient("https://example.test/", nil, 0)
	assert.Equal(t, 3, c.retryCount)
}

func TestNewBaseClient_KeepsPositiveRetryCount(t *testing.T) {
	c := newBaseClient("https://example.test/", nil, 5)
	assert.Equal(t, 5, c.retryCount)
}
