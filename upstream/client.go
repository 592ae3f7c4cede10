package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/vlaanderen-mow/amsync/auth"
	"github.com/vlaanderen-mow/amsync/common"
	amhttp "github.com/vlaanderen-mow/amsync/http"
)

// baseClient performs authenticated GET/POST requests against one upstream
// host, retrying non-2xx responses per request up to RetryCount (spec §4.1).
// It carries no paging logic of its own; EMInfraClient and EMSONClient build
// on top of it.
type baseClient struct {
	baseURL    string
	requester  auth.Requester
	retryCount int
}

func newBaseClient(baseURL string, requester auth.Requester, retryCount int) *baseClient {
	if retryCount <= 0 {
		retryCount = 3
	}
	return &baseClient{baseURL: baseURL, requester: requester, retryCount: retryCount}
}

func (c *baseClient) get(path string) (*amhttp.Response, error) {
	req := amhttp.NewRequest("GET", c.baseURL+path)
	req.RetryCount = c.retryCount
	if err := c.requester.Apply(req); err != nil {
		return nil, common.Wrap(common.ClassConfiguration, "apply auth", err)
	}
	resp, err := amhttp.Execute(req)
	if err != nil {
		return resp, common.Wrap(common.ClassConnectivity, "GET "+path, err)
	}
	return resp, nil
}

func (c *baseClient) postJSON(path string, body interface{}) (*amhttp.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, common.Wrap(common.ClassProtocol, "encode request body", err)
	}
	req := amhttp.NewRequest("POST", c.baseURL+path)
	req.JSONBody = string(encoded)
	req.RetryCount = c.retryCount
	if err := c.requester.Apply(req); err != nil {
		return nil, common.Wrap(common.ClassConfiguration, "apply auth", err)
	}
	resp, err := amhttp.Execute(req)
	if err != nil {
		return resp, common.Wrap(common.ClassConnectivity, "POST "+path, err)
	}
	return resp, nil
}

// decodeJSON unmarshals resp.Body into v, wrapping malformed payloads as a
// protocol error per the §7 error taxonomy.
func decodeJSON(resp *amhttp.Response, v interface{}) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return common.Wrap(common.ClassProtocol, "decode response", fmt.Errorf("%w (body: %.200s)", err, resp.BodyString))
	}
	return nil
}
