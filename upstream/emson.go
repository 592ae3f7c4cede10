package upstream

import (
	"fmt"

	"github.com/vlaanderen-mow/amsync/auth"
	"github.com/vlaanderen-mow/amsync/config"
)

// EMSONClient is the higher-level linked-data API: cursor-paged search
// endpoints returning JSON-LD-like `@graph` payloads (spec §4.1, §4.5 —
// "assets, assetrelaties use cursor paging on the higher-level API").
type EMSONClient struct {
	*baseClient
}

func NewEMSONClient(env config.Environment, requester auth.Requester) (*EMSONClient, error) {
	base, err := baseURLFor(env)
	if err != nil {
		return nil, err
	}
	return &EMSONClient{baseClient: newBaseClient(base+"emson/", requester, 0)}, nil
}

// GetResourceByCursor fetches one page of resource via the OTL search
// endpoint. cursor == nil starts from the beginning. expansionFields, if
// non-empty, requests the expansions body (used for contactInfo on
// agents/betrokkenerelaties per spec §4.5).
func (c *EMSONClient) GetResourceByCursor(resource string, cursor *string, size int, expansionFields []string) (CursorPage, error) {
	query := cursorQuery{Size: size, Filters: map[string]interface{}{}, FromCursor: cursor}
	if len(expansionFields) > 0 {
		query.Expansions = &expansions{Fields: expansionFields}
	}

	resp, err := c.postJSON(fmt.Sprintf("api/otl/%s/search", resource), query)
	if err != nil {
		return CursorPage{}, err
	}

	var env cursorEnvelope
	if err := decodeJSON(resp, &env); err != nil {
		return CursorPage{}, err
	}

	var next *string
	if v := resp.Header(nextCursorHeader); v != "" {
		next = &v
	}
	return CursorPage{Items: env.Graph, NextCursor: next}, nil
}

// GetByUUID fetches a single record by id, for single-record lookups that
// don't go through paging.
func (c *EMSONClient) GetByUUID(resource, uuid string) ([]byte, error) {
	resp, err := c.get(fmt.Sprintf("api/otl/%s/%s", resource, uuid))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
