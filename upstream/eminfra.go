package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/vlaanderen-mow/amsync/auth"
	"github.com/vlaanderen-mow/amsync/config"
)

// EMInfraClient is the lower-level resource API: offset paging over
// core/api and identiteit/api resources, plus the per-asset sub-resources
// the Extra Fill Engine probes (kenmerktypes, plan couplings, electrical
// connection refs/edges).
type EMInfraClient struct {
	*baseClient
}

// NewEMInfraClient constructs a client for env authenticated via requester.
func NewEMInfraClient(env config.Environment, requester auth.Requester) (*EMInfraClient, error) {
	base, err := baseURLFor(env)
	if err != nil {
		return nil, err
	}
	return &EMInfraClient{baseClient: newBaseClient(base, requester, 0)}, nil
}

// GetResourcePage offset-pages a core/api resource (spec §4.5: "small
// reference resources use offset paging via the lower-level API"). from=nil
// is treated as offset 0.
func (c *EMInfraClient) GetResourcePage(resource string, size int, from *int) (OffsetPage, error) {
	return c.getOffsetPage(fmt.Sprintf("core/api/%s", resource), size, from)
}

// GetIdentityResourcePage offset-pages an identiteit/api resource; used for
// `identiteiten` and `toezichtgroepen` per spec §4.5.
func (c *EMInfraClient) GetIdentityResourcePage(resource string, size int, from *int) (OffsetPage, error) {
	return c.getOffsetPage(fmt.Sprintf("identiteit/api/%s", resource), size, from)
}

func (c *EMInfraClient) getOffsetPage(path string, size int, from *int) (OffsetPage, error) {
	start := 0
	if from != nil {
		start = *from
	}
	resp, err := c.get(fmt.Sprintf("%s?from=%d&pagingMode=OFFSET&size=%d", path, start, size))
	if err != nil {
		return OffsetPage{}, err
	}
	var env offsetEnvelope
	if err := decodeJSON(resp, &env); err != nil {
		return OffsetPage{}, err
	}
	return OffsetPage{Items: env.Data, NextFrom: nextOffset(env)}, nil
}

// Kenmerktype is one capability-group entry returned for an asset-type.
type Kenmerktype struct {
	Name string `json:"name"`
}

// GetKenmerktypes fetches the kenmerktypes attached to an asset-type, used
// to derive has_plan_kenmerk / has_connection_kenmerk (spec §4.7).
func (c *EMInfraClient) GetKenmerktypes(assetTypeUUID string) ([]Kenmerktype, error) {
	resp, err := c.get(fmt.Sprintf("core/api/assettypes/%s/kenmerktypes", assetTypeUUID))
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []Kenmerktype `json:"data"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetPlanKoppelingen fetches the plan couplings for one asset.
func (c *EMInfraClient) GetPlanKoppelingen(assetUUID string) ([]json.RawMessage, error) {
	resp, err := c.get(fmt.Sprintf("core/api/assets/%s/vplankoppelingen", assetUUID))
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetAansluitingRefPage offset-pages the electrical-connection reference list.
func (c *EMInfraClient) GetAansluitingRefPage(size int, from *int) (OffsetPage, error) {
	return c.getOffsetPage("core/api/aansluitingen/referenties", size, from)
}

// GetAansluiting fetches the electrical-connection sub-resource for one
// asset; returns (nil, nil) when the asset has no connection reference.
func (c *EMInfraClient) GetAansluiting(assetUUID string) (json.RawMessage, error) {
	resp, err := c.get(fmt.Sprintf("core/api/assets/%s/aansluiting", assetUUID))
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 || string(resp.Body) == "null" {
		return nil, nil
	}
	return resp.Body, nil
}
