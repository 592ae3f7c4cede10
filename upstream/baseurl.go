// Package upstream implements the two AM upstream API clients (spec §4.1):
// a lower-level resource API (EMInfraClient, offset + identity-offset paging)
// and a higher-level linked-data API (EMSONClient, cursor paging over OTL
// search endpoints). Both share the retrying HTTP client in package http and
// an auth.Requester selected at construction.
package upstream

import (
	"fmt"

	"github.com/vlaanderen-mow/amsync/config"
)

// BaseURLs maps each Environment to its upstream host. Kept as a package
// variable (not a const map) so deployments can override it, per spec §6's
// "the mapping table must be configurable".
var BaseURLs = map[config.Environment]string{
	config.EnvPRD: "https://services.apps.mow.vlaanderen.be/",
	config.EnvTEI: "https://services.apps-tei.mow.vlaanderen.be/",
	config.EnvDEV: "https://services.apps-dev.mow.vlaanderen.be/",
	config.EnvAIM: "https://services-aim.apps-dev.mow.vlaanderen.be/",
}

func baseURLFor(env config.Environment) (string, error) {
	url, ok := BaseURLs[env]
	if !ok {
		return "", fmt.Errorf("no base URL configured for environment %q", env)
	}
	return url, nil
}
