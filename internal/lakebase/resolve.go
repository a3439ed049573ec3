package lakebase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
)

// ConnSpec holds the resolved connection parameters for an endpoint. The
// password is not part of the spec: tokens rotate, so callers take them from
// the CredentialManager per connection.
type ConnSpec struct {
	Host         string
	Database     string
	User         string
	EndpointName string
}

// DSN builds a Postgres connection string for the spec. The password may be
// empty when it is supplied later per connection.
func DSN(spec ConnSpec, password string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(spec.User),
		Host:     spec.Host + ":5432",
		Path:     "/" + spec.Database,
		RawQuery: "sslmode=require",
	}
	if password != "" {
		u.User = url.UserPassword(spec.User, password)
	}
	return u.String()
}

// BranchID applies the branch convention: an explicit id wins, a service
// principal (client id set) lands on production.
func BranchID(cfg config.LakebaseConfig) string {
	if cfg.BranchID != "" {
		return cfg.BranchID
	}
	return "production"
}

// Resolve locates the endpoint for the configured project/branch and
// returns its connection parameters plus a credential manager for it.
//
// The configured endpoint id is tried first; if the branch's endpoint was
// auto-provisioned under a different id, the first endpoint on the branch is
// used instead.
func Resolve(ctx context.Context, client *Client, cfg config.LakebaseConfig) (ConnSpec, *CredentialManager, error) {
	branch := BranchID(cfg)
	parent := fmt.Sprintf("projects/%s/branches/%s", cfg.ProjectID, branch)
	name := parent + "/endpoints/" + cfg.EndpointID

	endpoint, err := client.GetEndpoint(ctx, name)
	if errors.Is(err, ErrNotFound) {
		endpoints, listErr := client.ListEndpoints(ctx, parent)
		if listErr != nil {
			return ConnSpec{}, nil, listErr
		}
		if len(endpoints) == 0 {
			return ConnSpec{}, nil, fmt.Errorf("no endpoints on %s", parent)
		}
		endpoint = endpoints[0]
		log.Printf("lakebase: endpoint %s not found, using %s", name, endpoint.Name)
	} else if err != nil {
		return ConnSpec{}, nil, err
	}

	user := cfg.User
	if user == "" {
		// The Postgres role name must match the workspace identity; for a
		// service principal that is its client id.
		user = cfg.ClientID
	}
	if user == "" {
		return ConnSpec{}, nil, fmt.Errorf("LAKEBASE_USER or LAKEBASE_CLIENT_ID is required to resolve the database role")
	}

	spec := ConnSpec{
		Host:         endpoint.Status.Hosts.Host,
		Database:     cfg.Database,
		User:         user,
		EndpointName: endpoint.Name,
	}
	return spec, NewCredentialManager(client, endpoint.Name), nil
}
