// Package lakebase is a thin client for the managed-Postgres control plane:
// project/branch/endpoint resources plus short-lived database credentials.
// The application proper only consumes the resolved connection parameters.
package lakebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
)

const apiPrefix = "/api/2.0/postgres"

// ErrNotFound is returned when a control-plane resource does not exist.
var ErrNotFound = errors.New("lakebase: resource not found")

// Client talks to the Lakebase control-plane REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given workspace host using the supplied
// token source for authorization.
func NewClient(workspaceHost string, ts oauth2.TokenSource) *Client {
	base := strings.TrimSuffix(workspaceHost, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: &oauth2.Transport{Source: ts},
		},
	}
}

// NewClientFromConfig builds a client with the workspace's OAuth
// client-credentials flow.
func NewClientFromConfig(cfg config.LakebaseConfig) *Client {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     "https://" + strings.TrimPrefix(strings.TrimSuffix(cfg.WorkspaceHost, "/"), "https://") + "/oidc/v1/token",
		Scopes:       []string{"all-apis"},
	}
	return NewClient(cfg.WorkspaceHost, cc.TokenSource(context.Background()))
}

// Project is a Lakebase project resource.
type Project struct {
	Name string      `json:"name"`
	Spec ProjectSpec `json:"spec"`
}

type ProjectSpec struct {
	PGVersion int `json:"pg_version"`
}

// Branch is an isolated copy of a project's data used for environment
// separation.
type Branch struct {
	Name string     `json:"name"`
	Spec BranchSpec `json:"spec"`
}

type BranchSpec struct {
	NoExpiry    bool `json:"no_expiry,omitempty"`
	IsProtected bool `json:"is_protected,omitempty"`
}

// Endpoint is the connectable compute attached to a branch.
type Endpoint struct {
	Name   string         `json:"name"`
	Spec   EndpointSpec   `json:"spec"`
	Status EndpointStatus `json:"status"`
}

type EndpointSpec struct {
	EndpointType string `json:"endpoint_type,omitempty"`
}

type EndpointStatus struct {
	Hosts EndpointHosts `json:"hosts"`
}

type EndpointHosts struct {
	Host string `json:"host"`
}

// Credential is a short-lived database token minted for an endpoint.
type Credential struct {
	Token      string    `json:"token"`
	ExpireTime time.Time `json:"expire_time"`
}

func (c *Client) do(ctx context.Context, method, path string, query string, body, out any) error {
	url := c.baseURL + apiPrefix + path
	if query != "" {
		url += "?" + query
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lakebase request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("lakebase API %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// GetProject fetches a project by resource name ("projects/{id}").
func (c *Client) GetProject(ctx context.Context, name string) (Project, error) {
	var p Project
	err := c.do(ctx, http.MethodGet, "/"+name, "", nil, &p)
	return p, err
}

// CreateProject creates a project and waits for it server-side.
func (c *Client) CreateProject(ctx context.Context, projectID string, p Project) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPost, "/projects", "project_id="+projectID, p, &out)
	return out, err
}

// GetBranch fetches a branch by resource name.
func (c *Client) GetBranch(ctx context.Context, name string) (Branch, error) {
	var b Branch
	err := c.do(ctx, http.MethodGet, "/"+name, "", nil, &b)
	return b, err
}

// CreateBranch creates a branch under the given project.
func (c *Client) CreateBranch(ctx context.Context, parent, branchID string, b Branch) (Branch, error) {
	var out Branch
	err := c.do(ctx, http.MethodPost, "/"+parent+"/branches", "branch_id="+branchID, b, &out)
	return out, err
}

// UpdateBranch patches the named branch fields. The update mask uses
// snake_case field paths.
func (c *Client) UpdateBranch(ctx context.Context, name string, b Branch, updateMask string) (Branch, error) {
	var out Branch
	err := c.do(ctx, http.MethodPatch, "/"+name, "update_mask="+updateMask, b, &out)
	return out, err
}

// GetEndpoint fetches an endpoint by resource name.
func (c *Client) GetEndpoint(ctx context.Context, name string) (Endpoint, error) {
	var e Endpoint
	err := c.do(ctx, http.MethodGet, "/"+name, "", nil, &e)
	return e, err
}

// ListEndpoints returns the endpoints on a branch.
func (c *Client) ListEndpoints(ctx context.Context, parent string) ([]Endpoint, error) {
	var wrapper struct {
		Endpoints []Endpoint `json:"endpoints"`
	}
	if err := c.do(ctx, http.MethodGet, "/"+parent+"/endpoints", "", nil, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Endpoints, nil
}

// CreateEndpoint creates an endpoint under the given branch.
func (c *Client) CreateEndpoint(ctx context.Context, parent, endpointID string, e Endpoint) (Endpoint, error) {
	var out Endpoint
	err := c.do(ctx, http.MethodPost, "/"+parent+"/endpoints", "endpoint_id="+endpointID, e, &out)
	return out, err
}

// GenerateDatabaseCredential mints a short-lived Postgres token for the
// named endpoint.
func (c *Client) GenerateDatabaseCredential(ctx context.Context, endpointName string) (Credential, error) {
	body := map[string]string{"endpoint": endpointName}
	var cred Credential
	err := c.do(ctx, http.MethodPost, "/credentials", "", body, &cred)
	return cred, err
}
