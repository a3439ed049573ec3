package lakebase

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ProvisionResult describes the environment a Provision call ended up with.
type ProvisionResult struct {
	ProjectName  string
	BranchName   string
	EndpointName string
	Host         string
	Database     string
}

// Provisioner creates Lakebase resources idempotently: every Ensure method
// returns the existing resource when it is already there.
type Provisioner struct {
	client *Client
}

func NewProvisioner(client *Client) *Provisioner {
	return &Provisioner{client: client}
}

// EnsureProject returns the project, creating it (Postgres 17) if missing.
func (p *Provisioner) EnsureProject(ctx context.Context, projectID string) (Project, error) {
	name := "projects/" + projectID
	project, err := p.client.GetProject(ctx, name)
	if err == nil {
		log.Printf("lakebase: project %s exists", name)
		return project, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Project{}, err
	}

	log.Printf("lakebase: creating project %s", name)
	project, err = p.client.CreateProject(ctx, projectID, Project{Spec: ProjectSpec{PGVersion: 17}})
	if err != nil {
		return Project{}, fmt.Errorf("create project %s: %w", name, err)
	}
	return project, nil
}

// EnsureBranch returns the branch, creating a non-expiring one if missing.
func (p *Provisioner) EnsureBranch(ctx context.Context, projectID, branchID string) (Branch, error) {
	parent := "projects/" + projectID
	name := parent + "/branches/" + branchID
	branch, err := p.client.GetBranch(ctx, name)
	if err == nil {
		log.Printf("lakebase: branch %s exists", name)
		return branch, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Branch{}, err
	}

	log.Printf("lakebase: creating branch %s", name)
	branch, err = p.client.CreateBranch(ctx, parent, branchID, Branch{Spec: BranchSpec{NoExpiry: true}})
	if err != nil {
		return Branch{}, fmt.Errorf("create branch %s: %w", name, err)
	}
	return branch, nil
}

// ProtectBranch marks a branch as protected from deletion and reset.
// Idempotent; a branch that is already protected is returned unchanged.
func (p *Provisioner) ProtectBranch(ctx context.Context, projectID, branchID string) (Branch, error) {
	name := "projects/" + projectID + "/branches/" + branchID
	branch, err := p.client.GetBranch(ctx, name)
	if err != nil {
		return Branch{}, err
	}
	if branch.Spec.IsProtected {
		log.Printf("lakebase: branch %s already protected", name)
		return branch, nil
	}

	log.Printf("lakebase: protecting branch %s", name)
	branch, err = p.client.UpdateBranch(ctx, name,
		Branch{Name: name, Spec: BranchSpec{IsProtected: true}},
		"spec.is_protected")
	if err != nil {
		return Branch{}, fmt.Errorf("protect branch %s: %w", name, err)
	}
	return branch, nil
}

// EnsureEndpoint returns the branch's endpoint, creating a read-write one if
// missing.
func (p *Provisioner) EnsureEndpoint(ctx context.Context, projectID, branchID, endpointID string) (Endpoint, error) {
	parent := "projects/" + projectID + "/branches/" + branchID
	name := parent + "/endpoints/" + endpointID
	endpoint, err := p.client.GetEndpoint(ctx, name)
	if err == nil {
		log.Printf("lakebase: endpoint %s exists", name)
		return endpoint, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Endpoint{}, err
	}

	log.Printf("lakebase: creating endpoint %s", name)
	endpoint, err = p.client.CreateEndpoint(ctx, parent, endpointID, Endpoint{
		Spec: EndpointSpec{EndpointType: "ENDPOINT_TYPE_READ_WRITE"},
	})
	if err != nil {
		return Endpoint{}, fmt.Errorf("create endpoint %s: %w", name, err)
	}
	return endpoint, nil
}

// Provision ensures project, branch and endpoint exist and returns the
// connectable result.
func (p *Provisioner) Provision(ctx context.Context, projectID, branchID, endpointID, database string) (ProvisionResult, error) {
	project, err := p.EnsureProject(ctx, projectID)
	if err != nil {
		return ProvisionResult{}, err
	}
	branch, err := p.EnsureBranch(ctx, projectID, branchID)
	if err != nil {
		return ProvisionResult{}, err
	}
	endpoint, err := p.EnsureEndpoint(ctx, projectID, branchID, endpointID)
	if err != nil {
		return ProvisionResult{}, err
	}
	return ProvisionResult{
		ProjectName:  project.Name,
		BranchName:   branch.Name,
		EndpointName: endpoint.Name,
		Host:         endpoint.Status.Hosts.Host,
		Database:     database,
	}, nil
}
