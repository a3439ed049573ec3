// Command provision creates the Lakebase project, branch and endpoint for
// the configured environment. Safe to re-run: existing resources are left
// alone. The production branch is additionally protected from deletion.
package main

import (
	"context"
	"log"
	"time"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/lakebase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.Lakebase.Configured() {
		log.Fatalf("LAKEBASE_WORKSPACE_HOST is required to provision")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	lb := cfg.Lakebase
	branch := lakebase.BranchID(lb)
	client := lakebase.NewClientFromConfig(lb)
	prov := lakebase.NewProvisioner(client)

	result, err := prov.Provision(ctx, lb.ProjectID, branch, lb.EndpointID, lb.Database)
	if err != nil {
		log.Fatalf("provision: %v", err)
	}

	if branch == "production" {
		if _, err := prov.ProtectBranch(ctx, lb.ProjectID, branch); err != nil {
			// Plan limits can make protection unavailable; not fatal.
			log.Printf("could not protect branch %s: %v", branch, err)
		}
	}

	log.Printf("provisioned: project=%s branch=%s endpoint=%s host=%s database=%s",
		result.ProjectName, result.BranchName, result.EndpointName, result.Host, result.Database)
}
