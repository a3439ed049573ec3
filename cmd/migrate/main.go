// Command migrate applies the embedded goose migrations.
//
// Usage: migrate [up|down|status]
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/lakebase"
	"github.com/jtaylorisbell/lakebase-todo-app/migrations"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dsn, err := resolveDSN(cfg)
	if err != nil {
		log.Fatalf("resolve dsn: %v", err)
	}

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)

	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	default:
		log.Fatalf("unknown command %q (want up, down or status)", command)
	}
	if err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
}

// resolveDSN returns PG_DSN when set, otherwise resolves the connection
// through the Lakebase control plane with a fresh credential. Migrations are
// short-lived, so a single token is enough.
func resolveDSN(cfg config.Config) (string, error) {
	if cfg.PG.DSN != "" {
		return cfg.PG.DSN, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := lakebase.NewClientFromConfig(cfg.Lakebase)
	spec, creds, err := lakebase.Resolve(ctx, client, cfg.Lakebase)
	if err != nil {
		return "", err
	}
	token, err := creds.Token(ctx)
	if err != nil {
		return "", err
	}
	return lakebase.DSN(spec, token), nil
}
