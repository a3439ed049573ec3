package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/lakebase"
	"github.com/jtaylorisbell/lakebase-todo-app/migrations"
)

type App struct {
	cfg    config.Config
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	db, err := newPostgres(cfg)
	if err != nil {
		return nil, err
	}
	a.db = db

	if cfg.Redis.Addr != "" {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.redis = rdb
	} else {
		log.Printf("redis not configured, list cache disabled")
	}

	// Schema evolution belongs to cmd/migrate; a stale database only
	// produces a warning here.
	checkMigrations(a.db)

	a.router = newRouter(cfg, a.db, a.redis)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

func newPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	var poolCfg *pgxpool.Config
	var err error

	if cfg.PG.DSN != "" {
		poolCfg, err = pgxpool.ParseConfig(cfg.PG.DSN)
		if err != nil {
			return nil, fmt.Errorf("pg parse config: %w", err)
		}
	} else {
		poolCfg, err = lakebasePoolConfig(cfg.Lakebase)
		if err != nil {
			return nil, err
		}
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

// lakebasePoolConfig resolves the endpoint through the control plane and
// injects a fresh OAuth token into every new connection, so the pool keeps
// working across token rotations.
func lakebasePoolConfig(lb config.LakebaseConfig) (*pgxpool.Config, error) {
	client := lakebase.NewClientFromConfig(lb)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	spec, creds, err := lakebase.Resolve(ctx, client, lb)
	if err != nil {
		return nil, fmt.Errorf("lakebase resolve: %w", err)
	}
	log.Printf("lakebase endpoint resolved: host=%s database=%s user=%s", spec.Host, spec.Database, spec.User)

	poolCfg, err := pgxpool.ParseConfig(lakebase.DSN(spec, ""))
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	poolCfg.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		token, err := creds.Token(ctx)
		if err != nil {
			return err
		}
		cc.Password = token
		return nil
	}
	return poolCfg, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// checkMigrations compares the goose version table against the embedded
// head and warns when they disagree. Never fatal: the store owner may still
// be rolling migrations out.
func checkMigrations(db *pgxpool.Pool) {
	head, err := migrations.Head()
	if err != nil {
		log.Printf("migration check failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var current int64
	err = db.QueryRow(ctx,
		`SELECT version_id FROM goose_db_version ORDER BY id DESC LIMIT 1`,
	).Scan(&current)
	if err != nil {
		log.Printf("migrations not initialized (run 'go run ./cmd/migrate up'): %v", err)
		return
	}
	if current != head {
		log.Printf("migrations pending: current=%d head=%d (run 'go run ./cmd/migrate up')", current, head)
		return
	}
	log.Printf("migrations up to date: version=%d", current)
}

func newRouter(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Forwarded-Email", "X-Forwarded-Preferred-Username"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, db, rdb)
	return r
}
