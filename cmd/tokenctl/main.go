// Command tokenctl issues and revokes service tokens for the verification
// workflow and catalogue tooling.
//
//	tokenctl issue -sub telegram-bot -scope verify
//	tokenctl revoke -token <jwt>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cinematalkiez/blackhole/internal/config"
	"github.com/cinematalkiez/blackhole/internal/logger"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/cinematalkiez/blackhole/pkg/auth"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tokenctl <issue|revoke> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	log := logger.New("warn", cfg.App.Env)
	defer log.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	defer rdb.Close()

	tokens := service.NewTokenService(auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry), rdb)

	switch os.Args[1] {
	case "issue":
		fs := flag.NewFlagSet("issue", flag.ExitOnError)
		sub := fs.String("sub", "", "token subject, e.g. telegram-bot")
		scope := fs.String("scope", auth.ScopeVerify, "verify | catalog")
		_ = fs.Parse(os.Args[2:])

		token, err := tokens.Issue(*sub, *scope)
		if err != nil {
			log.Fatal("issue failed", zap.Error(err))
		}
		fmt.Println(token)

	case "revoke":
		fs := flag.NewFlagSet("revoke", flag.ExitOnError)
		token := fs.String("token", "", "token to revoke")
		_ = fs.Parse(os.Args[2:])

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tokens.Revoke(ctx, *token); err != nil {
			log.Fatal("revoke failed", zap.Error(err))
		}
		fmt.Println("revoked")

	default:
		usage()
	}
}
