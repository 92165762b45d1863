// Command devtoken mints an HS256 bearer token signed with JWT_SECRET for
// local runs against the interaction service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ndsf/awesome-douban/backend/go-services/internal/config"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/tokens"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
	flag "github.com/spf13/pflag"
)

func main() {
	username := flag.StringP("user", "u", "", "username carried in the preferred_username claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_ACCESS_TOKEN_TTL minutes)")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken --user <name> [--ttl 1h]")
		os.Exit(2)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *ttl <= 0 {
		*ttl = cfg.JWT.AccessTokenTTL
	}
	if *ttl <= 0 {
		*ttl = time.Hour
	}
	tok, err := tokens.GenerateAccessToken(cfg, *username, *ttl)
	if err != nil {
		logger.Fatalf("mint token: %v", err)
	}
	fmt.Println(tok)
}
