package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/cache"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/config"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/jsonapi"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, credentials and archive status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()

	e, err := loadEnv()
	if err != nil {
		exitRuntime(err)
	}

	path := configPath
	if path == "" {
		if path, err = config.FilePath(); err != nil {
			exitRuntime(err)
		}
	}
	fmt.Printf("Config:    %s\n", path)
	fmt.Printf("Backend:   %s\n", e.cfg.API.BaseURL)

	creds := e.credentials()
	switch {
	case creds.Token != "":
		fmt.Println("Auth:      static token")
	case creds.ClientID != "":
		fmt.Printf("Auth:      client credentials (%s)\n", creds.ClientID)
		if tok, err := jsonapi.LoadToken(creds.TokenFile); err == nil && tok.Valid() {
			fmt.Printf("Token:     cached, expires %s\n", tok.Expiry.In(e.loc).Format("2006-01-02 15:04"))
		} else {
			fmt.Println("Token:     none cached")
		}
	default:
		fmt.Println("Auth:      none")
	}

	ws := e.cfg.Defaults.Workspace
	if ws == "" {
		ws = "(not set)"
	}
	fmt.Printf("Workspace: %s\n", ws)
	fmt.Printf("Timezone:  %s\n", e.loc)

	base, err := storage.BaseDir()
	if err != nil {
		exitRuntime(err)
	}
	df, err := storage.LoadDay(base, now)
	if err != nil {
		exitRuntime(err)
	}
	fmt.Printf("Today:     %d report(s) archived.\n", len(df.Snapshots))

	if e.cfg.Cache.RedisAddr == "" {
		fmt.Println("Cache:     disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := cache.Open(e.cfg.Cache.RedisAddr, e.cfg.Cache.TTL())
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		fmt.Printf("Cache:     %s (unreachable: %v)\n", e.cfg.Cache.RedisAddr, err)
		return nil
	}
	fmt.Printf("Cache:     %s (ok)\n", e.cfg.Cache.RedisAddr)
	return nil
}
