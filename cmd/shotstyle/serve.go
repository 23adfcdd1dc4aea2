package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"strconv"

	"github.com/eringen/shotstyle"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", shotstyle.EnvOr("SHOTSTYLE_ADDR", ":3000"), "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := serveConfig(*addr)
	if err != nil {
		return err
	}
	app := shotstyle.New(cfg)
	defer app.Close()

	fmt.Printf("Listening on %s\n", cfg.Addr)
	return app.Start()
}

// serveConfig builds the server config from the environment.
func serveConfig(addr string) (shotstyle.Config, error) {
	cfg := shotstyle.Config{
		Addr:            addr,
		SessionSecret:   shotstyle.EnvOr("SHOTSTYLE_SESSION_SECRET", ""),
		StyleFile:       shotstyle.EnvOr("SHOTSTYLE_STYLE", ""),
		CookieSecure:    envBool("SHOTSTYLE_COOKIE_SECURE"),
		DisableDragDrop: envBool("SHOTSTYLE_NO_DRAGDROP"),
	}
	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return cfg, err
		}
		logger.Warn("SHOTSTYLE_SESSION_SECRET is not set; sessions end when the server restarts")
		cfg.SessionSecret = secret
	}
	return cfg, nil
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(shotstyle.EnvOr(key, "false"))
	return v
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
