package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ts4z/ggsc/config"
	"github.com/ts4z/ggsc/convert"
	"github.com/ts4z/ggsc/dbcache"
	"github.com/ts4z/ggsc/password"
	"github.com/ts4z/ggsc/webapp"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backing, err := openStorage(ctx, "")
	if err != nil {
		return err
	}
	storage := dbcache.NewStructureStorage(config.CacheSize(), backing)
	defer storage.Close()

	app, err := webapp.New(ctx, &webapp.Config{
		Converter:      convert.NewConverter(storage, clock, config.DefaultMode()),
		Storage:        storage,
		Clock:          clock,
		AllowedOrigins: config.AllowedOrigins(),
		CookieHashKey:  config.CookieHashKey(),
		CookieBlockKey: config.CookieBlockKey(),
		PrefsMaxAge:    config.PrefsMaxAge(),
		SecureCookies:  config.SecureCookies(),
		PasswordHash:   config.PasswordHash(),
		DefaultMode:    config.DefaultMode(),
	})
	if err != nil {
		return fmt.Errorf("can't configure web app: %w", err)
	}
	return app.Serve(ctx, config.ListenAddress())
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var pw string
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
		pwBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		pw = string(pwBytes)
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		return fmt.Errorf("password is required")
	}
	fmt.Fprintln(cmd.OutOrStdout(), password.Hash(pw))
	return nil
}
