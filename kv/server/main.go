package server

import (
	"context"
	"net"
	"net/http"

	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/kv/memstore"
	"github.com/ridge/karst/run"
	"github.com/ridge/karst/thttp"
	"github.com/ridge/karst/tnet"
	"github.com/ridge/parallel"
	"github.com/spf13/pflag"
)

// Config contains the server parameters
type Config struct {
	Listener net.Listener
	Store    kv.Store
	Token    string // when non-empty, requests must bear it
}

// Main handles the command line and runs a KV server over a fresh in-memory
// store. Useful as a shared scratch store for development.
func Main(args []string) {
	run.Server(func(ctx context.Context) error {
		var addr, token string
		pflag.StringVar(&addr, "listen", ":10101", "address to listen on")
		pflag.StringVar(&token, "token", "", "bearer token to require (default: no authentication)")
		_ = pflag.CommandLine.Parse(args[1:])

		listener, err := tnet.Listen(addr)
		if err != nil {
			return err
		}

		return Run(ctx, Config{
			Listener: listener,
			Store:    memstore.New(),
			Token:    token,
		})
	})
}

// Run runs the server
func Run(ctx context.Context, config Config) error {
	mw := []func(http.Handler) http.Handler{thttp.StandardMiddleware}
	if config.Token != "" {
		mw = append(mw, RequireToken(config.Token))
	}
	mw = append(mw, thttp.LogBodies)
	httpServer := thttp.NewServer(config.Listener, thttp.Wrap(Handler(config.Store), mw...))

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("http", parallel.Fail, httpServer.Run)
		return nil
	})
}
