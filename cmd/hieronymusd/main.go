// Command hieronymusd runs the standalone server: load config, generate the
// login-phase RSA keypair, start the Server actor, then accept connections
// until killed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymodder/hieronymus/internal/auth"
	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/listener"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

const version = "1.17.1-hieronymus"

func main() {
	showVersion := flag.Bool("version", false, "print the server version and exit")
	configPath := flag.String("config", config.DefaultPath, "path to server.yaml")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hieronymusd %s (protocol %d)\n", version, server.Current.Protocol)
		return
	}

	cfg, err := config.ReadFrom(*configPath)
	if err != nil {
		log.Fatalf("hieronymusd: loading config: %v", err)
	}

	keys, err := auth.NewKeys()
	if err != nil {
		log.Fatalf("hieronymusd: generating login keypair: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg)
	go srv.Run(ctx)

	l, err := listener.Listen(cfg.ListenAddr, keys, cfg, srv.Handle())
	if err != nil {
		log.Fatalf("hieronymusd: listening on %s: %v", cfg.ListenAddr, err)
	}
	defer l.Close()

	log.Printf("hieronymusd: listening on %s (online_mode=%v, protocol=%d)", cfg.ListenAddr, cfg.OnlineMode, server.Current.Protocol)

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	if err := l.Serve(); err != nil {
		log.Printf("hieronymusd: listener stopped: %v", err)
	}
}
