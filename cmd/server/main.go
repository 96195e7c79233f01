package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiodat/feelbot/internal/api"
	"github.com/shiodat/feelbot/internal/config"
	"github.com/shiodat/feelbot/internal/notifier"
)

func main() {
	configPath := flag.String("config", "", "config file path (auto-discovered when empty)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	config.LoadEnv()
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatalf("load credentials: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath != "" {
			log.Fatalf("load config: %v", err)
		}
		// No config file anywhere; run on defaults.
		cfg = config.Default()
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	slackNotifier := notifier.NewSlackNotifier(creds)
	server := api.New(cfg, creds, slackNotifier)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.Server.Addr)
	if err := server.Listen(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
