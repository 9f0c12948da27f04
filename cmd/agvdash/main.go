package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agvdash/channel"
	"agvdash/channel/kafkaconn"
	"agvdash/channel/mqttconn"
	"agvdash/channel/redisconn"
	"agvdash/channel/wsconn"
	"agvdash/config"
	"agvdash/engine"
	"agvdash/restapi"
	"agvdash/store"
	"agvdash/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "agvdash.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("agvdash", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database (operator accounts only)
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("agvdash: database open (%s)", cfg.Database.Driver)

	// Fleet REST API
	rest := restapi.NewClient(cfg.Backend.APIURL, cfg.Backend.Token, cfg.Backend.Timeout)
	log.Printf("agvdash: fleet api %s", rest.BaseURL())

	// Live channel
	transport, err := newTransport(cfg)
	if err != nil {
		log.Fatalf("channel: %v", err)
	}
	log.Printf("agvdash: live channel via %s", transport.Name())

	// Engine
	eng := engine.New(engine.Config{
		AppConfig: cfg,
		Backend:   rest,
		Transport: transport,
	})
	eng.Start(context.Background())
	defer eng.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng, db, rest)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("agvdash: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("agvdash: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("agvdash: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("agvdash: stopped")
}

func newTransport(cfg *config.Config) (channel.Transport, error) {
	switch cfg.Channel.Transport {
	case "websocket", "":
		return wsconn.New(cfg.Backend.ChannelURL), nil
	case "mqtt":
		return mqttconn.New(cfg.Channel.MQTT), nil
	case "kafka":
		return kafkaconn.New(cfg.Channel.Kafka), nil
	case "redis":
		return redisconn.New(cfg.Channel.Redis), nil
	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Channel.Transport)
	}
}
