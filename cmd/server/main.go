package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"cardroom-server/internal/config"
	"cardroom-server/internal/jwt"
	"cardroom-server/internal/mux"
	"cardroom-server/pkg/betting"
	"cardroom-server/pkg/db"
	"cardroom-server/pkg/economy"
	"cardroom-server/pkg/room"

	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	jwt.LoadKeys()

	cfg := config.Instance()
	policy := betting.Policy{
		MinBet:     cfg.Betting.MinBet,
		RaiseCap:   cfg.Betting.RaiseCap,
		TableLimit: cfg.Betting.TableLimit,
	}

	registry := room.NewRegistry(policy, fundsProvider(cfg), roundStore(cfg), eventPublisher(cfg))
	registry.Start()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, registry))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func fundsProvider(cfg config.Config) economy.Provider {
	if cfg.PGDSN == "" {
		logrus.Warn("no postgres DSN configured; using in-memory funds")
		return economy.NewMemory(0)
	}

	// run the db migrations
	db.Migrate()
	return economy.NewPostgres(db.Instance())
}

func roundStore(cfg config.Config) room.RoundStore {
	if cfg.Redis.Addr == "" {
		logrus.Warn("no redis address configured; rounds will not survive a restart")
		return room.NopStore{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Fatal("could not connect to redis")
	}

	ttl := time.Duration(cfg.Redis.SnapshotTTLMinutes) * time.Minute
	return room.NewRedisStore(rdb, ttl)
}

func eventPublisher(cfg config.Config) room.EventPublisher {
	if cfg.Kafka.Brokers == "" {
		logrus.Warn("no kafka brokers configured; round events will not be published")
		return room.NopPublisher{}
	}

	return room.NewKafkaPublisher(room.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
