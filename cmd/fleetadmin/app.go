package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/carform"
	"github.com/ukydev/fleet-admin/internal/config"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/events"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
)

// app is everything a command needs, wired once per invocation.
type app struct {
	cfg config.Config
	log *logrus.Logger

	session *auth.Session
	client  *gateway.Client
	broker  mqtt.Client
	redis   *redis.Client
	mongo   *mongo.Client
	auth    *handlers.AuthHandler

	previewDir string
}

func newApp(cfg config.Config, log *logrus.Logger) *app {
	return &app{cfg: cfg, log: log}
}

func (a *app) open(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a.session = auth.NewSession(a.cfg.SessionFile)
	if err := a.session.Load(); err != nil {
		a.log.WithError(err).Warn("Could not load session")
	}

	httpClient := &http.Client{
		Timeout:   a.cfg.RequestTimeout,
		Transport: middleware.NewAuthTransport(nil, a.session, a.log),
	}

	c := cache.New(a.newStore(ctx), cache.NewBus(), a.log)
	a.client = gateway.NewClient(a.cfg.APIBaseURL, httpClient, c, a.log)
	a.auth = handlers.NewAuthHandler(a.client, a.session, a.log)

	if a.cfg.MQTTBrokerURL != "" {
		a.startBridge(c)
	}
	return nil
}

func (a *app) newStore(ctx context.Context) cache.Store {
	switch a.cfg.CacheBackend {
	case "redis":
		return a.redisStore(ctx)
	case "mongo":
		return a.mongoStore(ctx)
	default:
		return cache.NewMemoryStore(a.cfg.CacheTTL)
	}
}

func (a *app) mongoStore(ctx context.Context) cache.Store {
	client, err := db.ConnectMongo(ctx, a.cfg.MongoURI)
	if err != nil {
		a.log.WithError(err).Warn("MongoDB unavailable, using in-memory cache")
		return cache.NewMemoryStore(a.cfg.CacheTTL)
	}
	a.mongo = client
	store := db.NewCacheStore(client.Database(a.cfg.MongoDatabase).Collection("cache"), a.cfg.CacheTTL)
	if err := store.EnsureIndexes(ctx); err != nil {
		a.log.WithError(err).Warn("Could not create cache indexes")
	}
	return store
}

func (a *app) redisStore(ctx context.Context) cache.Store {
	rdb := cache.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		a.log.WithError(err).WithField("addr", a.cfg.RedisAddr).Warn("Redis unavailable, using in-memory cache")
		_ = rdb.Close()
		return cache.NewMemoryStore(a.cfg.CacheTTL)
	}
	a.redis = rdb
	return cache.NewRedisStore(rdb, a.cfg.CacheTTL)
}

// startBridge shares invalidations with other consoles. The console works
// without it.
func (a *app) startBridge(c *cache.Cache) {
	client, err := events.Connect(a.cfg.MQTTBrokerURL, a.cfg.MQTTClientID, a.log)
	if err != nil {
		a.log.WithError(err).Warn("MQTT unavailable, invalidations stay local")
		return
	}
	bridge := events.NewBridge(client, a.cfg.MQTTTopic, c, a.log)
	if err := bridge.Start(); err != nil {
		a.log.WithError(err).Warn("MQTT bridge failed to start")
		client.Disconnect(250)
		return
	}
	a.broker = client
}

func (a *app) close() {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(context.Background())
		a.mongo = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.broker != nil {
		a.broker.Disconnect(250)
		a.broker = nil
	}
	if a.previewDir != "" {
		_ = os.RemoveAll(a.previewDir)
		a.previewDir = ""
	}
}

// requireAdmin gates every protected command.
func (a *app) requireAdmin() (*models.User, error) {
	return a.auth.Current()
}

// adminOnly is the pre-run hook of protected command groups.
func adminOnly(a *app) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd.Context()); err != nil {
			return err
		}
		if _, err := a.requireAdmin(); err != nil {
			return fmt.Errorf("%w; run fleetadmin login", err)
		}
		return nil
	}
}

// previews returns a preview store backed by a scratch directory that is
// removed when the command ends.
func (a *app) previews() (*carform.Previews, error) {
	if a.previewDir == "" {
		dir, err := os.MkdirTemp("", "fleetadmin-previews-")
		if err != nil {
			return nil, err
		}
		a.previewDir = dir
	}
	return carform.NewPreviews(filepath.Clean(a.previewDir)), nil
}
