package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bw-isys-53203/Module3/internal/common/database"
	"github.com/bw-isys-53203/Module3/internal/common/logger"
	commonmqtt "github.com/bw-isys-53203/Module3/internal/common/mqtt"
	commonredis "github.com/bw-isys-53203/Module3/internal/common/redis"
	"github.com/bw-isys-53203/Module3/internal/config"
	httpapi "github.com/bw-isys-53203/Module3/internal/http"
	sleepmqtt "github.com/bw-isys-53203/Module3/internal/mqtt"
	"github.com/bw-isys-53203/Module3/internal/repository"
	"github.com/bw-isys-53203/Module3/internal/service"
	"github.com/bw-isys-53203/Module3/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "sleeplog")
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Redis：redis 存储或 stream 通知时才需要
	var redisClient *commonredis.Client
	if cfg.StorageBackend == config.StorageRedis || cfg.Notify.Mode == config.NotifyStream {
		c, err := commonredis.Connect(context.Background(), &cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			redisClient = c
		}
	}

	records, prefs, db := openStorage(cfg, redisClient, log)

	// MQTT（可选）：远程点击输入 + 刷新通知
	var mqttClient *commonmqtt.Client
	if cfg.MQTT.Enabled {
		if c, err := commonmqtt.NewClient(&cfg.MQTT.MQTTConfig, log); err == nil {
			mqttClient = c
			log.Info("MQTT connected", zap.String("broker", cfg.MQTT.Broker))
		} else {
			log.Warn("MQTT enabled but connection failed, remote input disabled", zap.Error(err))
		}
	}

	var notifier service.Notifier = service.NopNotifier{}
	switch cfg.Notify.Mode {
	case config.NotifyMQTT:
		if mqttClient != nil {
			notifier = service.NewMQTTNotifier(mqttClient, cfg.MQTT.RefreshTopic, mqttClient.QoS())
		} else {
			log.Warn("NOTIFY_MODE=mqtt but MQTT is not connected, notifications disabled")
		}
	case config.NotifyStream:
		if redisClient != nil {
			notifier = service.NewStreamNotifier(redisClient, cfg.Notify.Stream)
		} else {
			log.Warn("NOTIFY_MODE=stream but Redis is not connected, notifications disabled")
		}
	}

	ctl := service.NewController(records, prefs, log, service.WithNotifier(notifier))

	if mqttClient != nil {
		cmdHandler := sleepmqtt.NewToggleCommandHandler(ctl, cfg.MQTT.CommandTopic, log)
		if err := cmdHandler.Start(mqttClient, mqttClient.QoS()); err != nil {
			log.Warn("failed to start MQTT toggle command handler", zap.Error(err))
		}
	}

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterSleepLogRoutes(httpapi.NewSleepLogHandler(ctl, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("sleeplog started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage", cfg.StorageBackend),
		zap.String("notify", cfg.Notify.Mode),
	)
	if err := srv.Run(ctx); err != nil {
		log.Error("HTTP server stopped", zap.Error(err))
	}

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = database.Close(db)
}

// openStorage 按 STORAGE_BACKEND 选择存储；连接失败时回退到内存
func openStorage(cfg *config.Config, redisClient *commonredis.Client, log *zap.Logger) (repository.SleepRecordsRepository, repository.PreferencesRepository, *sql.DB) {
	mem := store.NewMemoryKV()

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Warn("Postgres connection failed, falling back to memory", zap.Error(err))
			break
		}
		repo := repository.NewPostgresSleepRecordsRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Warn("failed to ensure schema, falling back to memory", zap.Error(err))
			_ = db.Close()
			break
		}
		log.Info("Postgres storage enabled", zap.String("host", cfg.Database.Host))
		// 偏好仍然保存在 KV 中
		prefsKV := store.KV(mem)
		if redisClient != nil {
			prefsKV = store.NewRedisKV(redisClient)
		}
		return repo, repository.NewKVPreferencesRepository(prefsKV), db

	case config.StorageRedis:
		if redisClient == nil {
			log.Warn("Redis storage requested but Redis is not connected, falling back to memory")
			break
		}
		kv := store.NewRedisKV(redisClient)
		log.Info("Redis storage enabled", zap.String("addr", cfg.Redis.Addr))
		return repository.NewKVSleepRecordsRepository(kv), repository.NewKVPreferencesRepository(kv), nil

	case config.StorageMemory:
	default:
		log.Warn("unknown STORAGE_BACKEND, using memory", zap.String("backend", cfg.StorageBackend))
	}

	return repository.NewKVSleepRecordsRepository(mem), repository.NewKVPreferencesRepository(mem), nil
}
