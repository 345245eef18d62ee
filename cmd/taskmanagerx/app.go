package main

import (
	"context"
	"database/sql"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/config"
	"github.com/Joseda-hg/taskmanagerx/internal/db"
	"github.com/Joseda-hg/taskmanagerx/internal/logger"
	"github.com/Joseda-hg/taskmanagerx/internal/notify"
	"github.com/Joseda-hg/taskmanagerx/internal/push"
	"github.com/Joseda-hg/taskmanagerx/internal/taskmanager"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	sqlDB    *sql.DB
	store    *db.Store
	platform *notify.LocalPlatform
	manager  *taskmanager.Manager
}

// openApp loads configuration, opens the store and loads the manager.
// logToFile keeps log output off the terminal while the dashboard owns it.
func openApp(ctx context.Context, opts *options, logToFile bool) (*app, error) {
	cfgPath := opts.configPath
	if cfgPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = path
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "taskmanagerx.db")
	}
	if opts.web {
		cfg.WebEnabled = true
	}
	if opts.port != 0 {
		cfg.WebPort = opts.port
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	cfg, err = config.ApplyEnv(cfg)
	if err != nil {
		return nil, err
	}

	logPath := cfg.LogPath
	if logToFile && logPath == "" {
		logPath = filepath.Join(filepath.Dir(cfgPath), "taskmanagerx.log")
	}
	if logPath != "" {
		if err := config.EnsureDir(logPath); err != nil {
			return nil, err
		}
	}
	log, err := logger.New(cfg.LogLevel, logPath)
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	store := db.NewStore(sqlDB)

	platform := notify.NewLocalPlatform(store, notify.LocalConfig{
		Interval:  cfg.Notifications.Interval(),
		Deliverer: buildDeliverer(ctx, cfg.Notifications, log),
		Logger:    log,
	})
	if !cfg.Notifications.Enabled {
		platform.Deny()
	}

	scheduler := notify.NewScheduler(platform, notify.WithLogger(log))
	if !scheduler.RequestPermissions(ctx) {
		log.Warn("notifications disabled, reminders will not be scheduled")
	}

	manager := taskmanager.New(store, scheduler, taskmanager.WithLogger(log))
	if err := manager.Load(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		sqlDB:    sqlDB,
		store:    store,
		platform: platform,
		manager:  manager,
	}, nil
}

func buildDeliverer(ctx context.Context, cfg config.Notifications, log *zap.Logger) notify.Deliverer {
	local := notify.LogDeliverer{Logger: log}
	if !cfg.PushEnabled() {
		return local
	}
	remote, err := push.NewDeliverer(ctx, cfg.FirebaseCredentials, cfg.DeviceTokens, log)
	if err != nil {
		log.Warn("push notifications unavailable", zap.Error(err))
		return local
	}
	return notify.MultiDeliverer{local, remote}
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.sqlDB.Close()
}
