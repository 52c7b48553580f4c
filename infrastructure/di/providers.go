package di

import (
	"context"

	"ideaboard/application/controller"
	"ideaboard/application/ports"
	"ideaboard/application/store"
	domainconfig "ideaboard/domain/config"
	"ideaboard/domain/core/valueobjects"
	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/expansion"
	"ideaboard/infrastructure/persistence"
	"ideaboard/pkg/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogLevel creates the runtime-adjustable log level
func ProvideLogLevel(cfg *config.Config) zap.AtomicLevel {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(level)
}

// ProvideLogger creates a new logger instance. Lambda always gets JSON output.
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() || cfg.IsLambda {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

// ProvideConfigWatcher reloads the config file and applies log level changes
func ProvideConfigWatcher(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) (*config.Watcher, func(), error) {
	watcher, err := config.NewWatcher(cfg, config.DefaultDebounce, logger)
	if err != nil {
		return nil, nil, err
	}

	watcher.OnChange(func(updated *config.Config) {
		newLevel, err := zapcore.ParseLevel(updated.LogLevel)
		if err != nil {
			logger.Warn("Ignoring invalid log level", zap.String("level", updated.LogLevel))
			return
		}
		level.SetLevel(newLevel)
	})

	return watcher, watcher.Stop, nil
}

// ProvideMetrics creates the metrics collector, or nil when disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("ideaboard")
}

// ProvideDomainConfig returns the canvas rules
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideKeyValueStore opens the configured storage backend
func ProvideKeyValueStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.KeyValueStore, func(), error) {
	kv, err := persistence.NewKeyValueStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := kv.Close(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
	return kv, cleanup, nil
}

// ProvideNodePersistence wraps the store in the single-record adapter
func ProvideNodePersistence(
	kv ports.KeyValueStore,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Collector,
) ports.NodePersistence {
	return persistence.NewAdapter(kv, logger,
		persistence.WithKey(domainCfg.StorageKey),
		persistence.WithMetrics(metrics),
	)
}

// ProvideNodeStore creates the node store and loads the saved workspace
func ProvideNodeStore(
	ctx context.Context,
	nodePersistence ports.NodePersistence,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Collector,
) *store.NodeStore {
	nodeStore := store.NewNodeStore(nodePersistence, logger,
		store.WithDomainConfig(domainCfg),
		store.WithMetrics(metrics),
	)
	nodeStore.Load(ctx)
	return nodeStore
}

// ProvideLocalGenerator creates the local suggestion source
func ProvideLocalGenerator() *expansion.LocalGenerator {
	return expansion.NewLocalGenerator(valueobjects.NewTimeSource())
}

// ProvideExpander creates the remote expansion client. The local generator
// is layered underneath only when EXPANSION_FALLBACK is set.
func ProvideExpander(cfg *config.Config, local *expansion.LocalGenerator, logger *zap.Logger) ports.Expander {
	clientCfg := expansion.DefaultClientConfig(cfg.EffectiveExpansionURL())
	clientCfg.Timeout = cfg.ExpansionTimeout
	client := expansion.NewClient(clientCfg, nil, logger)

	if cfg.ExpansionFallback {
		logger.Info("Expansion fallback enabled")
		return expansion.WithFallback(client, local, logger)
	}
	return client
}

// ProvideNoticeLog creates the notice ring served to clients
func ProvideNoticeLog() *controller.NoticeLog {
	return controller.NewNoticeLog(controller.DefaultNoticeCapacity)
}

// ProvideNotifier sends notices to the log and to the notice ring
func ProvideNotifier(notices *controller.NoticeLog, logger *zap.Logger) ports.Notifier {
	return controller.MultiNotifier{notices, controller.NewLogNotifier(logger)}
}

// ProvideGraphController creates the orchestrator
func ProvideGraphController(
	nodeStore *store.NodeStore,
	expander ports.Expander,
	notifier ports.Notifier,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Collector,
) *controller.GraphController {
	return controller.NewGraphController(nodeStore, expander, notifier, domainCfg, logger, metrics)
}
