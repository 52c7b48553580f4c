package di

import (
	"ideaboard/application/controller"
	"ideaboard/application/ports"
	"ideaboard/application/store"
	domainconfig "ideaboard/domain/config"
	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/expansion"
	"ideaboard/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	LogLevel      zap.AtomicLevel
	Watcher       *config.Watcher
	Metrics       *observability.Collector
	DomainConfig  *domainconfig.DomainConfig
	Storage       ports.KeyValueStore
	NodeStore     *store.NodeStore
	LocalExpander *expansion.LocalGenerator
	Expander      ports.Expander
	Notices       *controller.NoticeLog
	Controller    *controller.GraphController
}
