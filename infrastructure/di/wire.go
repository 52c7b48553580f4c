//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"ideaboard/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideConfigWatcher,
	ProvideMetrics,
	ProvideDomainConfig,
	ProvideKeyValueStore,
	ProvideNodePersistence,
	ProvideNodeStore,
	ProvideLocalGenerator,
	ProvideExpander,
	ProvideNoticeLog,
	ProvideNotifier,
	ProvideGraphController,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
