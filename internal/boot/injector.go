//go:build wireinject
// +build wireinject

package boot

import (
	"github.com/google/wire"
)

func InitApp(configPath string) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}

func InitWorker(configPath string) (*Worker, error) {
	wire.Build(WorkerSet)
	return nil, nil
}

func InitMigrator(configPath string) (*Migrator, error) {
	wire.Build(MigratorSet)
	return nil, nil
}
