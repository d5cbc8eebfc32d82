//go:build wireinject
// +build wireinject

package main

import (
	"go_mock_hub/app/http_mock_app"
	"go_mock_hub/internal/domain/actor"
	"go_mock_hub/internal/domain/services"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/broadcast"
	"go_mock_hub/internal/infra/ratelimit"
	"go_mock_hub/internal/infra/repo"

	"github.com/google/wire"
)

func InitializeHub() (*Hub, error) {
	wire.Build(
		repo.Reposet,
		configs.NewTierLimits,
		ratelimit.GuardSet,
		broadcast.HubSet,
		provideActorStore,
		provideActorPublisher,
		provideServerConfig,
		provideLogReaper,
		actor.NewRegistry,
		services.NewEndpointManageService,
		http_mock_app.NewWSHandler,
		http_mock_app.NewMockHandler,
		http_mock_app.NewAdminController,
		NewHub,
	)
	return &Hub{}, nil
}
