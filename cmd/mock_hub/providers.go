package main

import (
	"go_mock_hub/app/http_mock_app"
	"go_mock_hub/internal/domain/actor"
	"go_mock_hub/internal/domain/iface"
	"go_mock_hub/internal/domain/services"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/broadcast"
	"go_mock_hub/internal/infra/repo"
)

// Hub 进程内全部组件的汇聚点
type Hub struct {
	Config          *configs.HubConfig
	Repo            repo.EndpointRepositoryIface
	Registry        *actor.Registry
	Broadcast       *broadcast.Hub
	EndpointService iface.EndpointServiceIface
	Reaper          *services.LogReaper
	MockHandler     *http_mock_app.MockHandler
	WSHandler       *http_mock_app.WSHandler
	AdminController *http_mock_app.AdminController
}

func NewHub(
	config *configs.HubConfig,
	endpointRepo repo.EndpointRepositoryIface,
	registry *actor.Registry,
	hub *broadcast.Hub,
	endpointService iface.EndpointServiceIface,
	reaper *services.LogReaper,
	mockHandler *http_mock_app.MockHandler,
	wsHandler *http_mock_app.WSHandler,
	adminController *http_mock_app.AdminController,
) *Hub {
	return &Hub{
		Config:          config,
		Repo:            endpointRepo,
		Registry:        registry,
		Broadcast:       hub,
		EndpointService: endpointService,
		Reaper:          reaper,
		MockHandler:     mockHandler,
		WSHandler:       wsHandler,
		AdminController: adminController,
	}
}

func provideActorStore(r repo.EndpointRepositoryIface) actor.Store {
	return r
}

func provideActorPublisher(h *broadcast.Hub) actor.Publisher {
	return h
}

func provideServerConfig(c *configs.HubConfig) configs.ServerConfig {
	return c.ServerConfig
}

func provideLogReaper(r repo.EndpointRepositoryIface, limits configs.TierLimits, c *configs.HubConfig) *services.LogReaper {
	return services.NewLogReaper(r, limits, c.ServerConfig.LogReaperInterval)
}
