package storage

import (
	configs "go_mock_hub/internal/infra/config"

	"github.com/google/wire"
)

// StorageSet is a Wire provider set that includes all storage-related providers
var StorageSet = wire.NewSet(
	configs.LoadHubConfig,
	NewMySQLClient,
	NewMysqlEndpointStorage,
	NewRedisClient,
	NewRedisEndpointCacheImpl,
)
