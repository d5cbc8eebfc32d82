package repo

import (
	"go_mock_hub/internal/infra/storage"

	"github.com/google/wire"
)

var Reposet = wire.NewSet(
	NewRepoConfig,
	storage.StorageSet,
	NewEndpointRepoImpl,
)
