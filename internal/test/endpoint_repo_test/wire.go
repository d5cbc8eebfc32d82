//go:build wireinject
// +build wireinject

package endpointrepotest

import (
	"go_mock_hub/internal/infra/repo"

	"github.com/google/wire"
)

type RepoTestSuite struct {
	Repo repo.EndpointRepositoryIface
}

func NewRepoTestSuite(r repo.EndpointRepositoryIface) *RepoTestSuite {
	return &RepoTestSuite{Repo: r}
}

func InitializeRepoTest() (*RepoTestSuite, error) {
	wire.Build(repo.Reposet, NewRepoTestSuite)
	return &RepoTestSuite{}, nil
}
