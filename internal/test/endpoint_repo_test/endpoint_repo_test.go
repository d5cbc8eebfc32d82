package endpointrepotest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	"go_mock_hub/internal/infra/repo"
	"go_mock_hub/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实的 MySQL/Redis，本地跑：
//   MOCK_HUB_TEST_DB=1 MOCK_HUB_CONFIG_PATH=conf/mock_hub.local.yaml go test ./internal/test/...
func testRepo(t *testing.T) repo.EndpointRepositoryIface {
	t.Helper()
	if os.Getenv("MOCK_HUB_TEST_DB") == "" {
		t.Skip("MOCK_HUB_TEST_DB not set, skipping repo integration test")
	}
	ts, err := InitializeRepoTest()
	require.NoError(t, err)
	return ts.Repo
}

func testEndpoint() *model.Endpoint {
	return &model.Endpoint{
		ID:           uuid.NewString(),
		Path:         fmt.Sprintf("/it/%d/:id", time.Now().UnixNano()),
		ContentType:  "application/json",
		ResponseBody: `{"id": "{{id}}"}`,
		StatusCode:   200,
		RateLimit:    60,
	}
}

func TestEndpointLifecycle(t *testing.T) {
	r := testRepo(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	endpoint := testEndpoint()
	require.NoError(t, r.CreateEndpoint(ctx, endpoint))
	defer r.DeleteEndpoint(ctx, endpoint.ID)

	// 重复路径被唯一索引拒绝
	dup := testEndpoint()
	dup.Path = endpoint.Path
	err := r.CreateEndpoint(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicatePath)

	got, err := r.GetEndpoint(ctx, endpoint.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, endpoint.Path, got.Path)

	// 模式路径按具体请求路径解析
	concrete := endpoint.Path[:len(endpoint.Path)-3] + "42"
	resolved, err := r.ResolveEndpointByPath(ctx, concrete)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, endpoint.ID, resolved.ID)

	got.StatusCode = 503
	require.NoError(t, r.UpdateEndpoint(ctx, got))
	updated, err := r.GetEndpoint(ctx, endpoint.ID)
	require.NoError(t, err)
	assert.Equal(t, 503, updated.StatusCode)
}

func TestRulesInsertionOrderPreserved(t *testing.T) {
	r := testRepo(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	endpoint := testEndpoint()
	require.NoError(t, r.CreateEndpoint(ctx, endpoint))
	defer r.DeleteEndpoint(ctx, endpoint.ID)

	var ids []string
	for i := 0; i < 3; i++ {
		rule := &model.MockRule{
			ID:             uuid.NewString(),
			EndpointID:     endpoint.ID,
			Priority:       7, // 同优先级，靠插入顺序定序
			Name:           fmt.Sprintf("rule-%d", i),
			ResponseStatus: 200,
			IsActive:       true,
		}
		require.NoError(t, r.SaveRule(ctx, rule))
		ids = append(ids, rule.ID)
		time.Sleep(10 * time.Millisecond)
	}

	rules, err := r.ListRules(ctx, endpoint.ID)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	for i, rule := range rules {
		assert.Equal(t, ids[i], rule.ID)
	}
}

func TestRequestLogRoundTrip(t *testing.T) {
	r := testRepo(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	endpoint := testEndpoint()
	require.NoError(t, r.CreateEndpoint(ctx, endpoint))
	defer r.DeleteEndpoint(ctx, endpoint.ID)

	body := `{"q": 1}`
	log := &model.RequestLog{
		ID:         uuid.NewString(),
		EndpointID: endpoint.ID,
		Method:     "POST",
		Path:       "/it/orders",
		Headers:    model.HeaderMap{"x-test": "1"},
		Body:       &body,
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		PathParams: model.Params{{Name: "id", Value: "42"}},
	}
	require.NoError(t, r.AppendLog(ctx, log))

	// AppendLog 异步落库
	require.Eventually(t, func() bool {
		logs, err := r.ListHistory(ctx, endpoint.ID, 10)
		return err == nil && len(logs) == 1
	}, 5*time.Second, 100*time.Millisecond)

	logs, err := r.ListHistory(ctx, endpoint.ID, 10)
	require.NoError(t, err)
	got := logs[0]
	assert.Equal(t, log.ID, got.ID)
	assert.Equal(t, "1", got.Headers["x-test"])
	require.NotNil(t, got.Body)
	assert.Equal(t, body, *got.Body)
	v, ok := got.PathParams.Get("id")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	// 清理所有早于未来时刻的日志，当前这条会被删掉
	purged, err := r.PurgeLogsBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))
}
