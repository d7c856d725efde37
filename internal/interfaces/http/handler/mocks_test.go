package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	apptracking "github.com/wbpos/backend/internal/application/tracking"
	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/interfaces/http/middleware"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FetchCatalog(ctx context.Context, token, search string) ([]catalog.Product, error) {
	args := m.Called(ctx, token, search)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

type mockTracking struct {
	mock.Mock
}

func (m *mockTracking) LoadConfig(ctx context.Context) (*tracking.Config, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*tracking.Config)
	return cfg, args.Error(1)
}

func (m *mockTracking) SaveConfig(ctx context.Context, cmd apptracking.SaveConfigCommand) (*tracking.Config, error) {
	args := m.Called(ctx, cmd)
	cfg, _ := args.Get(0).(*tracking.Config)
	return cfg, args.Error(1)
}

func (m *mockTracking) RunCheck(ctx context.Context, cmd apptracking.RunCheckCommand) (*apptracking.CheckResult, error) {
	args := m.Called(ctx, cmd)
	result, _ := args.Get(0).(*apptracking.CheckResult)
	return result, args.Error(1)
}

func (m *mockTracking) Table(ctx context.Context) (*apptracking.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*apptracking.Table)
	return table, args.Error(1)
}

func (m *mockTracking) IsCheckRunning() bool {
	return m.Called().Bool(0)
}

type mockSampler struct {
	mock.Mock
}

func (m *mockSampler) Sample(ctx context.Context, req tracking.SampleRequest) (tracking.Observations, error) {
	args := m.Called(ctx, req)
	obs, _ := args.Get(0).(tracking.Observations)
	return obs, args.Error(1)
}

type mockPinger struct {
	err error
}

func (p mockPinger) Ping(context.Context) error { return p.err }

var (
	_ CatalogFetcher       = (*mockCatalog)(nil)
	_ TrackingService      = (*mockTracking)(nil)
	_ tracking.RankSampler = (*mockSampler)(nil)
)

// performRequest runs one request through a router with the request id
// middleware in front of handler
func performRequest(method, path string, body any, headers map[string]string, register func(r *gin.Engine)) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(middleware.RequestID())
	register(router)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func ptr[T any](v T) *T {
	return &v
}
