package repository

import (
	"context"
	"encoding/json"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/httpclient"
	"golang-backtest/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
)

type MockBarsProvider struct {
	mock.Mock
	name string
}

func (m *MockBarsProvider) Name() string {
	return m.name
}

func (m *MockBarsProvider) GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error) {
	args := m.Called(ctx, param)
	bars, _ := args.Get(0).([]dto.OHLCV)
	return bars, args.Error(1)
}

type MockFundamentalsProvider struct {
	mock.Mock
}

func (m *MockFundamentalsProvider) FetchProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	args := m.Called(ctx, symbol)
	profile, _ := args.Get(0).(*dto.CompanyProfile)
	return profile, args.Error(1)
}

func (m *MockFundamentalsProvider) FetchQuarterlyMetrics(ctx context.Context, symbol string) ([]dto.FundamentalData, error) {
	args := m.Called(ctx, symbol)
	records, _ := args.Get(0).([]dto.FundamentalData)
	return records, args.Error(1)
}

// fakeHTTPClient answers every GET with a canned JSON body.
type fakeHTTPClient struct {
	status  int
	body    string
	queries []map[string]string
	paths   []string
}

func (f *fakeHTTPClient) Get(_ context.Context, endpoint string, queryParams map[string]string, _ map[string]string, result interface{}) (*httpclient.BaseResponse, error) {
	f.paths = append(f.paths, endpoint)
	f.queries = append(f.queries, queryParams)
	if f.status == 200 && result != nil {
		if err := json.Unmarshal([]byte(f.body), result); err != nil {
			return nil, err
		}
	}
	return &httpclient.BaseResponse{StatusCode: f.status, Body: []byte(f.body)}, nil
}

func testRecorder() *metrics.Recorder {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}
