package httpclient

import (
	"context"
	"net/http"
	"time"

	"golang-backtest/pkg/logger"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
	log    *logger.Logger
}

// New builds a JSON client that retries transient failures (5xx, 429) twice.
func New(log *logger.Logger, baseURL string, timeout time.Duration, bearerToken string) HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError)
		})
	if bearerToken != "" {
		client.SetAuthToken(bearerToken)
	}

	return &RestyClient{client: client, log: log}
}

// GET request with optional query params
func (rc *RestyClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error) {
	req := rc.client.R().SetContext(ctx).SetResult(result)

	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}

	if headers != nil {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		rc.log.DebugContext(ctx, "HTTP GET failed",
			logger.StringField("endpoint", endpoint),
			logger.ErrorField(err),
		)
	}
	return &BaseResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}, err
}
