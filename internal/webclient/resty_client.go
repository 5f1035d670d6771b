package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/seoaudit/internal/logging"
	"gopkg.in/resty.v1"
)

// RestyClient is a resty backed implementation of WebClient.
type RestyClient struct {
	client  *resty.Client
	maxBody int64
	logger  logging.Logger
}

func NewRestyClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*RestyClient, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout()}
	}

	client := resty.NewWithClient(httpClient)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(BackendResty)})
	componentLogger.Debug("created resty webclient",
		logging.Field{Key: "timeout", Value: httpClient.Timeout.String()})

	return &RestyClient{client: client, maxBody: cfg.maxBody(), logger: componentLogger}, nil
}

func (rc *RestyClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	r := rc.client.R().SetContext(ctx)
	for k, vs := range req.Headers {
		for _, v := range vs {
			r.SetHeader(k, v)
		}
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	rc.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("resty execute: %w", err)
	}
	// resty buffers the whole body, so the cap is checked after the fact.
	if int64(len(resp.Body())) > rc.maxBody {
		return nil, fmt.Errorf("%s %s: %w (limit %d bytes)", method, req.URL, ErrBodyTooLarge, rc.maxBody)
	}
	rc.logger.Debug("http response",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL},
		logging.Field{Key: "status", Value: resp.StatusCode()},
		logging.Field{Key: "duration_ms", Value: resp.Time().Milliseconds()})

	return &Response{
		Request:    req,
		Body:       resp.Body(),
		Headers:    resp.Header(),
		StatusCode: resp.StatusCode(),
		FetchedAt:  time.Now(),
	}, nil
}

func (rc *RestyClient) Close() error {
	return nil
}
