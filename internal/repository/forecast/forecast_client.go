// Package forecast calls the external monthly sales forecasting endpoint.
package forecast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"quixellMarket/business/sales"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"
	"quixellMarket/pkg/retry"

	"github.com/goccy/go-json"
	"github.com/pobyzaarif/goshortcute"
	"github.com/sony/gobreaker"
)

type Config struct {
	URL              string
	APIUser          string
	APIKey           string
	Timeout          time.Duration
	MaxRetries       int
	BaseBackoff      time.Duration
	BreakerTimeout   time.Duration
	BreakerMinCalls  uint32
	BreakerFailRatio float64
}

// Alerter is told when the breaker opens. Optional.
type Alerter interface {
	SendAlert(ctx context.Context, subject, message string) error
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	alerter Alerter
}

// statusError marks a response that is worth retrying.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("forecast endpoint returned %d: %s", e.code, e.body)
}

type requestPayload struct {
	HTTPMethod string      `json:"httpMethod"`
	Body       requestBody `json:"body"`
}

type requestBody struct {
	Records []float64 `json:"records"`
}

func NewClient(cfg Config, alerter Alerter) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}
	if cfg.BreakerMinCalls == 0 {
		cfg.BreakerMinCalls = 5
	}
	if cfg.BreakerFailRatio <= 0 {
		cfg.BreakerFailRatio = 0.5
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		alerter: alerter,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sales-forecast",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinCalls {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailRatio
		},
		OnStateChange: c.onStateChange,
	})

	return c
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	BreakerState.Set(float64(stateValue(to)))

	if to != gobreaker.StateOpen || c.alerter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msg := fmt.Sprintf("circuit breaker %s opened after repeated forecast failures", name)
		if err := c.alerter.SendAlert(ctx, "Forecast endpoint unavailable", msg); err != nil {
			logger.Warn("failed to send alert", "breaker", name, "error", err)
		}
	}()
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Predict asks the endpoint for next month's sales given the trailing
// monthly totals.
func (c *Client) Predict(ctx context.Context, records []float64) (sales.Prediction, error) {
	if records == nil {
		records = []float64{}
	}
	payload, err := json.Marshal(requestPayload{HTTPMethod: http.MethodPost, Body: requestBody{Records: records}})
	if err != nil {
		return sales.Prediction{}, fmt.Errorf("failed to marshal forecast payload: %w", err)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.callWithRetry(ctx, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			UpstreamFailures.WithLabelValues("breaker_open").Inc()
			return sales.Prediction{}, apperror.Upstream("forecast service unavailable", err)
		}
		return sales.Prediction{}, err
	}

	return res.(sales.Prediction), nil
}

func (c *Client) callWithRetry(ctx context.Context, payload []byte) (sales.Prediction, error) {
	policy := retry.Policy{MaxRetries: c.cfg.MaxRetries, BaseBackoff: c.cfg.BaseBackoff}

	var pred sales.Prediction
	err := retry.Do(ctx, policy, retryable, func(ctx context.Context) error {
		p, err := c.call(ctx, payload)
		if err != nil {
			logger.Warn("forecast call failed", "error", err)
			return err
		}
		pred = p
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return sales.Prediction{}, apperror.Upstream("forecast request cancelled", err)
		}
		return sales.Prediction{}, apperror.Upstream("forecast service failed", err)
	}

	return pred, nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	// decoding problems will not fix themselves
	var de *decodeError
	return !errors.As(err, &de)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid forecast response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) call(ctx context.Context, payload []byte) (sales.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return sales.Prediction{}, &decodeError{err: err}
	}
	req.Header.Add("Content-Type", "application/json")
	if c.cfg.APIUser != "" || c.cfg.APIKey != "" {
		req.Header.Add("Authorization", "Basic "+goshortcute.StringtoBase64Encode(c.cfg.APIUser+":"+c.cfg.APIKey))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		UpstreamFailures.WithLabelValues("transport").Inc()
		return sales.Prediction{}, fmt.Errorf("failed to call forecast endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		UpstreamFailures.WithLabelValues("transport").Inc()
		return sales.Prediction{}, fmt.Errorf("failed to read forecast response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		UpstreamFailures.WithLabelValues("status").Inc()
		return sales.Prediction{}, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		UpstreamFailures.WithLabelValues("decode").Inc()
		return sales.Prediction{}, &decodeError{err: err}
	}

	var parsed struct {
		Data *struct {
			Sales *float64 `json:"sales"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		UpstreamFailures.WithLabelValues("decode").Inc()
		return sales.Prediction{}, &decodeError{err: err}
	}
	if parsed.Data == nil || parsed.Data.Sales == nil {
		UpstreamFailures.WithLabelValues("decode").Inc()
		return sales.Prediction{}, &decodeError{err: errors.New("missing data.sales")}
	}

	return sales.Prediction{Sales: *parsed.Data.Sales, Raw: raw}, nil
}
