package ml

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteClassifier delegates inference to an HTTP model server.
type RemoteClassifier struct {
	url  string
	rest *resty.Client
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// NewRemoteClassifier builds a client for url. No request is made until the
// first prediction.
func NewRemoteClassifier(url string, timeout time.Duration) *RemoteClassifier {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetHeader("Accept", "application/json")
	return &RemoteClassifier{url: url, rest: r}
}

func (c *RemoteClassifier) Kind() string { return KindRemote }

// URL returns the inference endpoint.
func (c *RemoteClassifier) URL() string { return c.url }

func (c *RemoteClassifier) Predict(x []float64) (int, error) {
	p, err := c.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func (c *RemoteClassifier) PredictProbability(ctx context.Context, x []float64) (Probabilities, error) {
	if err := checkInput(x); err != nil {
		return Probabilities{}, err
	}

	result := &remoteResponse{}
	errResult := &remoteResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(remoteRequest{Features: x}).
		SetResult(result).
		SetError(errResult).
		Post(c.url)
	if err != nil {
		return Probabilities{}, fmt.Errorf("remote model %s: %w", c.url, err)
	}
	if resp.IsError() {
		if errResult.Error != "" {
			return Probabilities{}, fmt.Errorf("remote model %s: HTTP %d: %s", c.url, resp.StatusCode(), errResult.Error)
		}
		return Probabilities{}, fmt.Errorf("remote model %s: HTTP %d", c.url, resp.StatusCode())
	}
	if result.Error != "" {
		return Probabilities{}, fmt.Errorf("remote model %s: %s", c.url, result.Error)
	}
	if len(result.Probabilities) != 2 {
		return Probabilities{}, fmt.Errorf("remote model %s: expected 2 probabilities, got %d", c.url, len(result.Probabilities))
	}

	p := Probabilities{Repay: result.Probabilities[0], Default: result.Probabilities[1]}
	if err := p.Validate(); err != nil {
		return Probabilities{}, fmt.Errorf("remote model %s: %w", c.url, err)
	}
	return p, nil
}
