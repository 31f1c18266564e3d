package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Embedding memo settings.
const (
	embeddingTTL     = 10 * time.Minute
	embeddingCleanup = 20 * time.Minute
)

// Embedder turns a text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// HTTPEmbedderConfig configures an OpenAI-compatible embeddings endpoint.
type HTTPEmbedderConfig struct {
	URL     string
	Model   string
	APIKey  string
	RPS     float64 // 0 disables rate limiting
	Timeout time.Duration
	Retries int
}

// HTTPEmbedder calls an OpenAI-compatible /embeddings endpoint.
type HTTPEmbedder struct {
	cfg     HTTPEmbedderConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
	memo    *gocache.Cache
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewHTTPEmbedder builds an embedder for cfg.
func NewHTTPEmbedder(cfg HTTPEmbedderConfig) (*HTTPEmbedder, error) {
	if cfg.URL == "" {
		return nil, errors.New("embedder URL is required")
	}
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	client.Logger = retryLogger{log: logrus.WithField("component", "embedder")}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &HTTPEmbedder{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		memo:    gocache.New(embeddingTTL, embeddingCleanup),
	}, nil
}

// Embed implements Embedder. Identical texts are served from an in-process memo.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	sum := sha256.Sum256([]byte(e.cfg.Model + "\x00" + text))
	key := hex.EncodeToString(sum[:])
	if v, ok := e.memo.Get(key); ok {
		return v.([]float64), nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(embeddingRequest{Model: e.cfg.Model, Input: text})
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(e.cfg.URL, "/") + "/embeddings"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embeddings endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("embeddings response has no vector")
	}

	vec := out.Data[0].Embedding
	e.memo.Set(key, vec, gocache.DefaultExpiration)
	return vec, nil
}

// retryLogger adapts logrus to retryablehttp.LeveledLogger.
type retryLogger struct {
	log logrus.FieldLogger
}

func (l retryLogger) Error(msg string, kv ...any) { l.log.WithFields(toFields(kv)).Error(msg) }
func (l retryLogger) Info(msg string, kv ...any)  { l.log.WithFields(toFields(kv)).Debug(msg) }
func (l retryLogger) Debug(msg string, kv ...any) { l.log.WithFields(toFields(kv)).Debug(msg) }
func (l retryLogger) Warn(msg string, kv ...any)  { l.log.WithFields(toFields(kv)).Warn(msg) }

func toFields(kv []any) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
