package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// Config descreve o acesso ao backend da ouvidoria.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Metrics *metrics.Collector
}

// Client encapsula chamadas REST ao backend.
type Client struct {
	http    *resty.Client
	baseURL string
	metrics *metrics.Collector
}

// New cria um cliente apontando para a URL base informada.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend: url base obrigatória")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: rc, baseURL: base, metrics: cfg.Metrics}, nil
}

// BaseURL devolve a URL base configurada.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executa a chamada e devolve o corpo bruto em caso de sucesso.
// Respostas >= 400 viram *APIError; falhas de transporte preservam o erro do contexto.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.metrics.ObserveBackend(method, resourceLabel(path), 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("falha ao chamar backend")
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	c.metrics.ObserveBackend(method, resourceLabel(path), status, time.Since(start))

	if status >= http.StatusBadRequest {
		apiErr := parseAPIError(method, path, status, resp.Body())
		if status >= http.StatusInternalServerError {
			log.Error().Int("status", status).Str("method", method).Str("path", path).Msg("backend retornou erro")
		}
		return nil, apiErr
	}
	return resp.Body(), nil
}

// Ping verifica se o backend responde.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodGet, "/", nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return nil
	}
	return err
}

func resourceLabel(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
