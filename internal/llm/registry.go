package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/csheth/studyreader/internal/config"
)

var ErrUnknownModel = errors.New("no provider configured for model")

// completer sends one prompt to a provider and returns the raw text.
type completer interface {
	complete(ctx context.Context, model, apiKey, prompt string) (string, error)
	provider() string
}

// Registry routes each request to the provider whose model prefix matches
// and resolves the API key for it. It talks to providers directly.
type Registry struct {
	cfg       *config.Config
	client    *http.Client
	lookupEnv func(string) (string, bool)
}

func NewRegistry(cfg *config.Config, httpClient *http.Client) *Registry {
	return &Registry{
		cfg:       cfg,
		client:    pickHTTPClient(httpClient),
		lookupEnv: os.LookupEnv,
	}
}

func (r *Registry) Name() string {
	return fmt.Sprintf("Direct (%s)", r.cfg.Model)
}

// Credential returns explicit when set, otherwise the key from the
// environment variable mapped to model. Models that need no key return "".
func (r *Registry) Credential(model, explicit string) (string, error) {
	spec, ok := r.cfg.ModelFor(model)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownModel, model)
	}
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if spec.KeyEnv == "" {
		return "", nil
	}
	if key, ok := r.lookupEnv(spec.KeyEnv); ok && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), nil
	}
	return "", credentialError(spec.Provider, fmt.Errorf("missing API key: set %s or provide one", spec.KeyEnv))
}

// Complete returns the raw completion text for req.
func (r *Registry) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = r.cfg.Model
	}
	spec, ok := r.cfg.ModelFor(model)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownModel, model)
	}
	key, err := r.Credential(model, req.APIKey)
	if err != nil {
		return "", err
	}
	c, err := r.completerFor(spec)
	if err != nil {
		return "", err
	}
	upstream := model
	if spec.Strip {
		upstream = strings.TrimPrefix(model, spec.Prefix)
	}
	return c.complete(ctx, upstream, key, req.Prompt)
}

// Generate completes req and parses the result into the mode's shape. A
// response that cannot be parsed is a malformed-response APIError.
func (r *Registry) Generate(ctx context.Context, req Request) (Response, error) {
	raw, err := r.Complete(ctx, req)
	if err != nil {
		return Response{}, err
	}
	resp, err := ParseResponse(req.Mode, raw)
	if err != nil {
		return Response{}, malformedError("model", err)
	}
	resp.RequestID = req.ID
	resp.Mode = req.Mode
	return resp, nil
}

func (r *Registry) completerFor(spec config.ModelSpec) (completer, error) {
	base := strings.TrimRight(spec.Endpoint, "/")
	switch spec.Provider {
	case "anthropic":
		if base == "" {
			base = "https://api.anthropic.com/v1"
		}
		return &anthropicClient{base: base, client: r.client}, nil
	case "openai":
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		return &openAIClient{base: base, client: r.client}, nil
	case "ollama":
		if base == "" {
			base = "http://localhost:11434"
		}
		return &ollamaClient{host: base, client: r.client}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q for prefix %q", spec.Provider, spec.Prefix)
	}
}

// NewClient returns a gateway client when cfg names a gateway URL and a
// direct registry otherwise.
func NewClient(cfg *config.Config, httpClient *http.Client) Client {
	if cfg.GatewayURL != "" {
		return NewGatewayClient(Config{Endpoint: cfg.GatewayURL, HTTPClient: httpClient})
	}
	return NewRegistry(cfg, httpClient)
}
