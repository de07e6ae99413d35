package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/logger"
)

// ollamaAPI is the subset of *api.Client used here.
type ollamaAPI interface {
	Embeddings(ctx context.Context, req *api.EmbeddingRequest) (*api.EmbeddingResponse, error)
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
	List(ctx context.Context) (*api.ListResponse, error)
	Pull(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error
}

// Ollama is a Service backed by a local Ollama server.
type Ollama struct {
	client         ollamaAPI
	embeddingModel string
	chatModel      string
	log            *zap.Logger

	mu    sync.Mutex
	ready bool
	setup bool
}

// NewOllama connects to host (empty = OLLAMA_HOST or the default local
// address). No request is made until Ready or a model call.
func NewOllama(host, embeddingModel, chatModel string, log *zap.Logger) (*Ollama, error) {
	var client *api.Client
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		client = c
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("ollama host %q: %w", host, err)
		}
		client = api.NewClient(u, http.DefaultClient)
	}
	return newOllama(client, embeddingModel, chatModel, log), nil
}

func newOllama(client ollamaAPI, embeddingModel, chatModel string, log *zap.Logger) *Ollama {
	return &Ollama{
		client:         client,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		log:            logger.OrNop(log),
	}
}

// Ready lists the local models and pulls any required model that is
// missing. The outcome of the first attempt that reaches the server is
// cached; a failed connection is retried on the next call.
func (o *Ollama) Ready(ctx context.Context) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.setup {
		return o.ready
	}

	list, err := o.client.List(ctx)
	if err != nil {
		o.log.Warn("ollama connection failed, is 'ollama serve' running?", zap.Error(err))
		return false
	}
	o.setup = true

	available := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		name := m.Model
		if name == "" {
			name = m.Name
		}
		available = append(available, name)
	}

	for _, required := range []string{o.embeddingModel, o.chatModel} {
		if hasModel(available, required) {
			o.log.Info("model available", zap.String("model", required))
			continue
		}
		o.log.Info("model not found, pulling", zap.String("model", required))
		err := o.client.Pull(ctx, &api.PullRequest{Model: required}, func(p api.ProgressResponse) error {
			o.log.Debug("pull progress", zap.String("model", required), zap.String("status", p.Status),
				zap.Int64("completed", p.Completed), zap.Int64("total", p.Total))
			return nil
		})
		if err != nil {
			o.log.Warn("model pull failed", zap.String("model", required), zap.Error(err))
			o.ready = false
			return false
		}
		o.log.Info("model pulled", zap.String("model", required))
	}

	o.ready = true
	return true
}

// hasModel matches by prefix since local names carry a tag suffix.
func hasModel(available []string, name string) bool {
	for _, m := range available {
		if strings.HasPrefix(m, name) {
			return true
		}
	}
	return false
}

// Embed returns the embedding of text. Empty text yields an empty vector.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float64, error) {
	if !o.Ready(ctx) {
		return nil, ErrNotReady
	}
	if text == "" {
		return nil, nil
	}
	resp, err := o.client.Embeddings(ctx, &api.EmbeddingRequest{Model: o.embeddingModel, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("embedding with %s: %w", o.embeddingModel, err)
	}
	return resp.Embedding, nil
}

// Chat sends a system and user message and returns the full reply.
func (o *Ollama) Chat(ctx context.Context, system, user string) (string, error) {
	if !o.Ready(ctx) {
		return "", ErrNotReady
	}
	stream := false
	req := &api.ChatRequest{
		Model: o.chatModel,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
	}

	var reply strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat with %s: %w", o.chatModel, err)
	}
	return reply.String(), nil
}
