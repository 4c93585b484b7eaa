package ai

import "context"

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// CompletionProvider is the interface for LLM completion backends. Agents
// depend on this, never on a concrete SDK.
type CompletionProvider interface {
	// Complete sends a system prompt plus conversation turns and returns the
	// model's text response.
	Complete(ctx context.Context, system string, messages []ChatMessage) (string, error)
}

// ProviderFactory creates a completion provider from string config
type ProviderFactory func(config map[string]string) (CompletionProvider, error)

// ProviderRegistry stores available completion providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (CompletionProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (CompletionProvider, error) {
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, &ErrMissingAPIKey{Provider: "openai"}
		}
		return NewOpenAIProviderWithConfig(apiKey, config["base_url"], config["model"]), nil
	})
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "completion provider not found: " + e.Name
}

// ErrMissingAPIKey is returned when a provider is configured without a key
type ErrMissingAPIKey struct {
	Provider string
}

func (e *ErrMissingAPIKey) Error() string {
	return "missing API key for provider: " + e.Provider
}
