package llm

import "context"

// Request is a single-shot completion request. JSONMode asks the provider
// to emit strict JSON with no surrounding prose; providers that support a
// native JSON mode should use it, others must rely on the instruction text.
type Request struct {
	SystemInstruction string
	UserInstruction   string
	JSONMode          bool
	MaxTokens         int
}

// Usage reports the token cost of one call, as billed by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Response carries the raw model text plus its token cost.
type Response struct {
	Text  string
	Usage Usage
}

// Provider is the cloud model boundary. A non-2xx status, transport error,
// or timeout surfaces as a plain error; callers are expected to treat every
// error as recoverable and degrade.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Close() error
}

// Embedder computes text embeddings for retrieved-context search. Optional:
// not every provider implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
