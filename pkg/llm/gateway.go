package llm

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/logging"
)

const (
	// DefaultTemperature is sent when a request does not override it.
	DefaultTemperature = 0.7
	// DefaultMaxTokens is sent when a request does not override it.
	DefaultMaxTokens = 2000
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("AI API key not configured")

// Models selects a model per kind of task.
type Models struct {
	Writing   string
	Analysis  string
	Interview string
}

// Config holds gateway settings.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Models      Models
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Gateway builds prompts, sends them to the provider, and interprets replies.
type Gateway struct {
	cfg       Config
	completer Completer
	extractor *linkedin.Extractor
	logger    *logging.Logger
}

// NewGateway creates a Gateway for the configured provider. Without an API key
// the gateway is unconfigured and every call short-circuits.
func NewGateway(cfg Config, logger *logging.Logger) (g *Gateway) {
	var completer Completer

	if cfg.APIKey != "" {
		switch cfg.Provider {
		case ProviderAnthropic:
			completer = NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
		default:
			completer = NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
		}
	}

	g = NewGatewayWithCompleter(cfg, completer, logger)
	return g
}

// NewGatewayWithCompleter creates a Gateway around an existing Completer. A nil
// completer yields an unconfigured gateway.
func NewGatewayWithCompleter(cfg Config, completer Completer, logger *logging.Logger) (g *Gateway) {
	defaultModel := DefaultModel
	if cfg.Provider == ProviderAnthropic {
		defaultModel = DefaultAnthropicModel
	}

	if cfg.Models.Writing == "" {
		cfg.Models.Writing = defaultModel
	}
	if cfg.Models.Analysis == "" {
		cfg.Models.Analysis = defaultModel
	}
	if cfg.Models.Interview == "" {
		cfg.Models.Interview = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	g = &Gateway{
		cfg:       cfg,
		completer: completer,
		extractor: linkedin.NewExtractor(),
		logger:    logger,
	}
	return g
}

// Configured reports whether calls will reach a provider.
func (g *Gateway) Configured() (ok bool) {
	ok = g.completer != nil
	return ok
}

// ModelFor returns the model used for task.
func (g *Gateway) ModelFor(task Task) (model string) {
	switch task {
	case TaskInterviewPrep:
		model = g.cfg.Models.Interview
	case TaskSkillsAnalysis, TaskResumeCritique, TaskLinkedInParse:
		model = g.cfg.Models.Analysis
	default:
		model = g.cfg.Models.Writing
	}
	return model
}

// Generate performs one request. It never retries.
func (g *Gateway) Generate(ctx context.Context, req Request) (reply Reply, err error) {
	log := logging.FromContext(ctx, g.logger).With("task", string(req.Task))

	if !g.Configured() {
		err = ErrNotConfigured
		return reply, err
	}

	var prompt string
	prompt, err = BuildPrompt(req.Task, req.Input)
	if err != nil {
		return reply, err
	}

	comp := Completion{
		Prompt:      prompt,
		Model:       req.Model,
		Temperature: g.cfg.Temperature,
		MaxTokens:   req.MaxTokens,
		JSON:        false,
	}

	if comp.Model == "" {
		comp.Model = g.ModelFor(req.Task)
	}
	if req.Temperature != nil {
		comp.Temperature = *req.Temperature
	}
	if comp.MaxTokens <= 0 {
		comp.MaxTokens = g.cfg.MaxTokens
	}

	format := req.Format
	if format == "" {
		format = req.Task.Format()
	}
	comp.JSON = format == FormatJSON

	start := time.Now()

	var text string
	text, err = g.completer.Complete(ctx, comp)
	if err != nil {
		log.Warn("AI request failed", "model", comp.Model, "err", err, "elapsed", time.Since(start))
		return reply, err
	}

	reply = ParseReply(text, format)
	log.Debug("AI request succeeded", "model", comp.Model, "kind", reply.Kind.String(), "elapsed", time.Since(start))

	return reply, err
}
