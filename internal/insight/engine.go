package insight

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/providers/llm"
)

const (
	defaultCloudTimeout = 6 * time.Second
	insightMaxTokens    = 300
	finalMaxTokens      = 700
)

// Engine turns candidate utterances into schema-valid insights. The cloud
// path may be rejected or unavailable; the engine always degrades to the
// rules path and never returns an error.
type Engine struct {
	provider llm.Provider
	log      *logrus.Logger
	timeout  time.Duration
}

func NewEngine(provider llm.Provider, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{provider: provider, log: log, timeout: defaultCloudTimeout}
}

// SetTimeout bounds each cloud call. A timeout is treated like any other
// network error: degrade to rules.
func (e *Engine) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// GenerateInsight resolves to a concrete Insight for every input. Cloud
// failures cost the caller nothing: UsedTokens is zero on every rules-path
// result, fallback included.
func (e *Engine) GenerateInsight(ctx context.Context, in Input) Result {
	start := time.Now()

	if in.Mode == ModeRules || in.TokenBudgetLeft <= 0 || e.provider == nil {
		ins := Rules(in)
		if in.Mode == ModeCloud && in.TokenBudgetLeft <= 0 {
			ins.Flags = append(ins.Flags, FlagBudgetExhausted)
		}
		return Result{Insight: ins, Latency: time.Since(start)}
	}

	user := buildInsightPrompt(in)

	resp, err := e.complete(ctx, insightSystemPrompt, user, insightMaxTokens)
	if err == nil {
		ins, verr := parseInsight(resp.Text, in.TurnID)
		if verr == nil {
			return Result{Insight: ins, Latency: time.Since(start), UsedTokens: resp.Usage.Total()}
		}

		e.log.WithError(verr).WithField("turn_id", in.TurnID).Warn("insight schema rejected, retrying")

		retry, rerr := e.complete(ctx, insightSystemPrompt+strictRetrySuffix, user, insightMaxTokens)
		if rerr == nil {
			if ins, verr := parseInsight(retry.Text, in.TurnID); verr == nil {
				ins.Flags = append(ins.Flags, FlagSchemaRejected)
				return Result{
					Insight:    ins,
					Latency:    time.Since(start),
					UsedTokens: resp.Usage.Total() + retry.Usage.Total(),
				}
			}
		}
	} else {
		e.log.WithError(err).WithField("turn_id", in.TurnID).Warn("cloud insight call failed")
	}

	ins := Rules(in)
	ins.Flags = append(ins.Flags, FlagModelUnavailable)
	return Result{Insight: ins, Latency: time.Since(start)}
}

// GenerateFinalSummary follows the same cloud/rules dichotomy and the same
// retry-once-then-fallback policy over the whole transcript.
func (e *Engine) GenerateFinalSummary(ctx context.Context, in FinalInput) FinalResult {
	start := time.Now()

	if in.Mode == ModeRules || in.TokenBudgetLeft <= 0 || e.provider == nil {
		return FinalResult{Summary: RulesFinal(in), Latency: time.Since(start)}
	}

	user := buildFinalPrompt(in)

	resp, err := e.complete(ctx, finalSystemPrompt, user, finalMaxTokens)
	if err == nil {
		fs, verr := parseFinalSummary(resp.Text)
		if verr == nil {
			return FinalResult{Summary: fs, Latency: time.Since(start), UsedTokens: resp.Usage.Total()}
		}

		e.log.WithError(verr).Warn("final summary schema rejected, retrying")

		retry, rerr := e.complete(ctx, finalSystemPrompt+strictRetrySuffix, user, finalMaxTokens)
		if rerr == nil {
			if fs, verr := parseFinalSummary(retry.Text); verr == nil {
				return FinalResult{
					Summary:    fs,
					Latency:    time.Since(start),
					UsedTokens: resp.Usage.Total() + retry.Usage.Total(),
				}
			}
		}
	} else {
		e.log.WithError(err).Warn("cloud final summary call failed")
	}

	return FinalResult{Summary: RulesFinal(in), Latency: time.Since(start)}
}

func (e *Engine) complete(ctx context.Context, system, user string, maxTokens int) (llm.Response, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.provider.Complete(cctx, llm.Request{
		SystemInstruction: system,
		UserInstruction:   user,
		JSONMode:          true,
		MaxTokens:         maxTokens,
	})
}
