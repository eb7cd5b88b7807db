package observability

import (
	"context"
	"log"
	"time"

	"github.com/Conceptual-Machines/magda-compose/internal/config"
	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
)

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
	ctx     context.Context
}

// NewLangfuseClient creates a Langfuse client. The SDK reads its keys from the
// LANGFUSE_* environment; a disabled client turns every call into a no-op.
func NewLangfuseClient(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		return &LangfuseClient{enabled: false, ctx: ctx}
	}

	lf := langfuse.New(ctx)
	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)
	return &LangfuseClient{
		client:  lf,
		enabled: true,
		ctx:     ctx,
	}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{enabled: false, ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{enabled: false, ctx: ctx}
	}

	return &Trace{
		trace:   trace,
		enabled: true,
		ctx:     ctx,
		client:  c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	ctx     context.Context
	client  *langfuse.Langfuse
}

// Generation creates a new generation span within the trace
func (t *Trace) Generation(name string, metadata map[string]interface{}) *Generation {
	if !t.enabled {
		return &Generation{enabled: false, ctx: t.ctx}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &now,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{enabled: false, ctx: t.ctx}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		ctx:        t.ctx,
		client:     t.client,
	}
}

// Finish flushes the trace's queued events to Langfuse
func (t *Trace) Finish() {
	if t.enabled && t.client != nil {
		t.client.Flush(t.ctx)
	}
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	ctx        context.Context
	client     *langfuse.Langfuse
}

// Metadata adds metadata to the generation
func (g *Generation) Metadata(metadata map[string]interface{}) {
	if !g.enabled || g.generation == nil {
		return
	}
	md, ok := g.generation.Metadata.(map[string]interface{})
	if !ok || md == nil {
		md = make(map[string]interface{})
	}
	for k, v := range metadata {
		md[k] = v
	}
	g.generation.Metadata = md
}

// SetLevel sets the level of the generation
func (g *Generation) SetLevel(level string) {
	if g.enabled && g.generation != nil {
		g.generation.Level = model.ObservationLevel(level)
	}
}

// LogCompletion records prompt, output, token usage and cost of one LLM call
func (g *Generation) LogCompletion(
	modelName string,
	input interface{},
	output string,
	inputTokens, outputTokens int,
	metadata map[string]interface{},
) {
	if !g.enabled || g.generation == nil {
		return
	}

	cost := CalculateCost(modelName, inputTokens, outputTokens)

	g.generation.Model = modelName
	g.generation.Input = input
	if output != "" {
		g.generation.Output = output
	}
	g.generation.Usage = model.Usage{
		Input:     inputTokens,
		Output:    outputTokens,
		Total:     inputTokens + outputTokens,
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}

	finalMetadata := map[string]interface{}{
		"model":    modelName,
		"cost_usd": FormatCost(cost),
	}
	for k, v := range metadata {
		finalMetadata[k] = v
	}
	g.Metadata(finalMetadata)
}

// Finish completes the generation and sends it to Langfuse
func (g *Generation) Finish() {
	if g.enabled && g.generation != nil && g.client != nil {
		now := time.Now()
		g.generation.EndTime = &now
		if _, err := g.client.GenerationEnd(g.generation); err != nil {
			log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
		}
	}
}
