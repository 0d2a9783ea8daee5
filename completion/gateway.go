package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/llmcache/cache"
	"github.com/jonwraymond/llmcache/health"
	"github.com/jonwraymond/llmcache/observe"
	"github.com/jonwraymond/llmcache/resilience"
)

// Gateway is the single entry point for cached chat completions. It
// derives a deterministic key from each request, serves hits from the
// store, and on a miss calls upstream under a retry policy before
// writing the result back.
//
// A Gateway holds no per-request state and is safe for concurrent use.
type Gateway struct {
	caller  Caller
	store   cache.Store
	keyer   cache.Keyer
	retry   *resilience.Retry
	limiter *resilience.RateLimiter
	ins     *observe.Instruments
	group   *singleflight.Group
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCaller sets the upstream completion caller.
func WithCaller(c Caller) Option {
	return func(g *Gateway) { g.caller = c }
}

// WithStore sets the persistent store. Defaults to an in-memory store.
func WithStore(s cache.Store) Option {
	return func(g *Gateway) { g.store = s }
}

// WithKeyer sets the key derivation strategy.
func WithKeyer(k cache.Keyer) Option {
	return func(g *Gateway) { g.keyer = k }
}

// WithRetry sets the retry policy applied to upstream calls.
func WithRetry(r *resilience.Retry) Option {
	return func(g *Gateway) { g.retry = r }
}

// WithRateLimiter throttles upstream calls. Cache hits are never
// limited.
func WithRateLimiter(rl *resilience.RateLimiter) Option {
	return func(g *Gateway) { g.limiter = rl }
}

// WithInstruments sets the telemetry instruments.
func WithInstruments(ins *observe.Instruments) Option {
	return func(g *Gateway) { g.ins = ins }
}

// WithCoalescing collapses concurrent identical misses into a single
// upstream call. Off by default: two concurrent misses on the same key
// both call upstream and both write the store, last write wins.
func WithCoalescing() Option {
	return func(g *Gateway) { g.group = &singleflight.Group{} }
}

// New creates a Gateway. A caller must be supplied via WithCaller;
// everything else falls back to defaults (in-memory store, default
// keyer, unbounded exponential backoff, no rate limit, no telemetry).
func New(opts ...Option) (*Gateway, error) {
	g := &Gateway{}
	for _, opt := range opts {
		opt(g)
	}
	if g.caller == nil {
		return nil, ErrNilCaller
	}
	if g.store == nil {
		g.store = cache.NewMemoryStore()
	}
	if g.keyer == nil {
		g.keyer = cache.NewDefaultKeyer()
	}
	if g.retry == nil {
		g.retry = resilience.NewRetry(resilience.RetryConfig{
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     30 * time.Second,
			Strategy:     resilience.BackoffExponential,
		})
	}
	if g.ins == nil {
		g.ins = observe.NoopInstruments()
	}
	return g, nil
}

// Namespace returns the cache namespace for the given call variant.
func Namespace(structured bool) string {
	if structured {
		return cache.NamespaceChatStructured
	}
	return cache.NamespaceChat
}

// Complete resolves the request from the cache, or calls upstream on a
// miss and persists the result. Hits and misses return results with an
// identical shape.
func (g *Gateway) Complete(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	structured := req.Structured()

	key, err := g.deriveKey(req)
	if err != nil {
		return nil, err
	}

	meta := observe.CallMeta{
		Namespace: Namespace(structured),
		Model:     req.Model,
		Key:       key,
	}
	log := g.ins.Logger.WithCall(meta)

	ctx, span := g.ins.Tracer.StartSpan(ctx, "completion.Complete", meta)
	var finalErr error
	defer func() {
		g.ins.Tracer.EndSpan(span, finalErr)
		g.ins.Metrics.RecordRequest(ctx, meta, time.Since(start), finalErr)
	}()

	value, found, err := g.store.Get(ctx, key)
	if err != nil {
		finalErr = fmt.Errorf("completion: store get: %w", err)
		return nil, finalErr
	}
	g.ins.Metrics.RecordLookup(ctx, meta, found)

	if found {
		log.Debug(ctx, "cache hit")
		result, err := g.reconstruct(req, structured, value)
		if err != nil {
			finalErr = err
			return nil, finalErr
		}
		return result, nil
	}

	log.Debug(ctx, "cache miss")
	result, err := g.fetchAndStore(ctx, meta, log, req, key, structured)
	if err != nil {
		finalErr = err
		return nil, finalErr
	}
	return result, nil
}

func (g *Gateway) deriveKey(req Request) (string, error) {
	params := map[string]any{
		"model":    req.Model,
		"messages": req.Messages,
	}
	for k, v := range req.Extra {
		params[k] = v
	}
	if req.Structured() {
		// The full schema descriptor participates in the key so two
		// requests differing only by schema get different keys.
		params["response_format"] = map[string]any{
			"name":   req.ResponseFormat.Name,
			"schema": req.ResponseFormat.Schema,
			"strict": req.ResponseFormat.Strict,
		}
	}

	key, err := g.keyer.DeriveKey(Namespace(req.Structured()), params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return key, nil
}

// fetchAndStore calls upstream under the retry policy and writes the
// serialized result to the store. With coalescing enabled, concurrent
// identical misses share one upstream call.
func (g *Gateway) fetchAndStore(ctx context.Context, meta observe.CallMeta, log observe.Logger, req Request, key string, structured bool) (Result, error) {
	if g.group == nil {
		return g.fetchOnce(ctx, meta, log, req, key, structured)
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		return g.fetchOnce(ctx, meta, log, req, key, structured)
	})
	if err != nil {
		return nil, err
	}
	return v.(Result), nil
}

func (g *Gateway) fetchOnce(ctx context.Context, meta observe.CallMeta, log observe.Logger, req Request, key string, structured bool) (Result, error) {
	var (
		result   Result
		attempts int
	)
	op := func(ctx context.Context) error {
		attempts++
		var callErr error
		result, callErr = g.caller.Call(ctx, structured, req)
		return callErr
	}
	if g.limiter != nil {
		inner := op
		op = func(ctx context.Context) error {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
			return inner(ctx)
		}
	}

	err := g.retry.Execute(ctx, op)
	g.ins.Metrics.RecordUpstream(ctx, meta, attempts, err)
	if err != nil {
		log.Error(ctx, "upstream call failed",
			observe.Field{Key: "attempts", Value: attempts},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamCall, err)
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := g.store.Set(ctx, key, serialized); err != nil {
		return nil, fmt.Errorf("completion: store set: %w", err)
	}

	log.Info(ctx, "completion cached",
		observe.Field{Key: "attempts", Value: attempts},
		observe.Field{Key: "bytes", Value: len(serialized)},
	)
	return result, nil
}

// reconstruct builds a typed result of the request-selected variant
// from a cached payload. Structured choices without a refusal are
// re-validated against the request's schema.
func (g *Gateway) reconstruct(req Request, structured bool, value []byte) (Result, error) {
	if !structured {
		var c Completion
		if err := json.Unmarshal(value, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &c, nil
	}

	var pc ParsedCompletion
	if err := json.Unmarshal(value, &pc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	schema, err := compileSchema(req.ResponseFormat)
	if err != nil {
		return nil, err
	}
	for i, choice := range pc.Choices {
		if choice.Refusal != "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal(choice.Parsed, &parsed); err != nil {
			return nil, fmt.Errorf("%w: choice %d: %v", ErrSerialization, i, err)
		}
		if err := schema.Validate(parsed); err != nil {
			return nil, fmt.Errorf("%w: choice %d: %v", ErrSchemaValidation, i, err)
		}
	}
	return &pc, nil
}

func compileSchema(rf *ResponseFormat) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(rf.Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	schema, err := jsonschema.CompileString(rf.Name+".schema.json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return schema, nil
}

// Health probes the gateway's collaborators: a store round-trip and,
// when the caller supports it, an upstream ping.
func (g *Gateway) Health(ctx context.Context) map[string]health.Result {
	results := make(map[string]health.Result)

	storeCheck := health.NewCheckerFunc("store", func(ctx context.Context) health.Result {
		probe := "llmcache_health_probe"
		if err := g.store.Set(ctx, probe, []byte("ok")); err != nil {
			return health.Unhealthy("store write failed", err)
		}
		if _, _, err := g.store.Get(ctx, probe); err != nil {
			return health.Unhealthy("store read failed", err)
		}
		return health.Healthy("store reachable")
	})
	results["store"] = storeCheck.Check(ctx)

	if p, ok := g.caller.(Pinger); ok {
		upstream := health.PingChecker("upstream", p.Ping)
		results["upstream"] = upstream.Check(ctx)
	}

	return results
}
