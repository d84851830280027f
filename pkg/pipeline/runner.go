package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtree/pkg/cache"
	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/observability"
	"github.com/matzehuels/orgtree/pkg/outline"
)

// Cache stage names, used for hook labels.
const (
	stageGraph    = "graph"
	stageLayout   = "layout"
	stageArtifact = "artifact"
)

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state, so one instance can serve many
// goroutines with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer and a nil logger uses the charm default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs parse → layout → render on one document. name identifies
// the document in logs and becomes the layout title when opts.Title is
// empty.
func (r *Runner) Execute(ctx context.Context, name string, data []byte, opts Options) (*Result, error) {
	if opts.Title == "" {
		opts.Title = name
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	res, hit, err := r.ParseWithCacheInfo(ctx, name, data, opts)
	if err != nil {
		return nil, err
	}
	result.Outline = res
	result.Stats.ParseTime = time.Since(start)
	result.CacheInfo.ParseHit = hit
	result.fill()
	if encoded, err := graph.MarshalGraph(res.Tree, res.Root); err == nil {
		result.GraphHash = cache.Hash(encoded)
	}

	r.Logger.Info("parsed outline",
		"document", name,
		"nodes", result.Stats.NodeCount,
		"levels", result.Stats.Levels,
		"cached", hit,
		"duration", result.Stats.ParseTime)
	for _, w := range res.Warnings {
		r.Logger.Warn("skipped header", "document", name, "line", w.Line, "text", w.Text)
	}

	start = time.Now()
	l, hit, err := r.GenerateLayoutWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"strategy", l.Strategy,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo parses data and reports whether the result came from
// the cache. opts.Refresh bypasses the cache lookup but still stores the
// fresh result.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, name string, data []byte, opts Options) (res *outline.Result, hit bool, err error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, name)
	start := time.Now()
	defer func() {
		nodes := 0
		if res != nil {
			nodes = res.Tree.NodeCount()
		}
		hooks.OnParseComplete(ctx, name, nodes, time.Since(start), err)
	}()

	key := r.Keyer.GraphKey(cache.Hash(data), opts.GraphKeyOpts())
	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, stageGraph, key); ok {
			if res, err := decodeParsed(cached); err == nil {
				return res, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		}
	}

	res, err = Parse(data, opts)
	if err != nil {
		return nil, false, err
	}
	if encoded, err := encodeParsed(res); err == nil {
		r.store(ctx, stageGraph, key, encoded, cache.GraphTTL)
	}
	return res, false, nil
}

// Parse parses data through the cache, discarding the hit flag.
func (r *Runner) Parse(ctx context.Context, name string, data []byte, opts Options) (*outline.Result, error) {
	res, _, err := r.ParseWithCacheInfo(ctx, name, data, opts)
	return res, err
}

// GenerateLayoutWithCacheInfo lays out a parsed outline and reports whether
// the layout came from the cache.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, res *outline.Result, opts Options) (l graph.Layout, hit bool, err error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	if res == nil || res.Tree == nil {
		return graph.Layout{}, false, errors.New(errors.ErrCodeStructural, "no tree to lay out")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Strategy, res.Tree.NodeCount())
	start := time.Now()
	defer func() { hooks.OnLayoutComplete(ctx, opts.Strategy, time.Since(start), err) }()

	encoded, err := graph.MarshalGraph(res.Tree, res.Root)
	if err != nil {
		return graph.Layout{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize tree")
	}
	key := r.Keyer.LayoutKey(cache.Hash(encoded), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, stageLayout, key); ok {
			if l, err := graph.UnmarshalLayout(cached); err == nil {
				return l, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		}
	}

	l, err = GenerateLayout(res, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	if data, err := graph.MarshalLayout(l); err == nil {
		r.store(ctx, stageLayout, key, data, cache.LayoutTTL)
	}
	return l, false, nil
}

// GenerateLayout lays out a parsed outline through the cache.
func (r *Runner) GenerateLayout(ctx context.Context, res *outline.Result, opts Options) (graph.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, res, opts)
	return l, err
}

// RenderWithCacheInfo renders every requested format. The hit flag is true
// only if all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	encoded, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout")
	}
	layoutHash := cache.Hash(encoded)

	artifacts = make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, stageArtifact, key); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := RenderFromLayout(ctx, l, sub)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, stageArtifact, key, data, cache.ArtifactTTL)
	}
	return artifacts, false, nil
}

// Render renders a layout through the cache.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads a cache entry. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, stage, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "stage", stage, "err", err)
		ok = false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, stage)
	} else {
		observability.Cache().OnCacheMiss(ctx, stage)
	}
	return data, ok
}

// store writes a cache entry. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, stage, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "stage", stage, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, stage, len(data))
}
