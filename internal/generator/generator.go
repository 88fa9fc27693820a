package generator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vango-dev/projgen/internal/config"
	"github.com/vango-dev/projgen/internal/errors"
	"github.com/vango-dev/projgen/internal/metrics"
	"github.com/vango-dev/projgen/internal/templates"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope of generator spans.
const tracerName = "github.com/vango-dev/projgen/internal/generator"

// EventKind identifies a progress step.
type EventKind string

const (
	EventValidated EventKind = "validated"
	EventRendered  EventKind = "rendered"
	EventStaged    EventKind = "staged"
	EventCommitted EventKind = "committed"
	EventPublished EventKind = "published"
)

// Event is a progress notification.
type Event struct {
	Kind EventKind `json:"kind"`
	Name string    `json:"name"`
	Path string    `json:"path,omitempty"`
}

// Observer receives events synchronously, in order.
type Observer func(Event)

// Publisher uploads rendered files somewhere besides the local disk.
type Publisher interface {
	Publish(ctx context.Context, name string, files []templates.File) ([]string, error)
}

// Options configures a Generator.
type Options struct {
	// Config is required.
	Config *config.Config

	// Logger receives structured records. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics records run outcomes. Nil disables metrics.
	Metrics *metrics.Metrics

	// Tracer creates spans. If nil, the global OpenTelemetry provider is used.
	Tracer trace.Tracer

	// Publisher handles Request.Publish. Nil makes publishing fail with E141.
	Publisher Publisher

	// Rand draws ports. If nil, the package-level generator is used.
	Rand *rand.Rand
}

// Request describes one run.
type Request struct {
	// Name is the project name.
	Name string

	// Port fixes the dev-server port. Zero draws one from the configured range.
	Port int

	// Publish uploads the files after a successful commit.
	Publish bool

	// DryRun renders without touching the filesystem.
	DryRun bool

	// Observer receives progress events. May be nil.
	Observer Observer
}

// Result describes a finished run.
type Result struct {
	// ID identifies the run in logs.
	ID string `json:"id"`

	// Name is the project name.
	Name string `json:"name"`

	// Dir is the project directory.
	Dir string `json:"dir"`

	// Port is the dev-server port written into the build config.
	Port int `json:"port"`

	// Files are the relative paths written, in order.
	Files []string `json:"files"`

	// Created is false when an existing project was overwritten.
	Created bool `json:"created"`

	// DryRun is true when nothing was written.
	DryRun bool `json:"dryRun,omitempty"`

	// Published lists object keys when the project was uploaded.
	Published []string `json:"published,omitempty"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Generator creates projects. It is safe for concurrent use.
type Generator struct {
	cfg       *config.Config
	tmpl      *templates.Template
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	publisher Publisher

	randMu sync.Mutex
	rand   *rand.Rand
}

// New creates a Generator. It fails when the configuration is invalid or
// names an unknown template.
func New(opts Options) (*Generator, error) {
	if opts.Config == nil {
		return nil, errors.New("E122").WithDetail("generator requires a configuration")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	tmpl, err := templates.Get(opts.Config.Template)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Generator{
		cfg:       opts.Config,
		tmpl:      tmpl,
		logger:    logger,
		metrics:   opts.Metrics,
		tracer:    tracer,
		publisher: opts.Publisher,
		rand:      opts.Rand,
	}, nil
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() *config.Config {
	return g.cfg
}

// Template returns the template set in use.
func (g *Generator) Template() *templates.Template {
	return g.tmpl
}

// Generate creates the named project with a random port.
func (g *Generator) Generate(ctx context.Context, name string) (*Result, error) {
	return g.Run(ctx, Request{Name: name})
}

// Run executes one request.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := g.logger.With("run", id, "name", req.Name)

	ctx, span := g.tracer.Start(ctx, "projgen.generate", trace.WithAttributes(
		attribute.String("projgen.run_id", id),
		attribute.String("projgen.project", req.Name),
		attribute.String("projgen.template", g.tmpl.Name),
		attribute.Bool("projgen.dry_run", req.DryRun),
	))
	defer span.End()

	res, err := g.run(ctx, id, req, logger)
	if res != nil {
		res.Duration = time.Since(start)
	}

	written := 0
	if res != nil && !res.DryRun {
		written = len(res.Files)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.metrics.ObserveGenerate(resultLabel(err), written, time.Since(start))
		logger.Error("generation failed", "error", errors.FromError(err, "E103").FormatCompact())
		return res, err
	}

	span.SetAttributes(
		attribute.Int("projgen.port", res.Port),
		attribute.Bool("projgen.created", res.Created),
	)
	span.SetStatus(codes.Ok, "")
	g.metrics.ObserveGenerate("success", written, res.Duration)
	logger.Info("project generated",
		"dir", res.Dir,
		"port", res.Port,
		"files", len(res.Files),
		"created", res.Created,
		"dry_run", res.DryRun,
		"duration", res.Duration,
	)
	return res, nil
}

func (g *Generator) run(ctx context.Context, id string, req Request, logger *slog.Logger) (*Result, error) {
	emit := func(kind EventKind, path string) {
		if req.Observer != nil {
			req.Observer(Event{Kind: kind, Name: req.Name, Path: path})
		}
	}

	if err := templates.ValidateName(req.Name); err != nil {
		return nil, err
	}
	if req.Port < 0 || req.Port > 65535 {
		return nil, errors.New("E122").
			WithDetail("port must be between 1 and 65535, got " + strconv.Itoa(req.Port))
	}
	if req.Publish && g.publisher == nil {
		err := errors.New("E141")
		g.metrics.ObservePublish(resultLabel(err))
		return nil, err
	}
	emit(EventValidated, "")

	projectDir := g.cfg.ProjectPath(req.Name)
	desc, err := g.render(ctx, req.Name, req.Port, projectDir)
	if err != nil {
		return nil, err
	}
	emit(EventRendered, "")
	logger.Debug("rendered project", "port", desc.Port, "files", len(desc.Files))

	res := &Result{
		ID:     id,
		Name:   req.Name,
		Dir:    projectDir,
		Port:   desc.Port,
		Files:  desc.Paths(),
		DryRun: req.DryRun,
	}
	if req.DryRun {
		return res, nil
	}

	w := &writer{
		projectsDir: g.cfg.ProjectsPath(),
		projectDir:  projectDir,
		stageName:   stagePrefix + id,
		tracer:      g.tracer,
		logger:      logger,
		emit:        emit,
	}
	created, err := w.write(ctx, desc)
	if err != nil {
		return nil, err
	}
	res.Created = created

	if req.Publish {
		keys, err := g.publish(ctx, desc, emit)
		res.Published = keys
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// Render renders the named project in memory without writing anything.
func (g *Generator) Render(ctx context.Context, name string, port int) (*templates.Descriptor, error) {
	if err := templates.ValidateName(name); err != nil {
		return nil, err
	}
	return g.render(ctx, name, port, g.cfg.ProjectPath(name))
}

func (g *Generator) render(ctx context.Context, name string, port int, projectDir string) (*templates.Descriptor, error) {
	_, span := g.tracer.Start(ctx, "projgen.render")
	defer span.End()

	if port == 0 {
		port = g.pickPort()
	}

	shared, err := relativeTo(projectDir, g.cfg.SharedPath())
	if err != nil {
		return nil, err
	}
	postcss, err := relativeTo(projectDir, g.cfg.PostCSSPath())
	if err != nil {
		return nil, err
	}

	desc, err := g.tmpl.Render(name, templates.Options{
		Port:          port,
		SharedAlias:   shared,
		PostCSSConfig: postcss,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("projgen.files", len(desc.Files)))
	return desc, nil
}

func (g *Generator) pickPort() int {
	g.randMu.Lock()
	defer g.randMu.Unlock()
	return templates.PickPort(g.rand, g.cfg.Ports.Min, g.cfg.Ports.Max)
}

func (g *Generator) publish(ctx context.Context, desc *templates.Descriptor, emit func(EventKind, string)) ([]string, error) {
	ctx, span := g.tracer.Start(ctx, "projgen.publish")
	defer span.End()

	keys, err := g.publisher.Publish(ctx, desc.Name, desc.Files)
	for _, key := range keys {
		emit(EventPublished, key)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.metrics.ObservePublish(resultLabel(err))
		return keys, errors.FromError(err, "E140")
	}
	span.SetAttributes(attribute.Int("projgen.objects", len(keys)))
	g.metrics.ObservePublish("success")
	return keys, nil
}

// relativeTo returns target relative to base as a slash-separated path.
func relativeTo(base, target string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", errors.New("E103").WithPath(base).Wrap(err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", errors.New("E103").WithPath(target).Wrap(err)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", errors.New("E122").
			WithPath(target).
			WithDetail("cannot be expressed relative to the project directory").
			Wrap(err)
	}
	return filepath.ToSlash(rel), nil
}

// resultLabel maps an error to a low-cardinality metrics label.
func resultLabel(err error) string {
	if cat := errors.CategoryOf(err); cat != "" {
		return string(cat)
	}
	return "unknown"
}
