package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/buildmodel/internal/ctxlog"
	"github.com/vk/buildmodel/internal/decl"
	"github.com/vk/buildmodel/internal/objects"
)

// App encapsulates the checker's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	factory *objects.Factory
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a fresh model
// session, so independent invocations never share a named-value cache.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		factory: objects.New(objects.Config{}),
	}
}

// Factory returns the application's object factory. This is primarily for
// testing.
func (a *App) Factory() *objects.Factory {
	return a.factory
}

// Run loads the model manifests, binds them against the session's object
// factory, and reports the outcome.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	manifests, err := decl.Load(ctx, cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load model manifests: %w", err)
	}

	model, err := decl.Bind(ctx, manifests, a.factory)
	if err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}

	fmt.Fprintf(a.outW, "Model OK: %d type(s), %d container(s)\n", len(model.Types()), len(model.Containers()))
	for _, typeName := range model.Types() {
		typeDecl, _ := model.Type(typeName)
		fmt.Fprintf(a.outW, "  type %-20s %d propert%s\n", typeName, len(typeDecl.Properties), plural(len(typeDecl.Properties), "y", "ies"))
	}
	for _, contName := range model.Containers() {
		bound, _ := model.Container(contName)
		fmt.Fprintf(a.outW, "  container %-15s kind=%s element_type=%s\n", contName, bound.Kind, bound.Decl.ElementType)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
