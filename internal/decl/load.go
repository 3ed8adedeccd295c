package decl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"golang.org/x/sync/errgroup"

	"github.com/vk/buildmodel/internal/ctxlog"
	"github.com/vk/buildmodel/internal/fsutil"
)

// Load discovers and parses all model manifests under the given path and
// merges them into one Config. Files parse in parallel; merging is
// sequential in discovery order, so the merged declaration order is stable
// for a given tree.
func Load(ctx context.Context, manifestPath string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading model manifests.", "path", manifestPath)

	filePaths, err := fsutil.FindFilesByExtension(manifestPath, ".hcl")
	if err != nil {
		logger.Error("Failed to walk manifest path", "path", manifestPath, "error", err)
		return nil, err
	}

	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path", "path", manifestPath)
		return NewConfig(), nil
	}

	fragments := make([]*Config, len(filePaths))
	g, gctx := errgroup.WithContext(ctx)
	for i, filePath := range filePaths {
		g.Go(func() error {
			// One parser per file; hclparse parsers are not safe to share.
			parser := hclparse.NewParser()
			hclFile, diags := parser.ParseHCLFile(filePath)
			if diags.HasErrors() {
				return fmt.Errorf("failed to parse manifest %s: %w", filePath, diags)
			}
			fragment, parseDiags := ParseFile(gctx, hclFile, filePath)
			if parseDiags.HasErrors() {
				return fmt.Errorf("invalid manifest %s: %w", filePath, parseDiags)
			}
			fragments[i] = fragment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewConfig()
	for i, fragment := range fragments {
		for _, name := range fragment.TypeOrder {
			if _, exists := merged.Types[name]; exists {
				return nil, fmt.Errorf("type '%s' is declared in more than one manifest (seen again in %s)", name, filePaths[i])
			}
			merged.Types[name] = fragment.Types[name]
			merged.TypeOrder = append(merged.TypeOrder, name)
		}
		for _, name := range fragment.ContainerOrder {
			if _, exists := merged.Containers[name]; exists {
				return nil, fmt.Errorf("container '%s' is declared in more than one manifest (seen again in %s)", name, filePaths[i])
			}
			merged.Containers[name] = fragment.Containers[name]
			merged.ContainerOrder = append(merged.ContainerOrder, name)
		}
	}

	logger.Info("Model manifests loaded.", "files", len(filePaths), "types", len(merged.Types), "containers", len(merged.Containers))
	return merged, nil
}
