package marketplace

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/definition"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/mcp"
	"github.com/thoreinstein/pluginkit/internal/paths"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// Scanner discovers the components of a plugin directory.
type Scanner struct {
	loader  *definition.Loader
	workers int
}

// NewScanner creates a Scanner that reads definition headers with loader.
// A nil loader means definition.NewLoader().
func NewScanner(loader *definition.Loader) *Scanner {
	if loader == nil {
		loader = definition.NewLoader()
	}
	return &Scanner{
		loader:  loader,
		workers: runtime.GOMAXPROCS(0),
	}
}

// candidate is a definition file waiting to be parsed.
type candidate struct {
	kind component.Kind
	path string
}

// Details discovers the components of p in dir. Definition headers are
// parsed concurrently. Files that fail to parse are logged and skipped.
func (s *Scanner) Details(ctx context.Context, p *Plugin, dir string) (*Details, error) {
	logger := logging.FromContext(ctx).With("plugin", p.Name)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "plugin %q directory", p.Name)
	}
	if !info.IsDir() {
		return nil, errors.Newf("plugin %q: %s is not a directory", p.Name, dir)
	}

	cands := s.candidates(logger, dir)
	defs := make([]*definition.Definition, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			def, err := s.loader.LoadHeader(gctx, c.path, c.kind)
			if err != nil {
				logger.Warn("skipping unparseable component", "kind", c.kind, "path", c.path, "error", err)
				return nil
			}
			defs[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Details{
		Plugin: *p,
		Dir:    dir,
		Readme: readReadme(logger, dir),
		Components: Components{
			Agents:     []string{},
			Commands:   []string{},
			Skills:     []string{},
			MCPServers: []string{},
		},
	}

	byKind := make(map[component.Kind][]Summary)
	seen := make(map[component.Ref]bool)
	for _, def := range defs {
		if def == nil {
			continue
		}
		ref := def.Ref()
		if seen[ref] {
			logger.Warn("skipping duplicate component", "component", ref.String(), "path", def.Path)
			continue
		}
		seen[ref] = true
		byKind[ref.Kind] = append(byKind[ref.Kind], Summary{
			Ref:         ref,
			Component:   ref.String(),
			Description: firstLine(def.Description),
			Path:        def.Path,
		})
	}
	byKind[component.KindMCP] = mcpSummaries(logger, dir)

	for _, kind := range component.Kinds() {
		sums := byKind[kind]
		sort.Slice(sums, func(i, j int) bool { return sums[i].Ref.Name < sums[j].Ref.Name })
		for _, sum := range sums {
			d.Summaries = append(d.Summaries, sum)
			switch kind {
			case component.KindAgent:
				d.Components.Agents = append(d.Components.Agents, sum.Ref.Name)
			case component.KindCommand:
				d.Components.Commands = append(d.Components.Commands, sum.Ref.Name)
			case component.KindSkill:
				d.Components.Skills = append(d.Components.Skills, sum.Ref.Name)
			case component.KindMCP:
				d.Components.MCPServers = append(d.Components.MCPServers, sum.Ref.Name)
			}
		}
	}

	logger.Debug("scanned plugin", "components", len(d.Summaries))
	return d, nil
}

// candidates lists agents/*.md, commands/*.md and skills/*/SKILL.md below
// dir.
func (s *Scanner) candidates(logger *slog.Logger, dir string) []candidate {
	var cands []candidate

	for _, k := range []struct {
		kind component.Kind
		sub  string
	}{
		{component.KindAgent, paths.AgentsDir},
		{component.KindCommand, paths.CommandsDir},
	} {
		entries := readDir(logger, filepath.Join(dir, k.sub))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), paths.DefinitionExt) {
				continue
			}
			cands = append(cands, candidate{kind: k.kind, path: filepath.Join(dir, k.sub, e.Name())})
		}
	}

	for _, e := range readDir(logger, filepath.Join(dir, paths.SkillsDir)) {
		if !e.IsDir() {
			continue
		}
		skillFile := filepath.Join(dir, paths.SkillsDir, e.Name(), paths.SkillFile)
		if _, err := os.Stat(skillFile); err != nil {
			continue
		}
		cands = append(cands, candidate{kind: component.KindSkill, path: skillFile})
	}
	return cands
}

func readDir(logger *slog.Logger, dir string) []os.DirEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read directory", "path", dir, "error", err)
		}
		return nil
	}
	return entries
}

func readReadme(logger *slog.Logger, dir string) string {
	path := filepath.Join(dir, paths.ReadmeFile)
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read README", "path", path, "error", err)
		}
		return ""
	}
	return string(data)
}

func mcpSummaries(logger *slog.Logger, dir string) []Summary {
	path := paths.MCPConfigPath(dir)
	f, err := mcp.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read MCP config", "path", path, "error", err)
		}
		return nil
	}

	var sums []Summary
	for _, name := range f.Names() {
		ref := component.Ref{Kind: component.KindMCP, Name: name}
		sum := Summary{Ref: ref, Component: ref.String(), Path: path}
		if entry := f.Servers[name]; entry != nil {
			if s, err := mcp.FromEntry(name, entry); err == nil {
				sum.Description = s.Description
			}
		}
		sums = append(sums, sum)
	}
	return sums
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
