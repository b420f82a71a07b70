package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/definition"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/marketplace"
	"github.com/thoreinstein/pluginkit/internal/mcp"
	"github.com/thoreinstein/pluginkit/internal/paths"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
	"github.com/thoreinstein/pluginkit/pkg/frontmatter"
)

// maxSecureFilePerm is the widest mode for files that may hold secrets (-rw-r--r--).
const maxSecureFilePerm os.FileMode = 0o644

// ManifestCheck verifies that the marketplace manifest can be read and that
// every listed plugin directory exists.
type ManifestCheck struct {
	catalog *marketplace.Catalog
}

var _ Check = (*ManifestCheck)(nil)

// NewManifestCheck creates a check of catalog's manifest.
func NewManifestCheck(catalog *marketplace.Catalog) *ManifestCheck {
	return &ManifestCheck{catalog: catalog}
}

// Name returns the unique identifier for this check.
func (c *ManifestCheck) Name() string {
	return "marketplace-manifest"
}

// Category returns the grouping for this check.
func (c *ManifestCheck) Category() string {
	return "marketplace"
}

// Run reads the manifest, bypassing the catalog cache.
func (c *ManifestCheck) Run(ctx context.Context) *CheckResult {
	manifest := paths.ManifestPath(c.catalog.Dir())

	plugins, err := c.catalog.Plugins(ctx, true)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot read marketplace manifest: %v", err),
			Details: map[string]any{"path": manifest},
			FixHint: "set marketplace_dir in config.yaml to a marketplace checkout",
		}
	}
	if len(plugins) == 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "marketplace lists no installable plugins",
			Details: map[string]any{"path": manifest},
		}
	}

	var broken []string
	for i := range plugins {
		dir, err := c.catalog.PluginDir(&plugins[i])
		if err == nil {
			var info os.FileInfo
			info, err = os.Stat(dir)
			if err == nil && !info.IsDir() {
				err = errors.Newf("%s is not a directory", dir)
			}
		}
		if err != nil {
			broken = append(broken, plugins[i].Name)
		}
	}
	if len(broken) > 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%d plugin(s) point at missing directories", len(broken)),
			Details: map[string]any{"path": manifest, "plugins": broken},
			FixHint: "update the source of these plugins in marketplace.json",
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d plugins listed", len(plugins)),
		Details: map[string]any{"path": manifest},
	}
}

// InstallDirCheck verifies that the install root is a writable directory
// with safe permissions.
type InstallDirCheck struct {
	root string
}

var _ Check = (*InstallDirCheck)(nil)

// NewInstallDirCheck creates a check of the install root.
func NewInstallDirCheck(root string) *InstallDirCheck {
	return &InstallDirCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *InstallDirCheck) Name() string {
	return "install-dir"
}

// Category returns the grouping for this check.
func (c *InstallDirCheck) Category() string {
	return "install"
}

// Run executes the install directory check.
func (c *InstallDirCheck) Run(_ context.Context) *CheckResult {
	details := map[string]any{"path": c.root}

	info, err := os.Stat(c.root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "install directory does not exist yet; it is created on first install",
			Details: details,
		}
	case err != nil:
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot stat install directory: %v", err),
			Details: details,
		}
	case !info.IsDir():
		return &CheckResult{
			Status:  SeverityError,
			Message: "install path is not a directory",
			Details: details,
			FixHint: "set install_dir in config.yaml to a directory",
		}
	}

	scratch, err := os.CreateTemp(c.root, ".pluginkit-doctor-*")
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: "install directory is not writable",
			Details: details,
			FixHint: "chmod u+w " + c.root,
		}
	}
	scratch.Close()
	os.Remove(scratch.Name())

	// Unix permissions do not apply on Windows
	if runtime.GOOS == "windows" {
		return &CheckResult{Status: SeverityPass, Message: "install directory is writable", Details: details}
	}

	var problems, hints []string
	if info.Mode().Perm()&0o002 != 0 {
		problems = append(problems, "install directory is world-writable")
		hints = append(hints, "chmod 755 "+c.root)
	}
	mcpPath := paths.MCPConfigPath(c.root)
	if fi, err := os.Stat(mcpPath); err == nil && fi.Mode().Perm()&^maxSecureFilePerm != 0 {
		problems = append(problems, fmt.Sprintf("%s has mode %04o and may hold secrets", paths.MCPConfigFile, fi.Mode().Perm()))
		hints = append(hints, "chmod 600 "+mcpPath)
	}
	if len(problems) > 0 {
		details["problems"] = problems
		return &CheckResult{
			Status:  SeverityWarning,
			Message: strings.Join(problems, "; "),
			Details: details,
			FixHint: strings.Join(hints, " && "),
		}
	}

	return &CheckResult{Status: SeverityPass, Message: "install directory is writable", Details: details}
}

// MCPConfigCheck parses the installed .mcp.json and looks for secrets
// stored as literal values.
type MCPConfigCheck struct {
	root string
}

var _ Check = (*MCPConfigCheck)(nil)

// NewMCPConfigCheck creates a check of the .mcp.json below root.
func NewMCPConfigCheck(root string) *MCPConfigCheck {
	return &MCPConfigCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *MCPConfigCheck) Name() string {
	return "mcp-config"
}

// Category returns the grouping for this check.
func (c *MCPConfigCheck) Category() string {
	return "mcp"
}

// Run executes the MCP config check.
func (c *MCPConfigCheck) Run(_ context.Context) *CheckResult {
	path := paths.MCPConfigPath(c.root)

	f, err := mcp.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &CheckResult{Status: SeverityPass, Message: "no MCP servers installed"}
	}
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: err.Error(),
			Details: map[string]any{"path": path},
			FixHint: "fix the JSON syntax of " + path,
		}
	}

	details := map[string]any{"path": path, "servers": len(f.Servers)}

	var literal []string
	for name, e := range f.Servers {
		if e == nil {
			continue
		}
		for key, value := range e.Env {
			if logging.ContainsTokenPrefix(value) {
				literal = append(literal, name+"."+key)
			}
		}
	}
	if len(literal) > 0 {
		sort.Strings(literal)
		details["env"] = literal
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%d env value(s) hold literal tokens", len(literal)),
			Details: details,
			FixHint: "reference secrets as ${VAR} instead of storing them in " + paths.MCPConfigFile,
		}
	}

	servers, convErr := f.ServerList()
	if convErr != nil {
		var unmanaged []string
		for _, name := range f.Names() {
			if !slices.ContainsFunc(servers, func(s *mcp.Server) bool { return s.Name == name }) {
				unmanaged = append(unmanaged, name)
			}
		}
		details["unmanaged"] = unmanaged
		return &CheckResult{
			Status:  SeverityInfo,
			Message: fmt.Sprintf("%d of %d MCP servers use launch forms pluginkit does not manage", len(unmanaged), len(f.Servers)),
			Details: details,
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d MCP servers configured", len(f.Servers)),
		Details: details,
	}
}

// DefinitionsCheck parses every installed agent, command and skill.
type DefinitionsCheck struct {
	root    string
	parser  *frontmatter.Parser
	maxSize int64
}

var _ Check = (*DefinitionsCheck)(nil)

// NewDefinitionsCheck creates a check of the definitions below root. A nil
// parser means frontmatter.New().
func NewDefinitionsCheck(root string, parser *frontmatter.Parser, maxSize int64) *DefinitionsCheck {
	if parser == nil {
		parser = frontmatter.New()
	}
	return &DefinitionsCheck{root: root, parser: parser, maxSize: maxSize}
}

// Name returns the unique identifier for this check.
func (c *DefinitionsCheck) Name() string {
	return "definitions"
}

// Category returns the grouping for this check.
func (c *DefinitionsCheck) Category() string {
	return "install"
}

// Run executes the definitions check. Unparseable files are errors; files
// that only parse after normalization are reported as info.
func (c *DefinitionsCheck) Run(ctx context.Context) *CheckResult {
	loader := definition.NewLoader(definition.WithParser(c.parser), definition.WithMaxSize(c.maxSize))

	files := installedDefinitions(c.root)
	if len(files) == 0 {
		return &CheckResult{Status: SeverityPass, Message: "no definitions installed"}
	}

	var broken, lenient []string
	for _, f := range files {
		data, err := fileutil.ReadFileWithMax(f.path, c.maxSize)
		if err == nil {
			_, err = loader.Parse(ctx, data, f.path, f.kind)
		}
		if err != nil {
			broken = append(broken, f.path)
			continue
		}
		if c.parser.Normalize(string(data)) != string(data) {
			lenient = append(lenient, f.path)
		}
	}

	if len(broken) > 0 {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("%d of %d installed definitions cannot be parsed", len(broken), len(files)),
			Details: map[string]any{"files": broken},
			FixHint: "run 'pluginkit validate <file>' for details",
		}
	}
	if len(lenient) > 0 {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: fmt.Sprintf("%d of %d definitions rely on lenient frontmatter", len(lenient), len(files)),
			Details: map[string]any{"files": lenient},
			FixHint: "run 'pluginkit normalize --write <file>'",
		}
	}
	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d definitions parse", len(files)),
	}
}

type definitionFile struct {
	path string
	kind component.Kind
}

// installedDefinitions lists the definition files below root in a stable
// order.
func installedDefinitions(root string) []definitionFile {
	var files []definitionFile
	for _, pattern := range []struct {
		glob string
		kind component.Kind
	}{
		{filepath.Join(root, paths.AgentsDir, "*"+paths.DefinitionExt), component.KindAgent},
		{filepath.Join(root, paths.CommandsDir, "*"+paths.DefinitionExt), component.KindCommand},
		{filepath.Join(root, paths.SkillsDir, "*", paths.SkillFile), component.KindSkill},
	} {
		// Glob only fails on malformed patterns
		matches, _ := filepath.Glob(pattern.glob)
		for _, m := range matches {
			files = append(files, definitionFile{path: m, kind: pattern.kind})
		}
	}
	return files
}

// RecordCheck verifies that every component in installed_plugins.json is
// still present in the install root.
type RecordCheck struct {
	root string
}

var _ Check = (*RecordCheck)(nil)

// NewRecordCheck creates a check of the install records below root.
func NewRecordCheck(root string) *RecordCheck {
	return &RecordCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *RecordCheck) Name() string {
	return "install-records"
}

// Category returns the grouping for this check.
func (c *RecordCheck) Category() string {
	return "install"
}

// Run executes the install record check.
func (c *RecordCheck) Run(_ context.Context) *CheckResult {
	path := paths.InstalledRecordPath(c.root)

	installed, err := marketplace.ReadInstalled(c.root)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: err.Error(),
			Details: map[string]any{"path": path},
			FixHint: "fix or remove " + path,
		}
	}
	if len(installed) == 0 {
		return &CheckResult{Status: SeverityPass, Message: "no plugins recorded"}
	}

	// A broken .mcp.json is reported by MCPConfigCheck
	servers, _ := mcp.ReadFile(paths.MCPConfigPath(c.root))

	var missing []string
	for _, p := range installed {
		for _, ref := range p.Components {
			if !c.present(ref, servers) {
				missing = append(missing, p.Name+": "+ref)
			}
		}
	}
	if len(missing) > 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%d recorded component(s) are missing", len(missing)),
			Details: map[string]any{"path": path, "components": missing},
			FixHint: "reinstall them with 'pluginkit plugin install <plugin> <component>'",
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d plugin(s) recorded, all components present", len(installed)),
		Details: map[string]any{"path": path},
	}
}

func (c *RecordCheck) present(s string, servers *mcp.File) bool {
	ref, err := component.ParseRef(s)
	if err != nil {
		return false
	}
	switch ref.Kind {
	case component.KindAgent:
		return fileExists(paths.AgentPath(c.root, ref.Name))
	case component.KindCommand:
		return fileExists(paths.CommandPath(c.root, ref.Name))
	case component.KindSkill:
		return fileExists(filepath.Join(paths.SkillPath(c.root, ref.Name), paths.SkillFile))
	case component.KindMCP:
		return servers != nil && servers.Servers[ref.Name] != nil
	default:
		return false
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
