package marketplace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/definition"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/mcp"
	"github.com/thoreinstein/pluginkit/internal/paths"
	"github.com/thoreinstein/pluginkit/internal/validator"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// ErrComponentNotFound indicates a requested component the plugin does not
// provide.
var ErrComponentNotFound = errors.New("component not found in plugin")

// Installer installs plugin components into an install root.
// Install and Uninstall calls on one Installer are serialized.
type Installer struct {
	catalog   *Catalog
	scanner   *Scanner
	loader    *definition.Loader
	validator *definition.Validator
	root      string
	now       func() time.Time

	mu sync.Mutex
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithLoader sets the definition loader used for discovery and installs.
func WithLoader(l *definition.Loader) InstallerOption {
	return func(i *Installer) {
		i.loader = l
	}
}

// WithValidator sets the validator run on every definition before install.
func WithValidator(v *definition.Validator) InstallerOption {
	return func(i *Installer) {
		i.validator = v
	}
}

// WithClock sets the time source for install timestamps.
func WithClock(now func() time.Time) InstallerOption {
	return func(i *Installer) {
		i.now = now
	}
}

// NewInstaller creates an Installer for plugins of catalog, installing into
// root.
func NewInstaller(catalog *Catalog, root string, opts ...InstallerOption) *Installer {
	i := &Installer{
		catalog: catalog,
		root:    root,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.loader == nil {
		i.loader = definition.NewLoader()
	}
	if i.validator == nil {
		i.validator = definition.NewValidator()
	}
	i.scanner = NewScanner(i.loader)
	return i
}

// Details returns the plugin called name with its discovered components.
func (i *Installer) Details(ctx context.Context, name string) (*Details, error) {
	p, err := i.catalog.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	dir, err := i.catalog.PluginDir(p)
	if err != nil {
		return nil, err
	}
	return i.scanner.Details(ctx, p, dir)
}

// Install installs the listed "kind:name" components of a plugin. Each
// component is attempted independently; failures are reported in the
// response and never stop the batch. An error is returned only when the
// plugin cannot be resolved or the install record cannot be written.
func (i *Installer) Install(ctx context.Context, pluginName string, components []string) (*InstallResponse, error) {
	logger := logging.FromContext(ctx).With("plugin", pluginName)

	d, err := i.Details(ctx, pluginName)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	resp := &InstallResponse{
		PluginName: d.Name,
		Version:    d.Version,
		Installed:  []string{},
		Failed:     []InstallResult{},
	}

	for _, raw := range components {
		ref, err := component.ParseRef(raw)
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			err = i.install(ctx, d, ref)
		}
		if err != nil {
			logger.Warn("install failed", "component", raw, "error", err)
			resp.Failed = append(resp.Failed, InstallResult{Component: raw, Error: err.Error()})
			continue
		}
		if !slices.Contains(resp.Installed, ref.String()) {
			resp.Installed = append(resp.Installed, ref.String())
		}
		logger.Info("installed component", "component", ref.String())
	}

	if len(resp.Installed) > 0 {
		if err := i.record(d, resp.Installed); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (i *Installer) install(ctx context.Context, d *Details, ref component.Ref) error {
	sum, ok := d.Lookup(ref)
	if !ok {
		return errors.Wrapf(ErrComponentNotFound, "%s in plugin %q", ref, d.Name)
	}

	switch ref.Kind {
	case component.KindAgent:
		return i.installDefinition(ctx, sum.Path, ref, paths.AgentPath(i.root, ref.Name))
	case component.KindCommand:
		return i.installDefinition(ctx, sum.Path, ref, paths.CommandPath(i.root, ref.Name))
	case component.KindSkill:
		return i.installSkill(ctx, sum.Path, ref)
	case component.KindMCP:
		return i.installMCP(sum.Path, ref)
	default:
		return errors.Wrapf(component.ErrUnknownKind, "%q", ref.Kind)
	}
}

// load reads and validates a definition. Validation warnings are logged.
func (i *Installer) load(ctx context.Context, path string, ref component.Ref) (*definition.Definition, error) {
	def, err := i.loader.Load(ctx, path, ref.Kind)
	if err != nil {
		return nil, err
	}

	result := i.validator.Validate(def)
	for _, w := range result.Warnings() {
		logging.FromContext(ctx).Warn("validation warning", "component", ref.String(), "issue", w.Error())
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return def, nil
}

func (i *Installer) installDefinition(ctx context.Context, src string, ref component.Ref, dst string) error {
	def, err := i.load(ctx, src, ref)
	if err != nil {
		return err
	}
	data, err := def.Canonical()
	if err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(dst, data, fileutil.FilePerm)
}

// installSkill copies the skill directory and rewrites its SKILL.md in
// canonical form.
func (i *Installer) installSkill(ctx context.Context, src string, ref component.Ref) error {
	def, err := i.load(ctx, src, ref)
	if err != nil {
		return err
	}
	data, err := def.Canonical()
	if err != nil {
		return err
	}

	return replaceDir(filepath.Dir(src), paths.SkillPath(i.root, ref.Name), func(dir string) error {
		return fileutil.AtomicWriteFile(filepath.Join(dir, paths.SkillFile), data, fileutil.FilePerm)
	})
}

// installMCP merges one server of the plugin .mcp.json into the install
// root's .mcp.json.
func (i *Installer) installMCP(src string, ref component.Ref) error {
	f, err := mcp.ReadFile(src)
	if err != nil {
		return err
	}
	entry := f.Servers[ref.Name]
	if entry == nil {
		return errors.Wrapf(ErrComponentNotFound, "%s in %s", ref, src)
	}

	server, err := mcp.FromEntry(ref.Name, entry)
	if err != nil {
		return err
	}
	var errs []error
	for _, issue := range mcp.Validate(server).Errors() {
		// Plugin .mcp.json entries usually carry no description.
		if issue.Field == "description" {
			continue
		}
		errs = append(errs, issue)
	}
	if len(errs) > 0 {
		return errors.Mark(errors.Join(errs...), validator.ErrInvalid)
	}

	return mcp.MergeFile(paths.MCPConfigPath(i.root), map[string]*mcp.Entry{ref.Name: entry})
}

// record merges installed into the plugin's install record.
func (i *Installer) record(d *Details, installed []string) error {
	recs, err := readRecords(i.root)
	if err != nil {
		return err
	}

	rec := recs[d.Name]
	if rec == nil {
		rec = &InstalledPlugin{Name: d.Name}
		recs[d.Name] = rec
	}
	rec.Version = d.Version
	rec.InstalledAt = i.now().UTC().Format(time.RFC3339)
	for _, c := range installed {
		if !slices.Contains(rec.Components, c) {
			rec.Components = append(rec.Components, c)
		}
	}
	slices.Sort(rec.Components)

	return writeRecords(i.root, recs)
}

// Uninstall removes the listed "kind:name" components of a plugin. Only
// components recorded as installed for the plugin can be removed; others
// fail with errors.ErrNotInstalled. Files still listed by another plugin's
// record are kept.
func (i *Installer) Uninstall(ctx context.Context, pluginName string, components []string) (*UninstallResponse, error) {
	logger := logging.FromContext(ctx).With("plugin", pluginName)

	i.mu.Lock()
	defer i.mu.Unlock()

	recs, err := readRecords(i.root)
	if err != nil {
		return nil, err
	}
	rec := recs[pluginName]

	resp := &UninstallResponse{
		PluginName:  pluginName,
		Uninstalled: []string{},
		Failed:      []InstallResult{},
	}

	for _, raw := range components {
		ref, err := component.ParseRef(raw)
		if err == nil && (rec == nil || !slices.Contains(rec.Components, ref.String())) {
			err = errors.Wrapf(errors.ErrNotInstalled, "%s", ref)
		}
		if err == nil {
			if owners := recs.owners(ref.String(), pluginName); len(owners) > 0 {
				logger.Info("keeping component used by other plugins", "component", ref.String(), "owners", owners)
			} else {
				err = i.remove(ref)
			}
		}
		if err != nil {
			logger.Warn("uninstall failed", "component", raw, "error", err)
			resp.Failed = append(resp.Failed, InstallResult{Component: raw, Error: err.Error()})
			continue
		}

		rec.Components = slices.DeleteFunc(rec.Components, func(c string) bool { return c == ref.String() })
		resp.Uninstalled = append(resp.Uninstalled, ref.String())
		logger.Info("uninstalled component", "component", ref.String())
	}

	if len(resp.Uninstalled) == 0 {
		return resp, nil
	}
	if len(rec.Components) == 0 {
		delete(recs, pluginName)
	}
	if err := writeRecords(i.root, recs); err != nil {
		return resp, err
	}
	return resp, nil
}

func (i *Installer) remove(ref component.Ref) error {
	var err error
	switch ref.Kind {
	case component.KindAgent:
		err = os.Remove(paths.AgentPath(i.root, ref.Name))
	case component.KindCommand:
		err = os.Remove(paths.CommandPath(i.root, ref.Name))
	case component.KindSkill:
		err = os.RemoveAll(paths.SkillPath(i.root, ref.Name))
	case component.KindMCP:
		_, err = mcp.RemoveFromFile(paths.MCPConfigPath(i.root), []string{ref.Name})
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "removing %s", ref)
	}
	return nil
}

// Installed lists the install records sorted by plugin name.
func (i *Installer) Installed(ctx context.Context) ([]InstalledPlugin, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	list, err := ReadInstalled(i.root)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("read install records", "plugins", len(list))
	return list, nil
}
