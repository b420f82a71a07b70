package marketplace

import (
	"encoding/json"
	"io/fs"
	"slices"
	"sort"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/paths"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// recordVersion is the schema version of installed_plugins.json.
const recordVersion = 1

// recordFile is the layout of installed_plugins.json.
type recordFile struct {
	Version int               `json:"version"`
	Plugins []InstalledPlugin `json:"plugins"`
}

// records maps plugin names to their install records.
type records map[string]*InstalledPlugin

// owners returns the plugins other than except that list ref.
func (r records) owners(ref, except string) []string {
	var names []string
	for name, rec := range r {
		if name != except && slices.Contains(rec.Components, ref) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// sorted returns the records ordered by plugin name.
func (r records) sorted() []InstalledPlugin {
	list := make([]InstalledPlugin, 0, len(r))
	for _, rec := range r {
		list = append(list, *rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// ReadInstalled returns the install records kept below root, sorted by
// plugin name. A missing record file yields no records.
func ReadInstalled(root string) ([]InstalledPlugin, error) {
	r, err := readRecords(root)
	if err != nil {
		return nil, err
	}
	return r.sorted(), nil
}

func readRecords(root string) (records, error) {
	path := paths.InstalledRecordPath(root)
	data, err := fileutil.ReadFileWithLimit(path)
	if errors.Is(err, fs.ErrNotExist) {
		return records{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading installed plugins")
	}

	var f recordFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if f.Version > recordVersion {
		return nil, errors.Newf("%s: unsupported version %d", path, f.Version)
	}

	r := make(records, len(f.Plugins))
	for i := range f.Plugins {
		rec := f.Plugins[i]
		r[rec.Name] = &rec
	}
	return r, nil
}

func writeRecords(root string, r records) error {
	f := recordFile{Version: recordVersion, Plugins: r.sorted()}
	if err := fileutil.AtomicWriteJSON(paths.InstalledRecordPath(root), f); err != nil {
		return errors.Wrap(err, "writing installed plugins")
	}
	return nil
}
