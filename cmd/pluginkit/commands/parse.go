package commands

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// parseFormat holds the value of the --format flag.
var parseFormat string

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "output format: json, yaml, toml")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the frontmatter and body of a definition",
	Long: `Parse a markdown document with YAML frontmatter and print its metadata
mapping and body.

Descriptions that run over several lines or contain unquoted colons are
repaired before the YAML is loaded, so files written for lenient
parsers are accepted.`,
	Example: `  pluginkit parse agents/code-reviewer.md
  pluginkit parse commands/deploy.md --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParseWithWriter(cmd.OutOrStdout(), args[0])
	},
}

// parseOutput is the document printed by parse.
type parseOutput struct {
	Metadata map[string]any `json:"metadata" yaml:"metadata" toml:"metadata"`
	Body     string         `json:"body" yaml:"body" toml:"body"`
}

func runParseWithWriter(w io.Writer, path string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	data, err := readDocument(path, cfg.MaxResourceSize)
	if err != nil {
		return err
	}

	res, err := cfg.Parser().Parse(string(data))
	if err != nil {
		return errors.NewParseError(errors.Wrapf(err, "parsing %s", path), path)
	}

	return writeParsed(w, parseOutput{Metadata: res.Metadata, Body: res.Body}, parseFormat)
}

func writeParsed(w io.Writer, out parseOutput, format string) error {
	switch format {
	case "json":
		return writeJSON(w, out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return errors.Wrap(enc.Encode(out), "encoding TOML")
	default:
		return errors.NewUserError(
			errors.Newf("unsupported format %q", format),
			"use --format json, yaml or toml",
		)
	}
}

// readDocument reads path, mapping a missing or oversized file to a user
// error.
func readDocument(path string, limit int64) ([]byte, error) {
	data, err := fileutil.ReadFileWithMax(path, limit)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, errors.NewUserError(errors.Wrapf(err, "reading %s", path), "check the file path")
	case errors.Is(err, fileutil.ErrFileTooLarge):
		return nil, errors.NewUserError(errors.Wrapf(err, "reading %s", path), "raise max_resource_size in config.yaml")
	default:
		return nil, errors.Wrapf(err, "reading %s", path)
	}
}
