package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/config"
	"github.com/thoreinstein/pluginkit/internal/definition"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/validator"
)

var (
	validateKind   string
	validateStrict bool
	validateJSON   bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateKind, "kind", "k", "",
		"definition kind: agent, command, skill (default: inferred from the path)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "report missing descriptions and empty bodies")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check an agent, command or skill definition",
	Long: `Parse a definition and report problems with its fields.

The kind is inferred from the path when --kind is not given: SKILL.md is
a skill, files under a commands/ directory are commands and everything
else is an agent.`,
	Example: `  pluginkit validate agents/code-reviewer.md
  pluginkit validate skills/pdf/SKILL.md --strict --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func runValidate(cmd *cobra.Command, path string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	kind := component.Kind(validateKind)
	if kind == "" {
		kind = inferKind(path)
	}
	if kind == component.KindMCP || !kind.Valid() {
		return errors.NewUserError(
			errors.Newf("cannot validate kind %q", validateKind),
			"use --kind agent, command or skill",
		)
	}

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	return validateFile(cmd, cfg, path, kind, format)
}

func validateFile(cmd *cobra.Command, cfg *config.Config, path string, kind component.Kind, format validator.Format) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	reporter := validator.NewReporter(out, format)

	def, err := newLoader(cfg).Load(ctx, path, kind)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.NewUserError(err, "check the file path")
		}
		if format == validator.FormatJSON {
			result := &validator.Result{Path: path}
			result.AddError("frontmatter", err.Error(), nil)
			if rerr := reporter.Report(result); rerr != nil {
				return errors.Wrap(rerr, "writing report")
			}
		}
		return errors.NewParseError(err, path)
	}

	result := definition.NewValidator(
		definition.WithStrict(validateStrict),
		definition.WithModels(cfg.Frontmatter.KnownModels...),
	).Validate(def)
	result.Path = path

	logging.FromContext(ctx).Debug("validated definition",
		"path", path, "kind", kind,
		"errors", len(result.Errors()), "warnings", len(result.Warnings()))

	if err := reporter.Report(result); err != nil {
		return errors.Wrap(err, "writing report")
	}
	if result.HasErrors() {
		return errReported
	}
	return nil
}

// newLoader returns a definition loader for the configured classifier and
// size limit.
func newLoader(cfg *config.Config) *definition.Loader {
	return definition.NewLoader(
		definition.WithParser(cfg.Parser()),
		definition.WithMaxSize(cfg.MaxResourceSize),
	)
}

// inferKind guesses the kind of the definition at path from its location.
func inferKind(path string) component.Kind {
	if filepath.Base(path) == "SKILL.md" {
		return component.KindSkill
	}
	dir := filepath.Base(filepath.Dir(path))
	if strings.EqualFold(dir, "commands") {
		return component.KindCommand
	}
	return component.KindAgent
}
