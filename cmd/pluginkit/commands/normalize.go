package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// normalizeWrite holds the value of the --write flag.
var normalizeWrite bool

func init() {
	normalizeCmd.Flags().BoolVarP(&normalizeWrite, "write", "w", false, "rewrite the file in place")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Rewrite frontmatter so strict YAML parsers accept it",
	Long: `Print the document with its frontmatter normalized: multi-line name and
description values become block scalars and values containing ':' or
'<' are quoted. The body is left untouched.

With --write the file is replaced atomically, and only when something
changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNormalize(cmd, args[0])
	},
}

func runNormalize(cmd *cobra.Command, path string) error {
	logger := logging.FromContext(cmd.Context())

	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	data, err := readDocument(path, cfg.MaxResourceSize)
	if err != nil {
		return err
	}

	original := string(data)
	normalized := cfg.Parser().Normalize(original)
	changed := normalized != original
	if changed {
		logger.Debug("normalized document", "path", path)
	}

	if !normalizeWrite {
		_, err := io.WriteString(cmd.OutOrStdout(), normalized)
		return errors.Wrap(err, "writing output")
	}

	if !changed {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already normalized\n", path)
		}
		return nil
	}

	perm := os.FileMode(fileutil.FilePerm)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fileutil.AtomicWriteFile(path, []byte(normalized), perm); err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "writing %s", path), "check file permissions")
	}

	logger.Info("rewrote document", "path", path)
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Normalized %s\n", path)
	}
	return nil
}
