package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/doctor"
	"github.com/thoreinstein/pluginkit/internal/errors"
)

var (
	doctorJSON bool
	doctorAll  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVarP(&doctorAll, "all", "a", false,
		"show every check including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose marketplace and install problems",
	Long: `Run diagnostic checks on the marketplace checkout and the install root.

Checks that marketplace.json is readable, that the install directory is
writable with safe permissions, that .mcp.json parses without literal
tokens, that installed definitions parse, and that every recorded
component is still present.

Output modes:
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if doctorJSON && quiet {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --json and --quiet together")
	}

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	catalog, _ := marketplaceFor(cfg)

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewManifestCheck(catalog))
	runner.AddCheck(doctor.NewInstallDirCheck(cfg.InstallDir))
	runner.AddCheck(doctor.NewMCPConfigCheck(cfg.InstallDir))
	runner.AddCheck(doctor.NewDefinitionsCheck(cfg.InstallDir, cfg.Parser(), cfg.MaxResourceSize))
	runner.AddCheck(doctor.NewRecordCheck(cfg.InstallDir))

	report := runner.Run(cmd.Context())

	switch {
	case doctorJSON:
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	case !quiet:
		writeDoctorText(cmd.OutOrStdout(), report, doctorAll)
	}

	if report.HasErrors() {
		return errors.NewExitError(nil, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

func writeDoctorText(w io.Writer, report *doctor.Report, showAll bool) {
	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
