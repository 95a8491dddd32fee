// Package commands holds the habitctl subcommands. Each one evaluates a habit
// fixture file offline, without a database.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

type options struct {
	file   string
	today  string
	tz     string
	output string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "habitctl",
		Short:         "Evaluate habit streaks offline",
		Long:          "Compute KPIs, streaks and day statuses for a habit described in a JSON or YAML file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "habit fixture (.json, .yaml or .yml)")
	flags.StringVar(&opts.today, "today", "", "evaluation day as YYYY-MM-DD (default: today in --tz)")
	flags.StringVar(&opts.tz, "tz", "UTC", "IANA timezone used when --today is not set")
	flags.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	_ = rootCmd.MarkPersistentFlagRequired("file")

	rootCmd.AddCommand(newKPICmd(opts))
	rootCmd.AddCommand(newStreaksCmd(opts))
	rootCmd.AddCommand(newDaysCmd(opts))

	return rootCmd
}

// evaluator loads the fixture and runs the engine as of the requested day.
func (o *options) evaluator(now time.Time) (*streaks.Evaluator, error) {
	fx, err := loadFixture(o.file)
	if err != nil {
		return nil, err
	}

	today, err := o.resolveToday(now)
	if err != nil {
		return nil, err
	}

	schedule, records, err := fx.build()
	if err != nil {
		return nil, err
	}

	return streaks.New(schedule, records, today), nil
}

func (o *options) resolveToday(now time.Time) (time.Time, error) {
	if o.today != "" {
		d, err := streaks.ParseDate(o.today)
		if err != nil {
			return time.Time{}, fmt.Errorf("--today: %w", err)
		}
		return d, nil
	}

	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("--tz: %w", err)
	}
	return streaks.Today(now, loc), nil
}

func (o *options) write(w io.Writer, v any) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}
