package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/internal/config"
	"github.com/goliatone/go-mapprefs/pkg/activity/usersink"
	"github.com/goliatone/go-mapprefs/pkg/resolver"
	"github.com/goliatone/go-mapprefs/pkg/store"
	"github.com/goliatone/go-mapprefs/pkg/zones"
)

var (
	inspectJSON bool
	queryEngine string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the raw stored keys for a zone (debug panel)",
	RunE:  runInspect,
}

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Evaluate an expression against the working bundle",
	Long: `Evaluates an expression with the bundle fields (layers, tuning,
mapOpacity, mapScale, panelOpen) plus zone and tiers in scope.

Examples:
  mapprefs query 'tuning.harvest.hue > 180'
  mapprefs query 'inRange("mapScale", mapScale * 2)'
  mapprefs query --engine cel 'layers["raid-boss"] && mapScale > 1.0'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List known zones",
	RunE:  runZones,
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List editable bundle paths with their ranges",
	RunE:  runFields,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-resolve the zone whenever another process edits the file store",
	RunE:  runWatch,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the activity journal configured under activity.journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print JSON")
	queryCmd.Flags().StringVar(&queryEngine, "engine", "expr", "expression engine (expr, cel, js)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
		report := s.Inspect(cmd.Context())
		out := cmd.OutOrStdout()
		if inspectJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		var rows []string
		rows = append(rows, titleStyle.Render(fmt.Sprintf("zone %s (seed %s)", report.Zone, report.SeedZone)))
		for _, k := range report.Keys {
			state := warnStyle.Render("absent")
			if k.Present {
				state = okStyle.Render(fmt.Sprintf("%d bytes", len(k.Raw)))
			}
			rows = append(rows, fmt.Sprintf("%s %s", keyStyle.Render(k.Key), state))
			if k.Present && verbose {
				rows = append(rows, dimStyle.Render(k.Raw))
			}
		}
		if report.LastError != "" {
			rows = append(rows, warnStyle.Render("last error: "+report.LastError))
		}
		fmt.Fprintln(out, panelStyle.Render(strings.Join(rows, "\n")))
		return nil
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	cache := mapprefs.NewProgramCache()
	var evaluator mapprefs.Evaluator
	switch queryEngine {
	case "expr":
		evaluator = mapprefs.NewExprEvaluator(
			mapprefs.ExprWithProgramCache(cache),
			mapprefs.ExprWithFunctionRegistry(mapprefs.DefaultFunctions()),
		)
	case "cel":
		evaluator = mapprefs.NewCELEvaluator(mapprefs.CELWithProgramCache(cache))
	case "js":
		evaluator = mapprefs.NewJSEvaluator(mapprefs.JSWithProgramCache(cache))
	default:
		return fmt.Errorf("unknown engine %q", queryEngine)
	}
	if evaluator == nil {
		return fmt.Errorf("engine %q is not available in this build: %w", queryEngine, mapprefs.ErrNoEvaluator)
	}
	return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
		value, err := s.View().Evaluate(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
		return nil
	}, mapprefs.WithEvaluator(evaluator), mapprefs.WithProgramCache(cache))
}

func runZones(cmd *cobra.Command, args []string) error {
	catalog := zones.Default()
	out := cmd.OutOrStdout()
	for _, id := range catalog.IDs() {
		zone, _ := catalog.Zone(id)
		marker := ""
		if id == catalog.Seed() {
			marker = dimStyle.Render(" (seed)")
		}
		fmt.Fprintf(out, "%s %s%s %s\n", keyStyle.Render(id), zone.Name, marker,
			dimStyle.Render(fmt.Sprintf("%d markers", len(zone.Markers))))
	}
	return nil
}

func runFields(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, field := range mapprefs.DescribeFields() {
		detail := field.Type
		if field.Range != nil {
			detail = fmt.Sprintf("%s [%g, %g]", field.Type, field.Range.Min, field.Range.Max)
		}
		fmt.Fprintf(out, "%s %s\n", keyStyle.Render(field.Path), dimStyle.Render(detail))
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Activity.Journal == "" {
		return fmt.Errorf("no activity journal configured (set activity.journal or %s)", config.EnvActivityJournal)
	}
	records, err := usersink.ReadJournal(cfg.Activity.Journal)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no activity recorded"))
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(out, "%s %s %s/%s\n",
			dimStyle.Render(r.OccurredAt.Format(time.RFC3339)), keyStyle.Render(r.Verb), r.ObjectType, r.ObjectID)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cfg.Store.Driver != config.DriverFile {
		return fmt.Errorf("watch requires the file store, got %q", cfg.Store.Driver)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withSession(ctx, func(s *resolver.Session, _ *store.Safe) error {
		fs := store.NewFileStore(cfg.Store.Path)
		changes := make(chan struct{}, 1)
		if err := fs.Watch(ctx, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		}); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, dimStyle.Render("watching "+fs.Path()))
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				if err := s.Reload(ctx); err != nil {
					logger.Warn("reload failed", zap.Error(err))
					continue
				}
				if err := printBundle(out, s.Zone(), s.Bundle()); err != nil {
					return err
				}
			}
		}
	})
}
