package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/pkg/resolver"
	"github.com/goliatone/go-mapprefs/pkg/store"
)

var traceFlag bool

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the working bundle for a zone",
	Long: `Migrates the stored keys for the zone, resolves the four tiers and
prints the resulting bundle. With --trace each numeric field is listed with
the tier that supplied it.`,
	RunE: runResolve,
}

var setCmd = &cobra.Command{
	Use:   "set path=value...",
	Short: "Edit the working bundle and persist it to the zone's settings",
	Example: `  mapprefs set tuning.harvest.hue=200 layers.player-base=true
  mapprefs set mapOpacity=0.6 --zone voidreach`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

var saveDefaultsCmd = &cobra.Command{
	Use:   "save-defaults",
	Short: "Save the working bundle as the zone's defaults",
	RunE: sessionAction(func(s *resolver.Session, cmd *cobra.Command) (bool, string) {
		return s.SaveZoneDefaults(cmd.Context()), "Defaults not saved: storage unavailable"
	}),
}

var resetDefaultsCmd = &cobra.Command{
	Use:   "reset-defaults",
	Short: "Re-apply the zone's saved defaults (not persisted)",
	RunE: sessionAction(func(s *resolver.Session, cmd *cobra.Command) (bool, string) {
		return s.ResetZoneDefaults(cmd.Context()), "No saved defaults for " + s.Zone()
	}),
}

var saveGlobalCmd = &cobra.Command{
	Use:   "save-global",
	Short: "Save the working bundle as the global defaults and global settings",
	RunE: sessionAction(func(s *resolver.Session, cmd *cobra.Command) (bool, string) {
		return s.SaveGlobalDefaults(cmd.Context()), "Global defaults not saved: storage unavailable"
	}),
}

var applyGlobalCmd = &cobra.Command{
	Use:   "apply-global",
	Short: "Re-apply the global defaults to the working bundle (not persisted)",
	RunE: sessionAction(func(s *resolver.Session, cmd *cobra.Command) (bool, string) {
		return s.ApplyGlobalDefaults(cmd.Context()), "No global defaults saved"
	}),
}

var applyAllCmd = &cobra.Command{
	Use:   "apply-all",
	Short: "Write the working bundle to the global keys and to every zone",
	RunE: sessionAction(func(s *resolver.Session, cmd *cobra.Command) (bool, string) {
		return s.ApplyToAllZones(cmd.Context()), "Apply to all zones incomplete: storage unavailable"
	}),
}

func init() {
	resolveCmd.Flags().BoolVar(&traceFlag, "trace", false, "show the tier supplying each numeric field")
}

func runResolve(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
		out := cmd.OutOrStdout()
		if err := printBundle(out, s.Zone(), s.Bundle()); err != nil {
			return err
		}
		if traceFlag {
			return printTrace(out, s.Resolved())
		}
		return nil
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
		for _, arg := range args {
			path, value, err := splitAssignment(arg)
			if err != nil {
				return err
			}
			if _, err := s.Set(cmd.Context(), path, value); err != nil {
				return err
			}
		}
		return printBundle(cmd.OutOrStdout(), s.Zone(), s.Bundle())
	})
}

// sessionAction adapts an explicit save action into a command. The action
// returns whether it succeeded and the message to show when it did not.
func sessionAction(action func(*resolver.Session, *cobra.Command) (bool, string)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
			ok, failure := action(s, cmd)
			return printStatus(cmd.OutOrStdout(), ok, s.Status(), failure)
		})
	}
}

func printBundle(w io.Writer, zone string, b mapprefs.Bundle) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, titleStyle.Render("zone "+zone))
	fmt.Fprintln(w, string(raw))
	return nil
}

func printTrace(w io.Writer, view *mapprefs.View) error {
	var rows []string
	for _, path := range mapprefs.NumericPaths() {
		value, trace, err := view.ResolveWithTrace(path)
		if err != nil {
			return err
		}
		source := "shipped"
		if winner, ok := trace.Winner(); ok {
			source = winner.Tier.Name
			if winner.Key != "" {
				source += " " + dimStyle.Render(winner.Key)
			}
		}
		rows = append(rows, fmt.Sprintf("%s = %v  %s", keyStyle.Render(path), value, source))
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(rows, "\n")))
	return nil
}
