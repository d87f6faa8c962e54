package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/pkg/markers"
	"github.com/goliatone/go-mapprefs/pkg/resolver"
	"github.com/goliatone/go-mapprefs/pkg/store"
	"github.com/goliatone/go-mapprefs/pkg/viewport"
)

var (
	containerWidth  float64
	containerHeight float64
)

var dragCmd = &cobra.Command{
	Use:   "drag <marker> <dx> <dy>",
	Short: "Move a marker by a pointer delta in pixels and persist the override",
	Long: `Runs one drag gesture on a marker at the zone's saved zoom. The delta is
measured in client pixels against a container of --width x --height.`,
	Args: cobra.ExactArgs(3),
	RunE: runDrag,
}

var zoomCmd = &cobra.Command{
	Use:   "zoom <in|out|wheel DELTA|set VALUE>",
	Short: "Change the zone's map zoom and persist it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runZoom,
}

func init() {
	for _, c := range []*cobra.Command{dragCmd, zoomCmd} {
		c.Flags().Float64Var(&containerWidth, "width", 1280, "map container width in pixels")
		c.Flags().Float64Var(&containerHeight, "height", 720, "map container height in pixels")
	}
}

func runDrag(cmd *cobra.Command, args []string) error {
	dx, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("dx: %w", err)
	}
	dy, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("dy: %w", err)
	}
	return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
		ctx := cmd.Context()
		ed := s.MarkerEditor(ctx)
		from, err := ed.Position(args[0])
		if err != nil {
			return err
		}
		if err := ed.Begin(args[0], markers.Container{Width: containerWidth, Height: containerHeight}); err != nil {
			return err
		}
		if _, err := ed.Move(dx, dy, s.Bundle().MapScale); err != nil {
			return err
		}
		to, err := ed.End(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%.2f, %.2f) -> (%.2f, %.2f)\n",
			titleStyle.Render(args[0]), dimStyle.Render(s.Zone()), from[0], from[1], to[0], to[1])
		return nil
	})
}

func runZoom(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *resolver.Session, _ *store.Safe) error {
		size := viewport.Size{Width: containerWidth, Height: containerHeight}
		view := viewport.New(size, s.Bundle().MapScale)
		switch args[0] {
		case "in":
			view.Step(1)
		case "out":
			view.Step(-1)
		case "wheel", "set":
			if len(args) != 2 {
				return fmt.Errorf("zoom %s needs a value", args[0])
			}
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("zoom %s: %w", args[0], err)
			}
			if args[0] == "wheel" {
				view.Wheel(v)
			} else {
				view.SetZoom(v)
			}
		default:
			return fmt.Errorf("unknown zoom action %q", args[0])
		}
		s.Update(cmd.Context(), func(b *mapprefs.Bundle) { b.MapScale = view.Zoom() })

		bounds := viewport.PanBounds(size, view.Zoom())
		fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f  %s ±%.0f x ±%.0f px\n",
			keyStyle.Render("zoom"), view.Zoom(), dimStyle.Render("pan bounds"), bounds.Max[0], bounds.Max[1])
		return nil
	})
}
