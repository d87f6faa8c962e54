package mapprefs

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyOverridesOnlyPresentFields(t *testing.T) {
	patch := Patch{
		Layers: &LayersPatch{PlayerBase: ptr(true)},
		Tuning: &TuningPatch{
			Event: &AreaTuningPatch{AreaOpacity: ptr(0.0)},
		},
		MapScale: ptr(1.5),
	}
	got := ShippedDefaults().Apply(patch)

	want := ShippedDefaults()
	want.Layers.PlayerBase = true
	want.Tuning.Event.AreaOpacity = 0
	want.MapScale = 1.5
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("apply mismatch (-want +got):\n%s", diff)
	}
}

func TestBundlePatchRoundTrip(t *testing.T) {
	b := ShippedDefaults()
	b.Tuning.RaidBoss.AreaRadius = 1.7
	b.PanelOpen = true

	got := Bundle{}.Apply(b.Patch())
	if diff := cmp.Diff(b, got); diff != "" {
		t.Fatalf("full patch should reproduce the bundle (-want +got):\n%s", diff)
	}
}

func TestPatchOmitsAbsentFields(t *testing.T) {
	payload, err := json.Marshal(Patch{MapScale: ptr(1.5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"mapScale":1.5}` {
		t.Fatalf("unexpected payload %s", payload)
	}
	if !(Patch{}).IsEmpty() || (Patch{PanelOpen: ptr(false)}).IsEmpty() {
		t.Fatalf("IsEmpty should only report patches without fields")
	}
}

func TestPatchForPath(t *testing.T) {
	patch, err := PatchForPath("layers.raid-boss", "false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patch.Layers == nil || patch.Layers.RaidBoss == nil || *patch.Layers.RaidBoss {
		t.Fatalf("expected raid-boss layer set to false, got %+v", patch.Layers)
	}
	if patch.Tuning != nil || patch.MapOpacity != nil {
		t.Fatalf("expected a single field, got %+v", patch)
	}

	patch, err = PatchForPath(" tuning.playerBase.cornerRadius ", " 1.25 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *patch.Tuning.PlayerBase.CornerRadius; got != 1.25 {
		t.Fatalf("expected 1.25, got %v", got)
	}
}

func TestPatchForPathRejectsUnknownPaths(t *testing.T) {
	for _, path := range []string{"", "tuning..hue", "tuning.harvest.colour", "tuning.harvest", "zoom"} {
		if _, err := PatchForPath(path, "1"); !errors.Is(err, ErrUnknownPath) {
			t.Fatalf("path %q: expected ErrUnknownPath, got %v", path, err)
		}
	}
	_, err := PatchForPath("mapOpacity", "opaque")
	if err == nil || errors.Is(err, ErrUnknownPath) {
		t.Fatalf("expected a value error, got %v", err)
	}
}

func TestBundleSet(t *testing.T) {
	got, err := ShippedDefaults().Set("tuning.harvest.hue", "200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tuning.Harvest.Hue != 200 {
		t.Fatalf("expected hue 200, got %v", got.Tuning.Harvest.Hue)
	}
	unchanged, err := got.Set("tuning.harvest.colour", "1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if diff := cmp.Diff(got, unchanged); diff != "" {
		t.Fatalf("failed set should return the bundle unchanged:\n%s", diff)
	}
}

func TestBundleSetAcceptsZeroAndOne(t *testing.T) {
	cases := []struct {
		path string
		raw  string
		want float64
	}{
		{"mapScale", "1", 1},
		{"tuning.raidBoss.hue", "0", 0},
		{"tuning.harvest.nodeSize", "1", 1},
		{"tuning.event.areaOpacity", "0", 0},
		{"mapOpacity", " 1 ", 1},
	}
	for _, tc := range cases {
		got, err := ShippedDefaults().Set(tc.path, tc.raw)
		if err != nil {
			t.Fatalf("%s=%s: unexpected error: %v", tc.path, tc.raw, err)
		}
		value, _ := lookupPath(toMap(got), splitPath(tc.path))
		if value != tc.want {
			t.Fatalf("%s = %v, want %v", tc.path, value, tc.want)
		}
	}
}

func TestBundleSetRangeEndpoints(t *testing.T) {
	for _, path := range NumericPaths() {
		r, _ := RangeFor(path)
		for _, want := range []float64{r.Min, r.Max} {
			raw := strconv.FormatFloat(want, 'g', -1, 64)
			got, err := ShippedDefaults().Set(path, raw)
			if err != nil {
				t.Fatalf("%s=%s: unexpected error: %v", path, raw, err)
			}
			value, ok := lookupPath(toMap(got), splitPath(path))
			if !ok || value != want {
				t.Fatalf("%s = %v, want %v", path, value, want)
			}
		}
	}
}

func TestBundleSetToggles(t *testing.T) {
	for _, field := range DescribeFields() {
		if field.Type != "bool" {
			continue
		}
		for _, want := range []bool{true, false} {
			got, err := ShippedDefaults().Set(field.Path, strconv.FormatBool(want))
			if err != nil {
				t.Fatalf("%s=%v: unexpected error: %v", field.Path, want, err)
			}
			value, _ := lookupPath(toMap(got), splitPath(field.Path))
			if value != want {
				t.Fatalf("%s = %v, want %v", field.Path, value, want)
			}
		}
	}
}

func TestBundleSetRejectsMismatchedValues(t *testing.T) {
	cases := map[string]string{
		"layers.raid-boss":   "1",
		"panelOpen":          "yes",
		"mapScale":           "true",
		"tuning.harvest.hue": "NaN",
		"mapOpacity":         "Inf",
	}
	for path, raw := range cases {
		if _, err := ShippedDefaults().Set(path, raw); err == nil {
			t.Fatalf("%s=%s: expected error", path, raw)
		} else if errors.Is(err, ErrUnknownPath) {
			t.Fatalf("%s=%s: known path reported as unknown: %v", path, raw, err)
		}
	}
}

func TestCategoryLayerIDs(t *testing.T) {
	for _, c := range Categories {
		parsed, ok := ParseLayerID(c.LayerID())
		if !ok || parsed != c {
			t.Fatalf("layer id %q did not parse back to %s", c.LayerID(), c)
		}
	}
	var layers Layers
	layers.SetVisible(CategoryRaidBoss, true)
	if !layers.Visible(CategoryRaidBoss) || layers.Visible(CategoryHarvest) {
		t.Fatalf("unexpected visibility %+v", layers)
	}
	if _, ok := ParseLayerID("raidBoss"); ok {
		t.Fatalf("tuning keys are not layer ids")
	}
}
