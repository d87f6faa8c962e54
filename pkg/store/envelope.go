package store

import (
	"encoding/json"
	"fmt"
	"time"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/internal/hydrate"
)

// Envelope is the stored form of a preference bundle.
type Envelope struct {
	ID      string         `json:"id,omitempty"`
	SavedAt time.Time      `json:"savedAt"`
	Bundle  mapprefs.Patch `json:"bundle"`
}

// legacyLayerKeys maps layer keys written before layers were keyed by layer
// id onto the current ids.
var legacyLayerKeys = map[string]string{
	"harvest":    "harvest-node",
	"event":      "event-spawn",
	"raidBoss":   "raid-boss",
	"playerBase": "player-base",
}

var envelopeDecoder = hydrate.NewDecoder[Envelope](
	hydrate.WithPreHook[Envelope](wrapBarePatch),
	hydrate.WithPreHook[Envelope](renameLegacyLayers),
)

// wrapBarePatch accepts a patch stored without an envelope.
func wrapBarePatch(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	if _, ok := payload["bundle"]; ok {
		return nil, nil
	}
	return map[string]any{"bundle": payload}, nil
}

func renameLegacyLayers(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	bundle, ok := payload["bundle"].(map[string]any)
	if !ok {
		return nil, nil
	}
	layers, ok := bundle["layers"].(map[string]any)
	if !ok {
		return nil, nil
	}
	for legacy, current := range legacyLayerKeys {
		value, found := layers[legacy]
		if !found {
			continue
		}
		if _, taken := layers[current]; !taken {
			layers[current] = value
		}
		delete(layers, legacy)
	}
	return payload, nil
}

// DecodeEnvelope parses a stored bundle value.
func DecodeEnvelope(key, raw string) (Envelope, error) {
	env, err := envelopeDecoder.DecodeString(hydrate.Context{Key: key, Kind: "bundle"}, raw)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return env, nil
}

// EncodeEnvelope renders an envelope for storage.
func EncodeEnvelope(env Envelope) (string, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
