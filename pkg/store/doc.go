// Package store defines the preference storage capability consumed by the
// resolver, plus the backends that satisfy it.
//
// A Backend is a synchronous, string-keyed, string-valued store with no
// transactional guarantees (the shape of browser local storage). Every call
// may fail: storage can be disabled, full, or hold corrupt data. Callers do
// not handle those failures themselves; they go through Safe, which logs and
// swallows them so that a failed read looks like an absent key and a failed
// write is a no-op.
//
// Keys are derived from a Ref (kind + zone) by a Keyspace:
//
//	ember.map/zone-defaults/ironwood
//	ember.map/global-defaults
//	ember.map/zone-settings/ironwood
//	ember.map/global-settings
//	ember.map/marker-positions/ironwood
//
// Bundles are written as an Envelope carrying a snapshot id and save time.
// Bare patches written by older builds still load.
package store
