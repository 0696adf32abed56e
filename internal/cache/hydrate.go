package cache

import (
	"fmt"

	"github.com/roach88/stationcache/internal/appstore"
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/value"
)

// Source names the hydration branch taken for a slice.
type Source string

const (
	// SourceDefault: memory and cache were both empty.
	SourceDefault Source = "default"
	// SourceMemory: memory was already populated and overwrote the cache.
	SourceMemory Source = "memory"
	// SourceCache: the cached value was adopted into memory.
	SourceCache Source = "cache"
)

// Decision records the hydration outcome for one slice.
type Decision struct {
	Slice  slice.Name
	Source Source
	// Repaired is set when the cache record was missing, corrupt or could
	// not be adopted as stored, and a write was scheduled to fix it.
	Repaired bool
}

// Report is the result of one Attach.
type Report struct {
	// Run identifies the attach (UUIDv7).
	Run       string
	Decisions []Decision
}

// Decision returns the decision for name.
func (r Report) Decision(name slice.Name) (Decision, bool) {
	for _, d := range r.Decisions {
		if d.Slice == name {
			return d, true
		}
	}
	return Decision{}, false
}

// adoptFunc commits a cached value into memory. It returns the records it
// could not adopt; they stay in the cache untouched.
type adoptFunc func(app App, v value.Value) (skipped value.Map, err error)

var adopters = map[slice.Name]adoptFunc{
	slice.Dashboard: adoptWith(appstore.SetDashboard),
	slice.Settings:  adoptWith(appstore.SetSettings),
	slice.Stations:  adoptWith(appstore.SetStations),
	slice.Sensors:   adoptSensors,
}

func adoptWith(kind appstore.MutationKind) adoptFunc {
	return func(app App, v value.Value) (value.Map, error) {
		return nil, app.Commit(kind, v)
	}
}

// adoptSensors commits one setSensorData per cached sensor, in key order.
// Entries that are not sensor records are skipped.
func adoptSensors(app App, v value.Value) (value.Map, error) {
	sensors, ok := v.(value.Map)
	if !ok {
		return nil, fmt.Errorf("sensors: expected map, got %T", v)
	}
	var skipped value.Map
	for _, id := range sensors.SortedKeys() {
		rec, ok := sensors[id].(value.Map)
		if !ok {
			skipped = skipped.With(id, sensors[id])
			continue
		}
		if err := app.Commit(appstore.SetSensorData, rec.With("id", value.String(id))); err != nil {
			return nil, err
		}
	}
	return skipped, nil
}

// hydrate reconciles one memory snapshot with the cache entries. Exactly one
// branch applies per slice. Memory-wins and repair writes are enqueued on the
// slice writers; the caller installs the subscription afterwards.
func (c *Cache) hydrate(app App, entries []Entry) []Decision {
	snap := app.State()
	decisions := make([]Decision, 0, len(entries))

	for _, e := range entries {
		d := Decision{Slice: e.Slice, Repaired: e.Status != StatusOK}
		mem := snap.Slice(e.Slice)

		switch {
		case !c.reg.IsEmpty(e.Slice, mem):
			d.Source = SourceMemory
			c.schedule(e.Slice, mem, snap.Seq, "hydrate")

		case !c.reg.IsEmpty(e.Slice, e.Value):
			d.Source = SourceCache
			if want, same := c.adopt(app, e); !same {
				d.Repaired = true
				c.schedule(e.Slice, want, snap.Seq, "hydrate")
			}

		default:
			d.Source = SourceDefault
			if d.Repaired {
				c.schedule(e.Slice, c.reg.Default(e.Slice), snap.Seq, "hydrate")
			}
		}

		if e.Err != nil {
			c.log.Warn("cache record repaired", "slice", string(e.Slice), "error", e.Err)
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// adopt commits e into memory. It returns the value the cache record should
// hold afterwards, memory plus any records left unadopted, and whether the
// record already holds it.
func (c *Cache) adopt(app App, e Entry) (value.Value, bool) {
	fn, ok := adopters[e.Slice]
	if !ok {
		c.log.Warn("no adopter for slice", "slice", string(e.Slice))
		return app.State().Slice(e.Slice), false
	}
	skipped, err := fn(app, e.Value)
	if err != nil {
		c.log.Warn("cache adopt failed", "slice", string(e.Slice), "error", err)
		return app.State().Slice(e.Slice), false
	}

	want := app.State().Slice(e.Slice)
	if len(skipped) > 0 {
		c.log.Warn("cached records not adopted", "slice", string(e.Slice), "keys", skipped.SortedKeys())
		m, _ := want.(value.Map)
		for _, k := range skipped.SortedKeys() {
			m = m.With(k, skipped[k])
		}
		want = m
	}
	return want, value.Equal(want, e.Value)
}

func (c *Cache) schedule(name slice.Name, v value.Value, seq int64, origin string) {
	if w, ok := c.writers[name]; ok {
		w.enqueue(writeJob{value: v, seq: seq, origin: origin})
	}
}
