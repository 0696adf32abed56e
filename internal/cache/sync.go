package cache

import (
	"github.com/roach88/stationcache/internal/appstore"
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/value"
)

// persistFunc extracts a slice's full value from the state after a mutation.
type persistFunc func(appstore.State) value.Value

type persister struct {
	slice slice.Name
	value persistFunc
}

func dashboardOf(s appstore.State) value.Value { return s.Dashboard }
func sensorsOf(s appstore.State) value.Value   { return s.Sensors }
func settingsOf(s appstore.State) value.Value  { return s.Settings }
func stationsOf(s appstore.State) value.Value  { return s.Stations }

// persisters maps each persisted mutation kind to the slice it rewrites.
// Kinds not listed here never touch the cache.
var persisters = map[appstore.MutationKind]persister{
	appstore.AddBookmark:    {slice.Dashboard, dashboardOf},
	appstore.RemoveBookmark: {slice.Dashboard, dashboardOf},
	appstore.SetCardMode:    {slice.Dashboard, dashboardOf},
	appstore.SetCardTimeAgo: {slice.Dashboard, dashboardOf},
	appstore.SetDashboard:   {slice.Dashboard, dashboardOf},
	appstore.SetSensorData:  {slice.Sensors, sensorsOf},
	appstore.SetSettings:    {slice.Settings, settingsOf},
	appstore.SetStations:    {slice.Stations, stationsOf},
}

// PersistedSlice returns the slice a mutation kind rewrites.
func PersistedSlice(kind appstore.MutationKind) (slice.Name, bool) {
	p, ok := persisters[kind]
	return p.slice, ok
}

// onMutation is the app store listener installed by Attach. It runs inside
// Commit, so it only enqueues.
func (c *Cache) onMutation(m appstore.Mutation, s appstore.State) {
	p, ok := persisters[m.Kind]
	if !ok {
		return
	}
	w, ok := c.writers[p.slice]
	if !ok {
		return
	}
	w.enqueue(writeJob{value: p.value(s), seq: m.Seq, origin: "mutation"})
}
