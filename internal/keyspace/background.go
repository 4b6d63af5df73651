package keyspace

// Cron runs one active-expiry sweep cycle (spec §4.7, bounded to
// maxLookups keys) and one bounded Dict rehash step (spec §4.2), the two
// pieces of background work the event loop's time event drives at its
// nominal 10Hz tick (spec §4.8). rehashSteps is the number of incremental
// rehash buckets to process, independent of maxLookups.
func (ks *Keyspace) Cron(maxLookups int, rehashSteps int) (expired int) {
	now := nowMs()
	var toDelete []string
	ks.expires.Sweep(now, maxLookups, func(key string) {
		toDelete = append(toDelete, key)
	})
	for _, key := range toDelete {
		ks.data.Delete(key)
		ks.expires.Remove(key)
		expired++
	}

	ks.data.Rehash(rehashSteps)
	return expired
}
