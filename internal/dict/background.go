package dict

import "time"

// RehashMilliseconds performs bounded rehash work: repeated batches of 100
// buckets until rehashing completes or the time budget is exceeded. The
// event loop's maintenance tick does not call it: keyspace.Cron advances
// rehashing by a fixed number of bucket steps per tick instead.
func (d *Dict) RehashMilliseconds(ms int) {
	if ms <= 0 {
		return
	}
	deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
	for d.IsRehashing() {
		if !d.Rehash(100) {
			return
		}
		if time.Now().After(deadline) {
			return
		}
	}
}
