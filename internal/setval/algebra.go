package setval

import "sort"

// Intersect returns the members common to every set in sets. Per spec §4.4
// it iterates the smallest input, probing the rest, and early-exits on the
// first set that lacks the current candidate.
func Intersect(sets []*Set) *Set {
	result := New(defaultMaxListSize(sets))
	if len(sets) == 0 {
		return result
	}

	ordered := make([]*Set, len(sets))
	copy(ordered, sets)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Cardinality() < ordered[j].Cardinality()
	})

	smallest, rest := ordered[0], ordered[1:]
	smallest.Each(func(m string) {
		for _, other := range rest {
			if !other.Contains(m) {
				return
			}
		}
		result.Add(m)
	})
	return result
}

// Union accumulates every member of every set into a fresh Set.
func Union(sets []*Set) *Set {
	result := New(defaultMaxListSize(sets))
	for _, s := range sets {
		s.Each(func(m string) {
			result.Add(m)
		})
	}
	return result
}

// Difference returns the members of sets[0] absent from every other set.
// Per spec §4.4 it picks between two work estimates: algorithm 1 walks the
// first set probing the (cardinality-descending-sorted) others and favors
// early disqualification; algorithm 2 copies the first set and removes
// whatever the others contain. Algorithm 1 wins whenever work1/2 <= work2.
func Difference(sets []*Set) *Set {
	result := New(defaultMaxListSize(sets))
	if len(sets) == 0 {
		return result
	}
	first := sets[0]
	others := sets[1:]
	if len(others) == 0 {
		first.Each(func(m string) { result.Add(m) })
		return result
	}

	work1 := first.Cardinality() * len(others)
	work2 := 0
	for _, o := range others {
		work2 += o.Cardinality()
	}

	if work1/2 <= work2 {
		differenceAlgorithm1(first, others, result)
	} else {
		differenceAlgorithm2(first, others, result)
	}
	return result
}

func differenceAlgorithm1(first *Set, others []*Set, result *Set) {
	sorted := make([]*Set, len(others))
	copy(sorted, others)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Cardinality() > sorted[j].Cardinality()
	})

	first.Each(func(m string) {
		for _, o := range sorted {
			if o.Contains(m) {
				return
			}
		}
		result.Add(m)
	})
}

func differenceAlgorithm2(first *Set, others []*Set, result *Set) {
	first.Each(func(m string) { result.Add(m) })
	for _, o := range others {
		o.Each(func(m string) {
			result.Remove(m)
		})
	}
}

func defaultMaxListSize(sets []*Set) int {
	if len(sets) == 0 {
		return 256
	}
	return sets[0].maxListSize
}
