package setval

// RandomMembersWithCount samples members per spec §4.4's SRANDMEMBER count
// semantics: count == 0 is empty; negative count samples |count| members
// with replacement; count >= cardinality returns every member; otherwise it
// picks whichever of the two sampling strategies below is cheaper.
func (s *Set) RandomMembersWithCount(count int) []string {
	if count == 0 {
		return nil
	}
	if count < 0 {
		n := -count
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			m, ok := s.RandomMember()
			if !ok {
				break
			}
			out = append(out, m)
		}
		return out
	}

	card := s.Cardinality()
	if count >= card {
		return s.Members()
	}

	if count*3 > card {
		working := map[string]struct{}{}
		s.Each(func(m string) { working[m] = struct{}{} })

		for len(working) > count {
			// delete a uniformly-random survivor
			idx := s.rng.Intn(len(working))
			i := 0
			for k := range working {
				if i == idx {
					delete(working, k)
					break
				}
				i++
			}
		}

		out := make([]string, 0, len(working))
		for k := range working {
			out = append(out, k)
		}
		return out
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, count)
	attempts := 0
	maxAttempts := count * 50 // safety valve against pathological RNG cycles
	for len(out) < count && attempts < maxAttempts {
		m, ok := s.RandomMember()
		attempts++
		if !ok {
			break
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
