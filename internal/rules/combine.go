package rules

// Combine folds AND-group and OR-group results into one boolean.
// It is used twice: for the conditions of one rule, and for the rules of one
// dependent question.
//
//  1. both groups empty: false
//  2. every entry false: false
//  3. AND group non-empty and entirely true: true
//  4. otherwise some OR entry is true: true, even when the AND group is
//     present but not fully satisfied
func Combine(and, or []bool) bool {
	if len(and) == 0 && len(or) == 0 {
		return false
	}

	if !anyTrue(and) && !anyTrue(or) {
		return false
	}

	if len(and) > 0 && allTrue(and) {
		return true
	}

	return anyTrue(or)
}

func anyTrue(results []bool) bool {
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}

func allTrue(results []bool) bool {
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}
