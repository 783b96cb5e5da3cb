package solve

import (
	"sort"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
)

func sortedIntKeys(m map[int]*sat.IntVar) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedNonPreferredKeys(m map[string]*sat.BoolVar) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedEntityRefs(m map[domain.EntityRef][]*sat.IntVar) []domain.EntityRef {
	keys := make([]domain.EntityRef, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		if keys[i].ID != keys[j].ID {
			return keys[i].ID < keys[j].ID
		}
		return keys[i].Day < keys[j].Day
	})
	return keys
}
