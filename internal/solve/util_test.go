package solve

import (
	"testing"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"

	"github.com/edu-sched/cpsolver/internal/domain"
)

func TestSortedIntKeysDeterministic(t *testing.T) {
	m := map[int]*sat.IntVar{3: nil, 1: nil, 2: nil}
	assert.Equal(t, []int{1, 2, 3}, sortedIntKeys(m))
}

func TestSortedNonPreferredKeysDeterministic(t *testing.T) {
	m := map[string]*sat.BoolVar{"b": nil, "a": nil, "c": nil}
	assert.Equal(t, []string{"a", "b", "c"}, sortedNonPreferredKeys(m))
}

func TestSortedEntityRefsOrdersByKindThenIDThenDay(t *testing.T) {
	m := map[domain.EntityRef][]*sat.IntVar{
		{Kind: domain.EntityBatch, ID: 1, Day: 0}:   nil,
		{Kind: domain.EntityFaculty, ID: 2, Day: 1}: nil,
		{Kind: domain.EntityFaculty, ID: 1, Day: 0}: nil,
	}
	refs := sortedEntityRefs(m)
	assert.Equal(t, domain.EntityFaculty, refs[0].Kind)
	assert.Equal(t, 1, refs[0].ID)
	assert.Equal(t, domain.EntityFaculty, refs[1].Kind)
	assert.Equal(t, 2, refs[1].ID)
	assert.Equal(t, domain.EntityBatch, refs[2].Kind)
}
