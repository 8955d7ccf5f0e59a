package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/notify"
)

func events(names ...string) []notify.Event {
	out := make([]notify.Event, len(names))
	for i, n := range names {
		out[i] = notify.Event{Name: n, Keys: []uint32{uint32(i)}}
	}
	return out
}

func TestAssertEventCount(t *testing.T) {
	evs := events(notify.ContactsAdded, notify.ContactsChanged, notify.ContactsAdded)

	assert.NoError(t, assertEventCount(evs, Assertion{Event: notify.ContactsAdded, Count: 2}))
	assert.NoError(t, assertEventCount(evs, Assertion{Event: notify.ContactsRemoved, Count: 0}))

	err := assertEventCount(evs, Assertion{Event: notify.ContactsChanged, Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 occurrences of contactsChanged")
	assert.Contains(t, err.Error(), "[2] contactsChanged")
}

func TestAssertEventOrder(t *testing.T) {
	evs := events(notify.ContactsAdded, notify.DisplayLabelGroupsChanged, notify.RelationshipsAdded)

	assert.NoError(t, assertEventOrder(evs, Assertion{Events: []string{notify.ContactsAdded, notify.RelationshipsAdded}}))

	err := assertEventOrder(evs, Assertion{Events: []string{notify.RelationshipsAdded, notify.ContactsAdded}})
	assert.ErrorContains(t, err, "should be before")

	err = assertEventOrder(evs, Assertion{Events: []string{notify.ContactsRemoved}})
	assert.ErrorContains(t, err, "missing event: contactsRemoved")
}

func TestAssertEventKeys(t *testing.T) {
	evs := events(notify.ContactsAdded, notify.ContactsAdded)

	assert.NoError(t, assertEventKeys(evs, Assertion{Event: notify.ContactsAdded, Keys: []uint32{1}}))
	assert.Error(t, assertEventKeys(evs, Assertion{Event: notify.ContactsAdded, Keys: []uint32{2}}))
}

func TestBuildWhereClause(t *testing.T) {
	sql, args, err := buildWhereClause(map[string]interface{}{
		"nickname":  nil,
		"contactId": 1,
		"label":     "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "contactId = ? AND label = ? AND nickname IS NULL", sql)
	assert.Equal(t, []interface{}{1, "Ada"}, args)

	_, _, err = buildWhereClause(map[string]interface{}{"1; DROP TABLE Contacts": 1})
	assert.Error(t, err)
}

func TestStateValuesEqual(t *testing.T) {
	tests := []struct {
		expected, actual interface{}
		want             bool
	}{
		{nil, nil, true},
		{nil, int64(0), false},
		{"Ada", "Ada", true},
		{"Ada", []byte("Ada"), true},
		{2, int64(2), true},
		{2, int64(3), false},
		{true, int64(1), true},
		{false, int64(1), false},
		{2.0, int64(2), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stateValuesEqual(tt.expected, tt.actual), "%v vs %v", tt.expected, tt.actual)
	}
}

func TestEvaluateAssertions_StateNeedsStore(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertRowCount, Table: "Contacts"}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires database context")
}
