package cargo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	domainDevice "cargo-transport/internal/domain/device"
)

func deviceWithID(id uuid.UUID) *domainDevice.Device {
	return &domainDevice.Device{ID: id, Version: 1}
}

func TestDiffAssignments(t *testing.T) {
	keep := uuid.New()
	drop := uuid.New()
	add := uuid.New()

	current := []*domainDevice.Device{deviceWithID(keep), deviceWithID(drop)}
	target := []uuid.UUID{keep, add}

	toDetach, toAttach := diffAssignments(current, target)

	assert.Len(t, toDetach, 1)
	assert.Equal(t, drop, toDetach[0].ID)
	assert.Equal(t, []uuid.UUID{add}, toAttach)
}

func TestDiffAssignmentsEmptyTargetDetachesAll(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	current := []*domainDevice.Device{deviceWithID(a), deviceWithID(b)}

	toDetach, toAttach := diffAssignments(current, nil)

	assert.Len(t, toDetach, 2)
	assert.Empty(t, toAttach)
}

func TestDiffAssignmentsSameSetIsNoop(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	current := []*domainDevice.Device{deviceWithID(a), deviceWithID(b)}

	toDetach, toAttach := diffAssignments(current, []uuid.UUID{b, a})

	assert.Empty(t, toDetach)
	assert.Empty(t, toAttach)
}

func TestDiffAssignmentsCollapsesDuplicates(t *testing.T) {
	add := uuid.New()

	toDetach, toAttach := diffAssignments(nil, []uuid.UUID{add, add, add})

	assert.Empty(t, toDetach)
	assert.Equal(t, []uuid.UUID{add}, toAttach)
}
