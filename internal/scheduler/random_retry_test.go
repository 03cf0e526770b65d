package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestRandomRetrySingleSubjectFillsCredits(t *testing.T) {
	in := Input{
		Subjects:    []models.Subject{subject("math", 3)},
		Staff:       []models.StaffMember{staff("s1", models.StaffRoleProfessor, "math")},
		Classrooms:  []models.Classroom{room("r1")},
		Constraints: []models.Constraint{hoursCap(models.StaffRoleProfessor, 8)},
	}

	entries := NewRandomRetry(42, 0).Assign(in)

	require.Len(t, entries, 3)
	assert.Equal(t, 3, distinctCells(t, entries))
	require.NoError(t, Verify(in, entries, false))
}

func TestRandomRetryRespectsMaxHours(t *testing.T) {
	in := Input{
		Subjects:    []models.Subject{subject("math", 5)},
		Staff:       []models.StaffMember{staff("s1", models.StaffRoleProfessor)},
		Classrooms:  []models.Classroom{room("r1")},
		Constraints: []models.Constraint{hoursCap(models.StaffRoleProfessor, 2)},
	}

	entries := NewRandomRetry(3, 0).Assign(in)

	assert.LessOrEqual(t, len(entries), 2)
}

func TestRandomRetryWithoutClassroomsReturnsEmpty(t *testing.T) {
	in := Input{
		Subjects: []models.Subject{subject("math", 3)},
		Staff:    []models.StaffMember{staff("s1", models.StaffRoleProfessor)},
	}

	entries := NewRandomRetry(1, 0).Assign(in)

	require.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRandomRetryChoosesStaffOncePerSubject(t *testing.T) {
	in := Input{
		Subjects: []models.Subject{subject("math", 3)},
		Staff: []models.StaffMember{
			staff("s1", models.StaffRoleProfessor, "math"),
			staff("s2", models.StaffRoleProfessor, "math"),
		},
		Classrooms: []models.Classroom{room("r1"), room("r2")},
	}

	entries := NewRandomRetry(11, 0).Assign(in)

	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, "s1", e.StaffID)
	}
}

func TestRandomRetrySameSeedSameTimetable(t *testing.T) {
	in := Input{
		Subjects:   []models.Subject{subject("a", 3), subject("b", 3), subject("c", 2)},
		Staff:      []models.StaffMember{staff("s1", models.StaffRoleProfessor), staff("s2", models.StaffRoleHOD)},
		Classrooms: []models.Classroom{room("r1"), room("r2")},
	}

	first := NewRandomRetry(99, 0).Assign(in)
	second := NewRandomRetry(99, 0).Assign(in)

	assert.Equal(t, first, second)
}

func TestRandomRetryUpholdsInvariantsAcrossSeeds(t *testing.T) {
	subjects := make([]models.Subject, 0, 8)
	for i := 0; i < 8; i++ {
		subjects = append(subjects, subject(fmt.Sprintf("sub-%d", i), 2+i%3))
	}
	in := Input{
		DepartmentID: "dept-1",
		Subjects:     subjects,
		Staff: []models.StaffMember{
			staff("s1", models.StaffRoleProfessor, "sub-0", "sub-1", "sub-2"),
			staff("s2", models.StaffRoleAssistantProfessor, "sub-3", "sub-4"),
			staff("s3", models.StaffRoleHOD),
			staff("s4", models.StaffRoleAssistantProfessor),
		},
		Classrooms: []models.Classroom{room("r1"), room("r2"), room("r3")},
		Constraints: []models.Constraint{
			hoursCap(models.StaffRoleProfessor, 6),
			hoursCap(models.StaffRoleAssistantProfessor, 5),
			hoursCap(models.StaffRoleHOD, 4),
		},
	}

	for seed := int64(1); seed <= 25; seed++ {
		entries := NewRandomRetry(seed, 0).Assign(in)
		require.NoError(t, Verify(in, entries, false), "seed %d", seed)

		for i := 1; i < len(entries); i++ {
			prev := gridRank(entries[i-1].Day, entries[i-1].TimeSlot)
			cur := gridRank(entries[i].Day, entries[i].TimeSlot)
			assert.LessOrEqual(t, prev, cur, "seed %d not sorted", seed)
		}
	}
}

func TestVerifyRejectsDoubleBooking(t *testing.T) {
	in := Input{
		Subjects:   []models.Subject{subject("a", 2)},
		Staff:      []models.StaffMember{staff("s1", models.StaffRoleProfessor)},
		Classrooms: []models.Classroom{room("r1"), room("r2")},
	}
	entries := []models.TimetableEntry{
		{Day: "Monday", TimeSlot: "09:00-10:00", SubjectID: "a", StaffID: "s1", ClassroomID: "r1"},
		{Day: "Monday", TimeSlot: "09:00-10:00", SubjectID: "a", StaffID: "s1", ClassroomID: "r2"},
	}

	assert.Error(t, Verify(in, entries, false))
}

func TestVerifyRejectsIneligibleStaff(t *testing.T) {
	in := Input{
		Subjects:   []models.Subject{subject("a", 1), subject("b", 1)},
		Staff:      []models.StaffMember{staff("s1", models.StaffRoleProfessor, "a")},
		Classrooms: []models.Classroom{room("r1")},
	}
	entries := []models.TimetableEntry{
		{Day: "Monday", TimeSlot: "09:00-10:00", SubjectID: "b", StaffID: "s1", ClassroomID: "r1"},
	}

	assert.Error(t, Verify(in, entries, false))
}
