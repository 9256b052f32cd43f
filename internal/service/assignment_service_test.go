package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
)

type assignmentFixture struct {
	svc        *assignmentService
	store      *mockStore
	instructor Caller
	kid        Caller
	student    *model.Student
	course     *model.Course
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	store, repo := newMockStore()
	svc := NewAssignmentService(repo, zap.NewNop()).(*assignmentService)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	instructor := store.addUser(model.RoleInstructor, "Ina Instructor")
	kidUser := store.addUser(model.RoleStudent, "Ada Kid")
	st := store.addStudent("Ada", kidUser, nil)
	course := store.addCourse("Python Quest", 0, true, instructor)
	store.enroll(st, course, model.EnrollmentActive)

	return &assignmentFixture{
		svc:        svc,
		store:      store,
		instructor: asCaller(instructor),
		kid:        asCaller(kidUser),
		student:    st,
		course:     course,
	}
}

func (f *assignmentFixture) createAssignment(t *testing.T, req dto.CreateAssignmentRequest) *dto.AssignmentResponse {
	t.Helper()
	a, err := f.svc.Create(context.Background(), f.course.CourseID, &req, f.instructor)
	require.NoError(t, err)
	return a
}

func TestAssignment_CreateDefaultsAndOwnership(t *testing.T) {
	f := newAssignmentFixture(t)
	other := asCaller(f.store.addUser(model.RoleInstructor, "Other Instructor"))

	a := f.createAssignment(t, dto.CreateAssignmentRequest{Title: "  Turtle drawing "})
	assert.Equal(t, "Turtle drawing", a.Title)
	assert.Equal(t, defaultMaxPoints, a.MaxPoints)
	assert.Equal(t, defaultAssignmentXP, a.XPReward)
	assert.Equal(t, "Python Quest", a.CourseTitle)

	_, err := f.svc.Create(context.Background(), f.course.CourseID, &dto.CreateAssignmentRequest{Title: "Nope"}, other)
	assert.ErrorIs(t, err, ErrNoPermission)

	foreign := f.store.addLesson(f.store.addCourse("Other Course", 0, true, nil), "Elsewhere", 1, false)
	_, err = f.svc.Create(context.Background(), f.course.CourseID, &dto.CreateAssignmentRequest{Title: "Bad lesson", LessonID: &foreign.LessonID}, f.instructor)
	assert.ErrorIs(t, err, ErrLessonNotInCourse)
}

func TestAssignment_SubmitGradeReturnCycle(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	a := f.createAssignment(t, dto.CreateAssignmentRequest{Title: "Loops", MaxPoints: 10})

	sub, err := f.svc.Submit(ctx, a.ID, &dto.SubmitAssignmentRequest{Content: "for i in range(3)"}, f.kid)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, sub.Status)
	assert.Equal(t, "Submitted", sub.StatusLabel)
	assert.False(t, sub.IsLate)

	tooHigh := 11
	_, err = f.svc.Grade(ctx, sub.ID, &dto.GradeSubmissionRequest{Score: &tooHigh}, f.instructor)
	assert.ErrorIs(t, err, ErrScoreTooHigh)

	score := 9
	graded, err := f.svc.Grade(ctx, sub.ID, &dto.GradeSubmissionRequest{Score: &score, Feedback: "Nice"}, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionGraded, graded.Status)
	assert.Equal(t, defaultAssignmentXP, f.student.TotalXP)

	_, err = f.svc.Submit(ctx, a.ID, &dto.SubmitAssignmentRequest{Content: "again"}, f.kid)
	assert.ErrorIs(t, err, ErrInvalidTransition, "graded work must be returned before resubmitting")

	returned, err := f.svc.Return(ctx, sub.ID, &dto.ReturnSubmissionRequest{Feedback: "Add a comment"}, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, "Needs revision", returned.StatusLabel)

	_, err = f.svc.Submit(ctx, a.ID, &dto.SubmitAssignmentRequest{Content: "with comment"}, f.kid)
	require.NoError(t, err)
	score = 10
	_, err = f.svc.Grade(ctx, sub.ID, &dto.GradeSubmissionRequest{Score: &score}, f.instructor)
	require.NoError(t, err)

	assert.Equal(t, defaultAssignmentXP, f.student.TotalXP, "XP is only awarded on the first grade")
	assert.Len(t, f.store.submissions.rows, 1)
}

func TestAssignment_LateSubmission(t *testing.T) {
	f := newAssignmentFixture(t)
	due := time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)
	a := f.createAssignment(t, dto.CreateAssignmentRequest{Title: "Overdue", DueAt: &due})

	sub, err := f.svc.Submit(context.Background(), a.ID, &dto.SubmitAssignmentRequest{Content: "sorry"}, f.kid)
	require.NoError(t, err)
	assert.True(t, sub.IsLate)
}

func TestAssignment_SubmitRequiresActiveEnrollment(t *testing.T) {
	f := newAssignmentFixture(t)
	a := f.createAssignment(t, dto.CreateAssignmentRequest{Title: "Loops"})
	for _, e := range f.store.enrollments.rows {
		e.Status = model.EnrollmentPaused
	}

	_, err := f.svc.Submit(context.Background(), a.ID, &dto.SubmitAssignmentRequest{Content: "x"}, f.kid)
	assert.ErrorIs(t, err, ErrEnrollmentNotActive)
}

func TestAssignment_ListForStudent(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	done := f.createAssignment(t, dto.CreateAssignmentRequest{Title: "A Done"})
	f.createAssignment(t, dto.CreateAssignmentRequest{Title: "B Todo"})

	_, err := f.svc.Submit(ctx, done.ID, &dto.SubmitAssignmentRequest{Content: "x"}, f.kid)
	require.NoError(t, err)

	list, err := f.svc.ListForStudent(ctx, "", f.kid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.SubmissionSubmitted, list[0].Status)
	assert.NotNil(t, list[0].Submission)
	assert.Equal(t, model.SubmissionPending, list[1].Status)
	assert.Equal(t, "Not started", list[1].StatusLabel)
}
