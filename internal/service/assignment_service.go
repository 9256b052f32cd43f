package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// ── assignment module errors ──

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrLessonNotInCourse   = errors.New("lesson does not belong to this course")
	ErrScoreTooHigh        = errors.New("score exceeds the assignment's max points")
	ErrInvalidTransition   = errors.New("the submission cannot move to that status")
	ErrSubmissionDuplicate = errors.New("a submission for this assignment already exists")
)

const (
	defaultMaxPoints    = 100
	defaultAssignmentXP = 25
)

// AssignmentService assignments and submission workflow
type AssignmentService interface {
	Create(ctx context.Context, courseID string, req *dto.CreateAssignmentRequest, caller Caller) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, caller Caller) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	ListByCourse(ctx context.Context, courseID string, caller Caller) ([]dto.AssignmentResponse, error)
	ListForStudent(ctx context.Context, studentID string, caller Caller) ([]dto.AssignmentResponse, error)

	Submit(ctx context.Context, assignmentID string, req *dto.SubmitAssignmentRequest, caller Caller) (*dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, assignmentID string, req *dto.SubmissionListRequest, caller Caller) ([]dto.SubmissionResponse, int64, error)
	Grade(ctx context.Context, submissionID string, req *dto.GradeSubmissionRequest, caller Caller) (*dto.SubmissionResponse, error)
	Return(ctx context.Context, submissionID string, req *dto.ReturnSubmissionRequest, caller Caller) (*dto.SubmissionResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAssignmentService creates an AssignmentService
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════ Assignments ════════════════════════

func (s *assignmentService) Create(ctx context.Context, courseID string, req *dto.CreateAssignmentRequest, caller Caller) (*dto.AssignmentResponse, error) {
	course, err := s.ownedCourse(ctx, courseID, caller)
	if err != nil {
		return nil, err
	}
	if err := s.checkLesson(ctx, course.CourseID, req.LessonID); err != nil {
		return nil, err
	}

	a := &model.Assignment{
		CourseID:     course.CourseID,
		LessonID:     req.LessonID,
		Title:        strings.TrimSpace(req.Title),
		Instructions: req.Instructions,
		DueAt:        utcPtr(req.DueAt),
		MaxPoints:    req.MaxPoints,
		XPReward:     defaultAssignmentXP,
	}
	if a.MaxPoints == 0 {
		a.MaxPoints = defaultMaxPoints
	}
	if req.XPReward != nil {
		a.XPReward = *req.XPReward
	}
	a.CreatedBy = &caller.UserID

	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("create assignment failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	a.Course = course
	resp := toAssignmentResponse(a)
	return &resp, nil
}

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, caller Caller) (*dto.AssignmentResponse, error) {
	a, err := s.ownedAssignment(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if req.LessonID != nil {
		if err := s.checkLesson(ctx, a.CourseID, req.LessonID); err != nil {
			return nil, err
		}
		a.LessonID = req.LessonID
	}
	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Instructions != nil {
		a.Instructions = *req.Instructions
	}
	if req.DueAt != nil {
		a.DueAt = utcPtr(req.DueAt)
	}
	if req.MaxPoints != nil {
		a.MaxPoints = *req.MaxPoints
	}
	if req.XPReward != nil {
		a.XPReward = *req.XPReward
	}
	a.UpdatedBy = &caller.UserID

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		s.logger.Error("update assignment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toAssignmentResponse(a)
	return &resp, nil
}

func (s *assignmentService) Delete(ctx context.Context, id string, caller Caller) error {
	if _, err := s.ownedAssignment(ctx, id, caller); err != nil {
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID string, caller Caller) ([]dto.AssignmentResponse, error) {
	course, err := s.ownedCourse(ctx, courseID, caller)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByCourse(ctx, course.CourseID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		assignments[i].Course = course
		list = append(list, toAssignmentResponse(&assignments[i]))
	}
	return list, nil
}

// ListForStudent assignments of the student's active courses, each with the student's submission status
func (s *assignmentService) ListForStudent(ctx context.Context, studentID string, caller Caller) ([]dto.AssignmentResponse, error) {
	st, err := resolveStudent(ctx, s.repo, studentID, caller, false)
	if err != nil {
		return nil, err
	}
	courseIDs, err := s.repo.Enrollment.ActiveCourseIDs(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	if len(courseIDs) == 0 {
		return []dto.AssignmentResponse{}, nil
	}

	assignments, err := s.repo.Assignment.ListByCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	submissions, err := s.repo.Submission.ListByStudent(ctx, st.StudentID, 0)
	if err != nil {
		return nil, err
	}
	byAssignment := make(map[string]*model.Submission, len(submissions))
	for i := range submissions {
		byAssignment[submissions[i].AssignmentID] = &submissions[i]
	}

	list := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resp := toAssignmentResponse(&assignments[i])
		resp.Status = model.SubmissionPending
		if sub, ok := byAssignment[assignments[i].AssignmentID]; ok {
			sr := toSubmissionResponse(sub)
			resp.Submission = &sr
			resp.Status = sub.Status
		}
		resp.StatusLabel = model.SubmissionStatusLabel(resp.Status)
		list = append(list, resp)
	}
	return list, nil
}

// ════════════════════════ Submissions ════════════════════════

// Submit creates or resubmits the student's work. Resubmission follows the status transition table.
func (s *assignmentService) Submit(ctx context.Context, assignmentID string, req *dto.SubmitAssignmentRequest, caller Caller) (*dto.SubmissionResponse, error) {
	st, err := resolveStudent(ctx, s.repo, req.StudentID, caller, true)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	e, err := s.repo.Enrollment.GetByStudentAndCourse(ctx, st.StudentID, a.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotActive
		}
		return nil, err
	}
	if e.Status != model.EnrollmentActive && e.Status != model.EnrollmentCompleted {
		return nil, ErrEnrollmentNotActive
	}

	now := s.now()
	late := a.DueAt != nil && now.After(*a.DueAt)

	sub, err := s.repo.Submission.GetByAssignmentAndStudent(ctx, a.AssignmentID, st.StudentID)
	switch {
	case err == nil:
		if !model.CanTransitionSubmission(sub.Status, model.SubmissionSubmitted) {
			return nil, ErrInvalidTransition
		}
		sub.Content = req.Content
		sub.AttachmentURL = req.AttachmentURL
		sub.Status = model.SubmissionSubmitted
		sub.IsLate = late
		sub.SubmittedAt = &now
		sub.UpdatedBy = &caller.UserID
		if err := s.repo.Submission.Update(ctx, sub); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Error("resubmit failed", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
			}
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = &model.Submission{
			AssignmentID:  a.AssignmentID,
			StudentID:     st.StudentID,
			Content:       req.Content,
			AttachmentURL: req.AttachmentURL,
			Status:        model.SubmissionSubmitted,
			IsLate:        late,
			SubmittedAt:   &now,
		}
		sub.CreatedBy = &caller.UserID
		if err := s.repo.Submission.Create(ctx, sub); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return nil, ErrSubmissionDuplicate
			}
			s.logger.Error("submit failed", zap.String("assignment_id", assignmentID), zap.Error(err))
			return nil, err
		}
	default:
		return nil, err
	}

	sub.Student = st
	resp := toSubmissionResponse(sub)
	return &resp, nil
}

func (s *assignmentService) ListSubmissions(ctx context.Context, assignmentID string, req *dto.SubmissionListRequest, caller Caller) ([]dto.SubmissionResponse, int64, error) {
	if _, err := s.ownedAssignment(ctx, assignmentID, caller); err != nil {
		return nil, 0, err
	}
	subs, total, err := s.repo.Submission.ListByAssignment(ctx, assignmentID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	list := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		list = append(list, toSubmissionResponse(&subs[i]))
	}
	return list, total, nil
}

// Grade scores the submission. The assignment XP is awarded the first time it is graded.
func (s *assignmentService) Grade(ctx context.Context, submissionID string, req *dto.GradeSubmissionRequest, caller Caller) (*dto.SubmissionResponse, error) {
	sub, err := s.ownedSubmission(ctx, submissionID, caller)
	if err != nil {
		return nil, err
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > sub.Assignment.MaxPoints {
		return nil, ErrScoreTooHigh
	}
	if !model.CanTransitionSubmission(sub.Status, model.SubmissionGraded) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	score := *req.Score
	sub.Status = model.SubmissionGraded
	sub.Score = &score
	sub.Feedback = req.Feedback
	sub.GradedAt = &now
	sub.GradedBy = &caller.UserID
	sub.UpdatedBy = &caller.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if !sub.XPAwarded && sub.Assignment.XPReward > 0 {
			st, err := tx.Student.GetForUpdate(ctx, sub.StudentID)
			if err != nil {
				return err
			}
			if err := awardXP(ctx, tx, st, sub.Assignment.XPReward, model.XPReasonAssignment, &sub.AssignmentID, now); err != nil {
				return err
			}
			if _, err := evaluateBadges(ctx, tx, st, now); err != nil {
				return err
			}
			if err := tx.Student.Update(ctx, st); err != nil {
				return err
			}
		}
		sub.XPAwarded = true
		return tx.Submission.Update(ctx, sub)
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("grade submission failed", zap.String("submission_id", submissionID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("submission graded", zap.String("submission_id", submissionID), zap.Int("score", score))
	resp := toSubmissionResponse(sub)
	return &resp, nil
}

func (s *assignmentService) Return(ctx context.Context, submissionID string, req *dto.ReturnSubmissionRequest, caller Caller) (*dto.SubmissionResponse, error) {
	sub, err := s.ownedSubmission(ctx, submissionID, caller)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionSubmission(sub.Status, model.SubmissionReturned) {
		return nil, ErrInvalidTransition
	}

	sub.Status = model.SubmissionReturned
	sub.Feedback = req.Feedback
	sub.UpdatedBy = &caller.UserID
	if err := s.repo.Submission.Update(ctx, sub); err != nil {
		return nil, err
	}
	resp := toSubmissionResponse(sub)
	return &resp, nil
}

// ── helpers ──

func (s *assignmentService) ownedCourse(ctx context.Context, courseID string, caller Caller) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canEditCourse(caller, course) {
		return nil, ErrNoPermission
	}
	return course, nil
}

func (s *assignmentService) ownedAssignment(ctx context.Context, id string, caller Caller) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	course := a.Course
	if course == nil {
		if course, err = s.ownedCourse(ctx, a.CourseID, caller); err != nil {
			return nil, err
		}
		a.Course = course
	} else if !canEditCourse(caller, course) {
		return nil, ErrNoPermission
	}
	return a, nil
}

func (s *assignmentService) ownedSubmission(ctx context.Context, id string, caller Caller) (*model.Submission, error) {
	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	a, err := s.ownedAssignment(ctx, sub.AssignmentID, caller)
	if err != nil {
		return nil, err
	}
	sub.Assignment = a
	return sub, nil
}

func (s *assignmentService) checkLesson(ctx context.Context, courseID string, lessonID *string) error {
	if lessonID == nil {
		return nil
	}
	l, err := s.repo.Lesson.GetByID(ctx, *lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	if l.CourseID != courseID {
		return ErrLessonNotInCourse
	}
	return nil
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:           a.AssignmentID,
		CourseID:     a.CourseID,
		LessonID:     a.LessonID,
		Title:        a.Title,
		Instructions: a.Instructions,
		DueAt:        formatTimePtr(a.DueAt),
		MaxPoints:    a.MaxPoints,
		XPReward:     a.XPReward,
	}
	if a.Course != nil {
		resp.CourseTitle = a.Course.Title
	}
	return resp
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
