package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/calendar"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// ── enrollment module errors ──

var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrAlreadyEnrolled     = errors.New("the student is already enrolled in this course")
	ErrCourseNotPublished  = errors.New("this course is not open for enrollment")
	ErrPaymentRequired     = errors.New("this course requires payment before enrollment")
	ErrEnrollmentNotActive = errors.New("the student is not enrolled in this course")
	ErrInvalidStatus       = errors.New("invalid status")
)

const calendarName = "Our Coding Kiddos classes"

// EnrollmentService enrollment, lesson progress and the class calendar
type EnrollmentService interface {
	Enroll(ctx context.Context, req *dto.EnrollRequest, caller Caller) (*dto.EnrollmentResponse, error)
	ListByStudent(ctx context.Context, studentID string, caller Caller) ([]dto.EnrollmentResponse, error)
	UpdateStatus(ctx context.Context, id, status string, caller Caller) (*dto.EnrollmentResponse, error)
	// CompleteLesson idempotent per student and lesson
	CompleteLesson(ctx context.Context, lessonID string, req *dto.CompleteLessonRequest, caller Caller) (*dto.LessonCompletionResponse, error)
	// Calendar iCalendar feed of upcoming classes in the student's active courses
	Calendar(ctx context.Context, studentID string, caller Caller) (string, error)
}

type enrollmentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService creates an EnrollmentService
func NewEnrollmentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *enrollmentService) Enroll(ctx context.Context, req *dto.EnrollRequest, caller Caller) (*dto.EnrollmentResponse, error) {
	st, err := resolveStudent(ctx, s.repo, req.StudentID, caller, true)
	if err != nil {
		return nil, err
	}
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished && !caller.IsAdmin() {
		return nil, ErrCourseNotPublished
	}
	if !course.IsFree() && !caller.IsAdmin() {
		paid, err := s.repo.Payment.HasPaid(ctx, st.StudentID, course.CourseID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return nil, ErrPaymentRequired
		}
	}

	var e *model.Enrollment
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		e, err = enrollStudent(ctx, tx, st.StudentID, course, nil, s.now())
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadyEnrolled) {
			s.logger.Error("enroll failed", zap.String("student_id", st.StudentID), zap.String("course_id", course.CourseID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", st.StudentID), zap.String("course_id", course.CourseID), zap.String("by", caller.UserID))
	resp := toEnrollmentResponse(e)
	return &resp, nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string, caller Caller) ([]dto.EnrollmentResponse, error) {
	st, err := resolveStudent(ctx, s.repo, studentID, caller, false)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		list = append(list, toEnrollmentResponse(&enrollments[i]))
	}
	return list, nil
}

func (s *enrollmentService) UpdateStatus(ctx context.Context, id, status string, caller Caller) (*dto.EnrollmentResponse, error) {
	if !model.ValidEnrollmentStatus(status) {
		return nil, ErrInvalidStatus
	}
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if !caller.IsAdmin() {
		if e.Course == nil || e.Course.InstructorID == nil || *e.Course.InstructorID != caller.UserID {
			return nil, ErrNoPermission
		}
	}

	setEnrollmentStatus(e, status, s.now())
	e.UpdatedBy = &caller.UserID
	if err := s.repo.Enrollment.Update(ctx, e); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update enrollment status failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	resp := toEnrollmentResponse(e)
	return &resp, nil
}

// CompleteLesson records progress, XP, streak, course completion and badges in one transaction.
// The student row is locked so concurrent completions cannot lose XP.
func (s *enrollmentService) CompleteLesson(ctx context.Context, lessonID string, req *dto.CompleteLessonRequest, caller Caller) (*dto.LessonCompletionResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	target, err := resolveStudent(ctx, s.repo, req.StudentID, caller, true)
	if err != nil {
		return nil, err
	}
	course, err := s.repo.Course.GetByID(ctx, lesson.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	now := s.now()
	resp := &dto.LessonCompletionResponse{LessonID: lesson.LessonID}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		st, err := tx.Student.GetForUpdate(ctx, target.StudentID)
		if err != nil {
			return err
		}
		e, err := tx.Enrollment.GetByStudentAndCourse(ctx, st.StudentID, course.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotActive
			}
			return err
		}
		if e.Status != model.EnrollmentActive && e.Status != model.EnrollmentCompleted {
			return ErrEnrollmentNotActive
		}

		inserted, err := tx.Progress.Create(ctx, &model.LessonProgress{
			StudentID:   st.StudentID,
			LessonID:    lesson.LessonID,
			CourseID:    course.CourseID,
			CompletedAt: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			resp.AlreadyCompleted = true
			fillCompletion(resp, st, e)
			return nil
		}

		st.LessonsCompleted++
		applyActivity(st, now)
		before := st.TotalXP
		if err := awardXP(ctx, tx, st, lesson.XPReward, model.XPReasonLesson, &lesson.LessonID, now); err != nil {
			return err
		}

		done, err := tx.Progress.CountByStudentCourse(ctx, st.StudentID, course.CourseID)
		if err != nil {
			return err
		}
		total, err := tx.Lesson.CountByCourse(ctx, course.CourseID)
		if err != nil {
			return err
		}
		e.ProgressPercent = progressPercent(done, total)

		if e.ProgressPercent >= 100 && e.Status != model.EnrollmentCompleted {
			setEnrollmentStatus(e, model.EnrollmentCompleted, now)
			st.CoursesCompleted++
			resp.CourseCompleted = true
			if err := awardXP(ctx, tx, st, course.CompletionXP, model.XPReasonCourse, &course.CourseID, now); err != nil {
				return err
			}
			cert, _, err := issueCertificate(ctx, tx, st, course, now)
			if err != nil {
				return err
			}
			c := toCertificateResponse(cert, s.cfg.Server.BaseURL)
			resp.Certificate = &c
		}
		if err := tx.Enrollment.Update(ctx, e); err != nil {
			return err
		}

		badges, err := evaluateBadges(ctx, tx, st, now)
		if err != nil {
			return err
		}
		for i := range badges {
			resp.NewBadges = append(resp.NewBadges, toBadgeResponse(&badges[i]))
		}
		if err := tx.Student.Update(ctx, st); err != nil {
			return err
		}

		resp.XPAwarded = st.TotalXP - before
		fillCompletion(resp, st, e)
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEnrollmentNotActive) {
			s.logger.Error("complete lesson failed",
				zap.String("lesson_id", lessonID), zap.String("student_id", target.StudentID), zap.Error(err))
		}
		return nil, err
	}

	if resp.CourseCompleted {
		s.logger.Info("course completed",
			zap.String("student_id", target.StudentID), zap.String("course_id", course.CourseID))
	}
	return resp, nil
}

func (s *enrollmentService) Calendar(ctx context.Context, studentID string, caller Caller) (string, error) {
	st, err := resolveStudent(ctx, s.repo, studentID, caller, false)
	if err != nil {
		return "", err
	}
	courseIDs, err := s.repo.Enrollment.ActiveCourseIDs(ctx, st.StudentID)
	if err != nil {
		return "", err
	}

	now := s.now()
	var sessions []model.ClassSession
	if len(courseIDs) > 0 {
		sessions, err = s.repo.ClassSession.ListUpcoming(ctx, courseIDs, now, 0)
		if err != nil {
			return "", err
		}
	}

	events := make([]calendar.Event, 0, len(sessions))
	for i := range sessions {
		cs := &sessions[i]
		summary := cs.Title
		if cs.Course != nil {
			summary = cs.Course.Title + ": " + cs.Title
		}
		events = append(events, calendar.Event{
			UID:         cs.ClassSessionID + "@ourcodingkiddos",
			Summary:     summary,
			Description: cs.Description,
			URL:         cs.MeetingURL,
			Location:    cs.MeetingURL,
			Start:       cs.StartsAt,
			End:         cs.EndsAt,
		})
	}
	return calendar.Build(calendarName, events, now), nil
}

// ── shared enrollment helpers ──

// enrollStudent creates the enrollment or reactivates a cancelled one
func enrollStudent(ctx context.Context, repo *repository.Repository, studentID string, course *model.Course, paymentID *string, now time.Time) (*model.Enrollment, error) {
	existing, err := repo.Enrollment.GetByStudentAndCourse(ctx, studentID, course.CourseID)
	switch {
	case err == nil:
		if existing.Status != model.EnrollmentCancelled {
			return nil, ErrAlreadyEnrolled
		}
		existing.Status = model.EnrollmentActive
		existing.EnrolledAt = now
		existing.CompletedAt = nil
		if paymentID != nil {
			existing.PaymentID = paymentID
		}
		if err := repo.Enrollment.Update(ctx, existing); err != nil {
			return nil, err
		}
		existing.Course = course
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	e := &model.Enrollment{
		StudentID:  studentID,
		CourseID:   course.CourseID,
		Status:     model.EnrollmentActive,
		EnrolledAt: now,
		PaymentID:  paymentID,
	}
	if err := repo.Enrollment.Create(ctx, e); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	e.Course = course
	return e, nil
}

func setEnrollmentStatus(e *model.Enrollment, status string, now time.Time) {
	e.Status = status
	if status == model.EnrollmentCompleted {
		if e.CompletedAt == nil {
			t := now
			e.CompletedAt = &t
		}
		return
	}
	e.CompletedAt = nil
}

func progressPercent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(done * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func fillCompletion(resp *dto.LessonCompletionResponse, st *model.Student, e *model.Enrollment) {
	resp.TotalXP = st.TotalXP
	resp.Level = st.Level
	resp.StreakDays = st.StreakDays
	resp.ProgressPercent = e.ProgressPercent
}
