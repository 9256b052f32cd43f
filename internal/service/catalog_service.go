package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/calendar"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// ── catalog module errors ──

var (
	ErrProgramNotFound    = errors.New("program not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSessionNotFound    = errors.New("class session not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrInvalidAgeRange    = errors.New("age_max must not be lower than age_min")
	ErrLessonLocked       = errors.New("enroll in this course to open the lesson")
	ErrInvalidCalendar    = errors.New("the calendar file could not be read")
)

const (
	upcomingSessionsLimit = 5
	importHorizon         = 180 * 24 * time.Hour
)

// CatalogService programs, courses, lessons and live class sessions
type CatalogService interface {
	ListPrograms(ctx context.Context, includeDrafts bool) ([]dto.ProgramResponse, error)
	GetProgram(ctx context.Context, slug string, includeDrafts bool) (*dto.ProgramResponse, error)
	CreateProgram(ctx context.Context, req *dto.CreateProgramRequest, callerID string) (*dto.ProgramResponse, error)
	UpdateProgram(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID string) (*dto.ProgramResponse, error)
	DeleteProgram(ctx context.Context, id string, callerID string) error

	ListCourses(ctx context.Context, req *dto.CourseListRequest, caller *Caller) ([]dto.CourseSummary, int64, error)
	GetCourse(ctx context.Context, slug string, caller *Caller) (*dto.CourseDetail, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest, caller Caller) (*dto.CourseDetail, error)
	UpdateCourse(ctx context.Context, id string, req *dto.UpdateCourseRequest, caller Caller) (*dto.CourseDetail, error)
	SetCoursePublished(ctx context.Context, id string, published bool, caller Caller) (*dto.CourseSummary, error)
	DeleteCourse(ctx context.Context, id string, caller Caller) error

	GetLesson(ctx context.Context, courseSlug, lessonSlug string, caller Caller) (*dto.LessonDetail, error)
	CreateLesson(ctx context.Context, courseID string, req *dto.CreateLessonRequest, caller Caller) (*dto.LessonDetail, error)
	UpdateLesson(ctx context.Context, id string, req *dto.UpdateLessonRequest, caller Caller) (*dto.LessonDetail, error)
	DeleteLesson(ctx context.Context, id string, caller Caller) error

	ListSessions(ctx context.Context, courseSlug string) ([]dto.ClassSessionResponse, error)
	CreateSession(ctx context.Context, courseID string, req *dto.CreateClassSessionRequest, caller Caller) (*dto.ClassSessionResponse, error)
	UpdateSession(ctx context.Context, id string, req *dto.UpdateClassSessionRequest, caller Caller) (*dto.ClassSessionResponse, error)
	DeleteSession(ctx context.Context, id string, caller Caller) error
	ImportSessions(ctx context.Context, courseID string, r io.Reader, caller Caller) (*dto.ImportSessionsResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCatalogService creates a CatalogService
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════ Programs ════════════════════════

func (s *catalogService) ListPrograms(ctx context.Context, includeDrafts bool) ([]dto.ProgramResponse, error) {
	programs, err := s.repo.Program.List(ctx, !includeDrafts)
	if err != nil {
		s.logger.Error("list programs failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		list = append(list, toProgramResponse(&programs[i], false))
	}
	return list, nil
}

func (s *catalogService) GetProgram(ctx context.Context, slug string, includeDrafts bool) (*dto.ProgramResponse, error) {
	p, err := s.repo.Program.GetBySlug(ctx, slug, !includeDrafts)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	resp := toProgramResponse(p, true)
	return &resp, nil
}

func (s *catalogService) CreateProgram(ctx context.Context, req *dto.CreateProgramRequest, callerID string) (*dto.ProgramResponse, error) {
	ageMin, ageMax := defaultAge(req.AgeMin, 5), defaultAge(req.AgeMax, 18)
	if ageMax < ageMin {
		return nil, ErrInvalidAgeRange
	}

	slug, err := pickSlug(ctx, req.Slug, req.Title, func(ctx context.Context, slug string) (bool, error) {
		return s.repo.Program.SlugTaken(ctx, slug, "")
	})
	if err != nil {
		return nil, err
	}

	p := &model.Program{
		Slug:        slug,
		Title:       strings.TrimSpace(req.Title),
		Summary:     req.Summary,
		Description: req.Description,
		AgeMin:      ageMin,
		AgeMax:      ageMax,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Position:    req.Position,
		IsPublished: req.IsPublished,
	}
	p.CreatedBy = &callerID

	if err := s.repo.Program.Create(ctx, p); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("create program failed", zap.Error(err))
		return nil, err
	}
	resp := toProgramResponse(p, false)
	return &resp, nil
}

func (s *catalogService) UpdateProgram(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID string) (*dto.ProgramResponse, error) {
	p, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	if req.Slug != nil && *req.Slug != p.Slug {
		taken, err := s.repo.Program.SlugTaken(ctx, *req.Slug, p.ProgramID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		p.Slug = *req.Slug
	}
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		p.Summary = *req.Summary
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.AgeMin != nil {
		p.AgeMin = *req.AgeMin
	}
	if req.AgeMax != nil {
		p.AgeMax = *req.AgeMax
	}
	if p.AgeMax < p.AgeMin {
		return nil, ErrInvalidAgeRange
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Position != nil {
		p.Position = *req.Position
	}
	if req.IsPublished != nil {
		p.IsPublished = *req.IsPublished
	}
	p.UpdatedBy = &callerID

	if err := s.repo.Program.Update(ctx, p); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("update program failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toProgramResponse(p, false)
	return &resp, nil
}

func (s *catalogService) DeleteProgram(ctx context.Context, id string, callerID string) error {
	if err := s.repo.Program.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		s.logger.Error("delete program failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════ Courses ════════════════════════

func (s *catalogService) ListCourses(ctx context.Context, req *dto.CourseListRequest, caller *Caller) ([]dto.CourseSummary, int64, error) {
	filter := repository.CourseFilter{
		Level:         req.Level,
		Language:      req.Language,
		Age:           req.Age,
		ProgramSlug:   req.Program,
		Keyword:       req.Keyword,
		PublishedOnly: true,
	}
	if req.IncludeDrafts && caller != nil && caller.IsStaff() {
		filter.PublishedOnly = false
		if caller.Role == model.RoleInstructor {
			filter.InstructorID = caller.UserID
		}
	}

	courses, total, err := s.repo.Course.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list courses failed", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.CourseSummary, 0, len(courses))
	for i := range courses {
		list = append(list, toCourseSummary(&courses[i]))
	}
	return list, total, nil
}

func (s *catalogService) GetCourse(ctx context.Context, slug string, caller *Caller) (*dto.CourseDetail, error) {
	c, err := s.repo.Course.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !c.IsPublished && (caller == nil || !canEditCourse(*caller, c)) {
		return nil, ErrCourseNotFound
	}
	return s.courseDetail(ctx, c)
}

func (s *catalogService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest, caller Caller) (*dto.CourseDetail, error) {
	ageMin, ageMax := defaultAge(req.AgeMin, 5), defaultAge(req.AgeMax, 18)
	if ageMax < ageMin {
		return nil, ErrInvalidAgeRange
	}

	instructorID, err := s.pickInstructor(ctx, req.InstructorID, caller)
	if err != nil {
		return nil, err
	}
	if req.ProgramID != nil {
		if _, err := s.repo.Program.GetByID(ctx, *req.ProgramID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProgramNotFound
			}
			return nil, err
		}
	}

	slug, err := pickSlug(ctx, req.Slug, req.Title, func(ctx context.Context, slug string) (bool, error) {
		return s.repo.Course.SlugTaken(ctx, slug, "")
	})
	if err != nil {
		return nil, err
	}

	level := req.Level
	if level == "" {
		level = model.LevelBeginner
	}
	completionXP := req.CompletionXP
	if completionXP == 0 {
		completionXP = 100
	}

	c := &model.Course{
		ProgramID:     req.ProgramID,
		InstructorID:  instructorID,
		Slug:          slug,
		Title:         strings.TrimSpace(req.Title),
		Summary:       req.Summary,
		Description:   req.Description,
		Level:         level,
		Language:      req.Language,
		AgeMin:        ageMin,
		AgeMax:        ageMax,
		PriceCents:    req.PriceCents,
		ThumbnailURL:  req.ThumbnailURL,
		Outcomes:      req.Outcomes,
		DurationWeeks: req.DurationWeeks,
		CompletionXP:  completionXP,
		IsPublished:   req.IsPublished,
	}
	c.CreatedBy = &caller.UserID

	if err := s.repo.Course.Create(ctx, c); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("create course failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("course created", zap.String("course_id", c.CourseID), zap.String("slug", c.Slug))
	return s.courseDetail(ctx, c)
}

func (s *catalogService) UpdateCourse(ctx context.Context, id string, req *dto.UpdateCourseRequest, caller Caller) (*dto.CourseDetail, error) {
	c, err := s.editableCourse(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != c.Slug {
		taken, err := s.repo.Course.SlugTaken(ctx, *req.Slug, c.CourseID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		c.Slug = *req.Slug
	}
	if req.InstructorID != nil {
		ins, err := s.pickInstructor(ctx, req.InstructorID, caller)
		if err != nil {
			return nil, err
		}
		c.InstructorID = ins
		c.Instructor = nil
	}
	if req.ProgramID != nil {
		if _, err := s.repo.Program.GetByID(ctx, *req.ProgramID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProgramNotFound
			}
			return nil, err
		}
		c.ProgramID = req.ProgramID
		c.Program = nil
	}
	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		c.Summary = *req.Summary
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Language != nil {
		c.Language = *req.Language
	}
	if req.AgeMin != nil {
		c.AgeMin = *req.AgeMin
	}
	if req.AgeMax != nil {
		c.AgeMax = *req.AgeMax
	}
	if c.AgeMax < c.AgeMin {
		return nil, ErrInvalidAgeRange
	}
	if req.PriceCents != nil {
		c.PriceCents = *req.PriceCents
	}
	if req.ThumbnailURL != nil {
		c.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Outcomes != nil {
		c.Outcomes = *req.Outcomes
	}
	if req.DurationWeeks != nil {
		c.DurationWeeks = *req.DurationWeeks
	}
	if req.CompletionXP != nil {
		c.CompletionXP = *req.CompletionXP
	}
	c.UpdatedBy = &caller.UserID

	if err := s.repo.Course.Update(ctx, c); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update course failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.courseDetail(ctx, c)
}

func (s *catalogService) SetCoursePublished(ctx context.Context, id string, published bool, caller Caller) (*dto.CourseSummary, error) {
	c, err := s.editableCourse(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	c.IsPublished = published
	c.UpdatedBy = &caller.UserID
	if err := s.repo.Course.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("course visibility changed", zap.String("course_id", id), zap.Bool("published", published))
	resp := toCourseSummary(c)
	return &resp, nil
}

func (s *catalogService) DeleteCourse(ctx context.Context, id string, caller Caller) error {
	if _, err := s.editableCourse(ctx, id, caller); err != nil {
		return err
	}
	if err := s.repo.Course.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("delete course failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════ Lessons ════════════════════════

// GetLesson full lesson content: staff always, everyone else when enrolled or the lesson is a preview
func (s *catalogService) GetLesson(ctx context.Context, courseSlug, lessonSlug string, caller Caller) (*dto.LessonDetail, error) {
	c, err := s.repo.Course.GetBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !c.IsPublished && !canEditCourse(caller, c) {
		return nil, ErrCourseNotFound
	}

	l, err := s.repo.Lesson.GetByCourseAndSlug(ctx, c.CourseID, lessonSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	if !caller.IsStaff() && !l.IsPreview {
		enrolled, err := s.repo.Enrollment.HasEnrollmentForUser(ctx, caller.UserID, c.CourseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrLessonLocked
		}
	}

	resp := toLessonDetail(l, c)
	if caller.Role == model.RoleStudent {
		if st, err := s.repo.Student.GetByUserID(ctx, caller.UserID); err == nil {
			done, err := s.repo.Progress.CompletedLessonIDs(ctx, st.StudentID, c.CourseID)
			if err != nil {
				return nil, err
			}
			for _, id := range done {
				if id == l.LessonID {
					resp.Completed = true
					break
				}
			}
		}
	}
	return &resp, nil
}

func (s *catalogService) CreateLesson(ctx context.Context, courseID string, req *dto.CreateLessonRequest, caller Caller) (*dto.LessonDetail, error) {
	c, err := s.editableCourse(ctx, courseID, caller)
	if err != nil {
		return nil, err
	}

	slug, err := pickSlug(ctx, req.Slug, req.Title, func(ctx context.Context, slug string) (bool, error) {
		return s.repo.Lesson.SlugTaken(ctx, c.CourseID, slug, "")
	})
	if err != nil {
		return nil, err
	}

	position := req.Position
	if position == 0 {
		max, err := s.repo.Lesson.MaxPosition(ctx, c.CourseID)
		if err != nil {
			return nil, err
		}
		position = max + 1
	}
	xp := 10
	if req.XPReward != nil {
		xp = *req.XPReward
	}

	l := &model.Lesson{
		CourseID:        c.CourseID,
		Slug:            slug,
		Title:           strings.TrimSpace(req.Title),
		Summary:         req.Summary,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		Position:        position,
		DurationMinutes: req.DurationMinutes,
		XPReward:        xp,
		IsPreview:       req.IsPreview,
	}
	l.CreatedBy = &caller.UserID

	if err := s.repo.Lesson.Create(ctx, l); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("create lesson failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	resp := toLessonDetail(l, c)
	return &resp, nil
}

func (s *catalogService) UpdateLesson(ctx context.Context, id string, req *dto.UpdateLessonRequest, caller Caller) (*dto.LessonDetail, error) {
	l, c, err := s.editableLesson(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != l.Slug {
		taken, err := s.repo.Lesson.SlugTaken(ctx, l.CourseID, *req.Slug, l.LessonID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		l.Slug = *req.Slug
	}
	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		l.Summary = *req.Summary
	}
	if req.Content != nil {
		l.Content = *req.Content
	}
	if req.VideoURL != nil {
		l.VideoURL = *req.VideoURL
	}
	if req.Position != nil {
		l.Position = *req.Position
	}
	if req.DurationMinutes != nil {
		l.DurationMinutes = *req.DurationMinutes
	}
	if req.XPReward != nil {
		l.XPReward = *req.XPReward
	}
	if req.IsPreview != nil {
		l.IsPreview = *req.IsPreview
	}
	l.UpdatedBy = &caller.UserID

	if err := s.repo.Lesson.Update(ctx, l); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("update lesson failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toLessonDetail(l, c)
	return &resp, nil
}

func (s *catalogService) DeleteLesson(ctx context.Context, id string, caller Caller) error {
	if _, _, err := s.editableLesson(ctx, id, caller); err != nil {
		return err
	}
	if err := s.repo.Lesson.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}

// ════════════════════════ Class sessions ════════════════════════

func (s *catalogService) ListSessions(ctx context.Context, courseSlug string) ([]dto.ClassSessionResponse, error) {
	c, err := s.repo.Course.GetBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	sessions, err := s.repo.ClassSession.ListUpcoming(ctx, []string{c.CourseID}, s.now(), 0)
	if err != nil {
		return nil, err
	}
	list := make([]dto.ClassSessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, toClassSessionResponse(&sessions[i]))
	}
	return list, nil
}

func (s *catalogService) CreateSession(ctx context.Context, courseID string, req *dto.CreateClassSessionRequest, caller Caller) (*dto.ClassSessionResponse, error) {
	c, err := s.editableCourse(ctx, courseID, caller)
	if err != nil {
		return nil, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ErrInvalidTimeRange
	}

	cs := &model.ClassSession{
		CourseID:    c.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		MeetingURL:  req.MeetingURL,
	}
	cs.CreatedBy = &caller.UserID

	if err := s.repo.ClassSession.Create(ctx, cs); err != nil {
		s.logger.Error("create class session failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	resp := toClassSessionResponse(cs)
	return &resp, nil
}

func (s *catalogService) UpdateSession(ctx context.Context, id string, req *dto.UpdateClassSessionRequest, caller Caller) (*dto.ClassSessionResponse, error) {
	cs, err := s.editableSession(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		cs.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		cs.Description = *req.Description
	}
	if req.StartsAt != nil {
		cs.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		cs.EndsAt = req.EndsAt.UTC()
	}
	if req.MeetingURL != nil {
		cs.MeetingURL = *req.MeetingURL
	}
	if !cs.EndsAt.After(cs.StartsAt) {
		return nil, ErrInvalidTimeRange
	}
	cs.UpdatedBy = &caller.UserID

	if err := s.repo.ClassSession.Update(ctx, cs); err != nil {
		s.logger.Error("update class session failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toClassSessionResponse(cs)
	return &resp, nil
}

func (s *catalogService) DeleteSession(ctx context.Context, id string, caller Caller) error {
	if _, err := s.editableSession(ctx, id, caller); err != nil {
		return err
	}
	if err := s.repo.ClassSession.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// ImportSessions creates class sessions from an iCalendar file. Past occurrences and
// occurrences already scheduled at the same start time are skipped.
func (s *catalogService) ImportSessions(ctx context.Context, courseID string, r io.Reader, caller Caller) (*dto.ImportSessionsResponse, error) {
	c, err := s.editableCourse(ctx, courseID, caller)
	if err != nil {
		return nil, err
	}

	now := s.now()
	events, err := calendar.Parse(r, time.UTC, now.Add(importHorizon))
	if err != nil {
		s.logger.Warn("ics import rejected", zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	resp := &dto.ImportSessionsResponse{Sessions: []dto.ClassSessionResponse{}}
	for _, ev := range events {
		if !ev.End.After(ev.Start) || ev.End.Before(now) {
			resp.Skipped++
			continue
		}
		exists, err := s.repo.ClassSession.ExistsAt(ctx, c.CourseID, ev.Start.UTC())
		if err != nil {
			return nil, err
		}
		if exists {
			resp.Skipped++
			continue
		}

		cs := &model.ClassSession{
			CourseID:    c.CourseID,
			Title:       ev.Summary,
			Description: ev.Description,
			StartsAt:    ev.Start.UTC(),
			EndsAt:      ev.End.UTC(),
			MeetingURL:  meetingURL(ev),
		}
		cs.CreatedBy = &caller.UserID
		if err := s.repo.ClassSession.Create(ctx, cs); err != nil {
			s.logger.Error("import class session failed", zap.String("course_id", courseID), zap.Error(err))
			return nil, err
		}
		resp.Created++
		resp.Sessions = append(resp.Sessions, toClassSessionResponse(cs))
	}

	s.logger.Info("class sessions imported",
		zap.String("course_id", courseID), zap.Int("created", resp.Created), zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// ── helpers ──

func (s *catalogService) editableCourse(ctx context.Context, id string, caller Caller) (*model.Course, error) {
	c, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canEditCourse(caller, c) {
		return nil, ErrNoPermission
	}
	return c, nil
}

func (s *catalogService) editableLesson(ctx context.Context, id string, caller Caller) (*model.Lesson, *model.Course, error) {
	l, err := s.repo.Lesson.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLessonNotFound
		}
		return nil, nil, err
	}
	c, err := s.editableCourse(ctx, l.CourseID, caller)
	if err != nil {
		return nil, nil, err
	}
	return l, c, nil
}

func (s *catalogService) editableSession(ctx context.Context, id string, caller Caller) (*model.ClassSession, error) {
	cs, err := s.repo.ClassSession.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := s.editableCourse(ctx, cs.CourseID, caller); err != nil {
		return nil, err
	}
	return cs, nil
}

// pickInstructor instructors always teach their own courses; admins may assign any instructor
func (s *catalogService) pickInstructor(ctx context.Context, requested *string, caller Caller) (*string, error) {
	if caller.Role == model.RoleInstructor {
		if requested != nil && *requested != caller.UserID {
			return nil, ErrNoPermission
		}
		return strPtr(caller.UserID), nil
	}
	if requested == nil {
		return nil, nil
	}
	u, err := s.repo.User.GetByID(ctx, *requested)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	if u.Role != model.RoleInstructor && u.Role != model.RoleAdmin {
		return nil, ErrInstructorNotFound
	}
	return &u.UserID, nil
}

func (s *catalogService) courseDetail(ctx context.Context, c *model.Course) (*dto.CourseDetail, error) {
	lessons, err := s.repo.Lesson.ListByCourse(ctx, c.CourseID)
	if err != nil {
		return nil, err
	}
	avg, count, err := s.repo.Review.Summary(ctx, c.CourseID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ClassSession.ListUpcoming(ctx, []string{c.CourseID}, s.now(), upcomingSessionsLimit)
	if err != nil {
		return nil, err
	}

	d := &dto.CourseDetail{
		CourseSummary:    toCourseSummary(c),
		Description:      c.Description,
		Outcomes:         nonNilTags(c.Outcomes),
		DurationWeeks:    c.DurationWeeks,
		CompletionXP:     c.CompletionXP,
		Lessons:          make([]dto.LessonOutline, 0, len(lessons)),
		Rating:           dto.RatingSummary{Average: roundRating(avg), Count: count},
		UpcomingSessions: make([]dto.ClassSessionResponse, 0, len(sessions)),
	}
	if c.Instructor != nil {
		d.Instructor = &dto.InstructorInfo{
			ID:        c.Instructor.UserID,
			Name:      c.Instructor.Name,
			AvatarURL: c.Instructor.AvatarURL,
		}
	}
	for i := range lessons {
		d.Lessons = append(d.Lessons, toLessonOutline(&lessons[i]))
	}
	for i := range sessions {
		d.UpcomingSessions = append(d.UpcomingSessions, toClassSessionResponse(&sessions[i]))
	}
	return d, nil
}

func toProgramResponse(p *model.Program, withCourses bool) dto.ProgramResponse {
	resp := dto.ProgramResponse{
		ID:          p.ProgramID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Description: p.Description,
		AgeMin:      p.AgeMin,
		AgeMax:      p.AgeMax,
		PriceCents:  p.PriceCents,
		ImageURL:    p.ImageURL,
		Position:    p.Position,
		IsPublished: p.IsPublished,
	}
	if withCourses {
		resp.Courses = make([]dto.CourseSummary, 0, len(p.Courses))
		for i := range p.Courses {
			resp.Courses = append(resp.Courses, toCourseSummary(&p.Courses[i]))
		}
	}
	return resp
}

func toLessonDetail(l *model.Lesson, c *model.Course) dto.LessonDetail {
	return dto.LessonDetail{
		LessonOutline: toLessonOutline(l),
		CourseID:      c.CourseID,
		CourseSlug:    c.Slug,
		Content:       l.Content,
		VideoURL:      l.VideoURL,
	}
}

func defaultAge(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// roundRating one decimal place
func roundRating(avg float64) float64 {
	return float64(int(avg*10+0.5)) / 10
}

// meetingURL prefers the event URL, falling back to a location that is itself a link
func meetingURL(ev calendar.Event) string {
	if ev.URL != "" {
		return ev.URL
	}
	if strings.HasPrefix(ev.Location, "http://") || strings.HasPrefix(ev.Location, "https://") {
		return ev.Location
	}
	return ""
}
