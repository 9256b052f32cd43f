package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
)

// mockStore in-memory data behind a repository.Repository with no database.
// Transaction runs the callback directly, so nothing is rolled back on error.
type mockStore struct {
	users        *mockUserRepo
	students     *mockStudentRepo
	programs     *mockProgramRepo
	courses      *mockCourseRepo
	lessons      *mockLessonRepo
	sessions     *mockClassSessionRepo
	enrollments  *mockEnrollmentRepo
	progress     *mockProgressRepo
	assignments  *mockAssignmentRepo
	submissions  *mockSubmissionRepo
	badges       *mockBadgeRepo
	xp           *mockXPRepo
	posts        *mockBlogPostRepo
	comments     *mockCommentRepo
	likes        *mockLikeRepo
	projects     *mockProjectRepo
	certificates *mockCertificateRepo
	reviews      *mockReviewRepo
	contacts     *mockContactRepo
	payments     *mockPaymentRepo
	pages        *mockPageRepo
}

func newMockStore() (*mockStore, *repository.Repository) {
	m := &mockStore{
		users:        &mockUserRepo{rows: map[string]*model.User{}},
		students:     &mockStudentRepo{rows: map[string]*model.Student{}},
		programs:     &mockProgramRepo{rows: map[string]*model.Program{}},
		courses:      &mockCourseRepo{rows: map[string]*model.Course{}},
		lessons:      &mockLessonRepo{rows: map[string]*model.Lesson{}},
		sessions:     &mockClassSessionRepo{rows: map[string]*model.ClassSession{}},
		enrollments:  &mockEnrollmentRepo{rows: map[string]*model.Enrollment{}},
		progress:     &mockProgressRepo{rows: map[string]*model.LessonProgress{}},
		assignments:  &mockAssignmentRepo{rows: map[string]*model.Assignment{}},
		submissions:  &mockSubmissionRepo{rows: map[string]*model.Submission{}},
		badges:       &mockBadgeRepo{rows: map[string]*model.Badge{}},
		xp:           &mockXPRepo{},
		posts:        &mockBlogPostRepo{rows: map[string]*model.BlogPost{}},
		comments:     &mockCommentRepo{rows: map[string]*model.Comment{}},
		likes:        &mockLikeRepo{rows: map[string]bool{}},
		projects:     &mockProjectRepo{rows: map[string]*model.StudentProject{}},
		certificates: &mockCertificateRepo{rows: map[string]*model.Certificate{}},
		reviews:      &mockReviewRepo{rows: map[string]*model.Review{}},
		contacts:     &mockContactRepo{rows: map[string]*model.ContactMessage{}},
		payments:     &mockPaymentRepo{rows: map[string]*model.Payment{}},
		pages:        &mockPageRepo{rows: map[string]*model.Page{}},
	}
	m.enrollments.students = m.students
	m.enrollments.courses = m.courses
	m.sessions.courses = m.courses
	m.programs.courses = m.courses

	repo := &repository.Repository{
		User:         m.users,
		Student:      m.students,
		Program:      m.programs,
		Course:       m.courses,
		Lesson:       m.lessons,
		ClassSession: m.sessions,
		Enrollment:   m.enrollments,
		Progress:     m.progress,
		Assignment:   m.assignments,
		Submission:   m.submissions,
		Badge:        m.badges,
		XP:           m.xp,
		BlogPost:     m.posts,
		Comment:      m.comments,
		Like:         m.likes,
		Project:      m.projects,
		Certificate:  m.certificates,
		Review:       m.reviews,
		Contact:      m.contacts,
		Payment:      m.payments,
		Page:         m.pages,
	}
	return m, repo
}

func newID() string { return uuid.NewString() }

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// ── fixtures ──

func (m *mockStore) addUser(role, name string) *model.User {
	u := &model.User{
		UserID:   newID(),
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:     role,
		IsActive: true,
	}
	m.users.rows[u.UserID] = u
	return u
}

// addStudent a student profile; login and parent are optional
func (m *mockStore) addStudent(name string, login, parent *model.User) *model.Student {
	st := &model.Student{StudentID: newID(), DisplayName: name, Level: 1}
	if login != nil {
		st.UserID = &login.UserID
	}
	if parent != nil {
		st.ParentID = &parent.UserID
	}
	m.students.rows[st.StudentID] = st
	return st
}

func (m *mockStore) addCourse(title string, priceCents int64, published bool, instructor *model.User) *model.Course {
	c := &model.Course{
		CourseID:     newID(),
		Slug:         Slugify(title),
		Title:        title,
		Level:        model.LevelBeginner,
		Language:     "Scratch",
		AgeMin:       7,
		AgeMax:       12,
		PriceCents:   priceCents,
		CompletionXP: 100,
		IsPublished:  published,
	}
	if instructor != nil {
		c.InstructorID = &instructor.UserID
	}
	m.courses.rows[c.CourseID] = c
	return c
}

func (m *mockStore) addLesson(course *model.Course, title string, position int, preview bool) *model.Lesson {
	l := &model.Lesson{
		LessonID:  newID(),
		CourseID:  course.CourseID,
		Slug:      Slugify(title),
		Title:     title,
		Position:  position,
		XPReward:  10,
		IsPreview: preview,
	}
	m.lessons.rows[l.LessonID] = l
	return l
}

func (m *mockStore) enroll(st *model.Student, course *model.Course, status string) *model.Enrollment {
	e := &model.Enrollment{
		EnrollmentID: newID(),
		StudentID:    st.StudentID,
		CourseID:     course.CourseID,
		Status:       status,
		EnrolledAt:   time.Now(),
	}
	m.enrollments.rows[e.EnrollmentID] = e
	return e
}

func (m *mockStore) addBadge(slug, criterion string, threshold, xp int) *model.Badge {
	b := &model.Badge{
		BadgeID:   newID(),
		Slug:      slug,
		Name:      slug,
		Criterion: criterion,
		Threshold: threshold,
		XPReward:  xp,
		IsActive:  true,
	}
	m.badges.rows[b.BadgeID] = b
	return b
}

// ── users ──

type mockUserRepo struct {
	rows map[string]*model.User
}

func (r *mockUserRepo) Create(_ context.Context, u *model.User) error {
	for _, x := range r.rows {
		if strings.EqualFold(x.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.UserID == "" {
		u.UserID = newID()
	}
	r.rows[u.UserID] = u
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.rows[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.rows[u.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	u.Version++
	r.rows[u.UserID] = u
	return nil
}

func (r *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (r *mockUserRepo) List(_ context.Context, f repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.rows {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(f.Keyword)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range r.rows {
		out[u.Role]++
	}
	return out, nil
}

// ── students ──

type mockStudentRepo struct {
	rows map[string]*model.Student
}

func (r *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	if s.StudentID == "" {
		s.StudentID = newID()
	}
	r.rows[s.StudentID] = s
	return nil
}

func (r *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := r.rows[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockStudentRepo) GetForUpdate(ctx context.Context, id string) (*model.Student, error) {
	return r.GetByID(ctx, id)
}

func (r *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range r.rows {
		if s.UserID != nil && *s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockStudentRepo) ListByParent(_ context.Context, parentID string) ([]model.Student, error) {
	var out []model.Student
	for _, s := range r.rows {
		if s.ParentID != nil && *s.ParentID == parentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *mockStudentRepo) Update(_ context.Context, s *model.Student) error {
	s.Version++
	r.rows[s.StudentID] = s
	return nil
}

func (r *mockStudentRepo) Leaderboard(_ context.Context, limit int) ([]model.Student, error) {
	var out []model.Student
	for _, s := range r.rows {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalXP > out[j].TotalXP })
	return paginate(out, 0, limit), nil
}

func (r *mockStudentRepo) ResetInactiveStreaks(_ context.Context, activeSince time.Time) (int64, error) {
	var n int64
	for _, s := range r.rows {
		if s.StreakDays > 0 && (s.LastActivityDate == nil || s.LastActivityDate.Before(activeSince)) {
			s.StreakDays = 0
			n++
		}
	}
	return n, nil
}

func (r *mockStudentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

// ── catalog ──

type mockProgramRepo struct {
	rows    map[string]*model.Program
	courses *mockCourseRepo
}

func (r *mockProgramRepo) Create(_ context.Context, p *model.Program) error {
	if p.ProgramID == "" {
		p.ProgramID = newID()
	}
	r.rows[p.ProgramID] = p
	return nil
}

func (r *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if p, ok := r.rows[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProgramRepo) GetBySlug(_ context.Context, slug string, publishedOnly bool) (*model.Program, error) {
	for _, p := range r.rows {
		if p.Slug != slug || (publishedOnly && !p.IsPublished) {
			continue
		}
		full := *p
		full.Courses = nil
		for _, c := range r.courses.rows {
			if c.ProgramID != nil && *c.ProgramID == p.ProgramID && (!publishedOnly || c.IsPublished) {
				full.Courses = append(full.Courses, *c)
			}
		}
		return &full, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProgramRepo) List(_ context.Context, publishedOnly bool) ([]model.Program, error) {
	var out []model.Program
	for _, p := range r.rows {
		if !publishedOnly || p.IsPublished {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *mockProgramRepo) Update(_ context.Context, p *model.Program) error {
	r.rows[p.ProgramID] = p
	return nil
}

func (r *mockProgramRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockProgramRepo) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	for _, p := range r.rows {
		if p.Slug == slug && p.ProgramID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type mockCourseRepo struct {
	rows map[string]*model.Course
}

func (r *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	if c.CourseID == "" {
		c.CourseID = newID()
	}
	r.rows[c.CourseID] = c
	return nil
}

func (r *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := r.rows[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCourseRepo) GetBySlug(_ context.Context, slug string) (*model.Course, error) {
	for _, c := range r.rows {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCourseRepo) List(_ context.Context, f repository.CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var out []model.Course
	for _, c := range r.rows {
		switch {
		case f.PublishedOnly && !c.IsPublished:
			continue
		case f.Level != "" && c.Level != f.Level:
			continue
		case f.Language != "" && !strings.EqualFold(c.Language, f.Language):
			continue
		case f.Age > 0 && (f.Age < c.AgeMin || f.Age > c.AgeMax):
			continue
		case f.InstructorID != "" && (c.InstructorID == nil || *c.InstructorID != f.InstructorID):
			continue
		case f.Keyword != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.Keyword)):
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	if _, ok := r.rows[c.CourseID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c.Version++
	r.rows[c.CourseID] = c
	return nil
}

func (r *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockCourseRepo) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	for _, c := range r.rows {
		if c.Slug == slug && c.CourseID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockCourseRepo) Count(_ context.Context, publishedOnly bool) (int64, error) {
	var n int64
	for _, c := range r.rows {
		if !publishedOnly || c.IsPublished {
			n++
		}
	}
	return n, nil
}

type mockLessonRepo struct {
	rows map[string]*model.Lesson
}

func (r *mockLessonRepo) Create(_ context.Context, l *model.Lesson) error {
	if l.LessonID == "" {
		l.LessonID = newID()
	}
	r.rows[l.LessonID] = l
	return nil
}

func (r *mockLessonRepo) GetByID(_ context.Context, id string) (*model.Lesson, error) {
	if l, ok := r.rows[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockLessonRepo) GetByCourseAndSlug(_ context.Context, courseID, slug string) (*model.Lesson, error) {
	for _, l := range r.rows {
		if l.CourseID == courseID && l.Slug == slug {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockLessonRepo) ListByCourse(_ context.Context, courseID string) ([]model.Lesson, error) {
	var out []model.Lesson
	for _, l := range r.rows {
		if l.CourseID == courseID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *mockLessonRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	var n int64
	for _, l := range r.rows {
		if l.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (r *mockLessonRepo) MaxPosition(_ context.Context, courseID string) (int, error) {
	max := 0
	for _, l := range r.rows {
		if l.CourseID == courseID && l.Position > max {
			max = l.Position
		}
	}
	return max, nil
}

func (r *mockLessonRepo) Update(_ context.Context, l *model.Lesson) error {
	r.rows[l.LessonID] = l
	return nil
}

func (r *mockLessonRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockLessonRepo) SlugTaken(_ context.Context, courseID, slug, excludeID string) (bool, error) {
	for _, l := range r.rows {
		if l.CourseID == courseID && l.Slug == slug && l.LessonID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type mockClassSessionRepo struct {
	rows    map[string]*model.ClassSession
	courses *mockCourseRepo
}

func (r *mockClassSessionRepo) Create(_ context.Context, s *model.ClassSession) error {
	if s.ClassSessionID == "" {
		s.ClassSessionID = newID()
	}
	r.rows[s.ClassSessionID] = s
	return nil
}

func (r *mockClassSessionRepo) GetByID(_ context.Context, id string) (*model.ClassSession, error) {
	if s, ok := r.rows[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockClassSessionRepo) ListUpcoming(_ context.Context, courseIDs []string, from time.Time, limit int) ([]model.ClassSession, error) {
	want := map[string]bool{}
	for _, id := range courseIDs {
		want[id] = true
	}
	var out []model.ClassSession
	for _, s := range r.rows {
		if want[s.CourseID] && s.EndsAt.After(from) {
			cs := *s
			cs.Course = r.courses.rows[s.CourseID]
			out = append(out, cs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return paginate(out, 0, limit), nil
}

func (r *mockClassSessionRepo) ExistsAt(_ context.Context, courseID string, startsAt time.Time) (bool, error) {
	for _, s := range r.rows {
		if s.CourseID == courseID && s.StartsAt.Equal(startsAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockClassSessionRepo) Update(_ context.Context, s *model.ClassSession) error {
	r.rows[s.ClassSessionID] = s
	return nil
}

func (r *mockClassSessionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

// ── enrollment & progress ──

type mockEnrollmentRepo struct {
	rows     map[string]*model.Enrollment
	students *mockStudentRepo
	courses  *mockCourseRepo
}

func (r *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	for _, x := range r.rows {
		if x.StudentID == e.StudentID && x.CourseID == e.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if e.EnrollmentID == "" {
		e.EnrollmentID = newID()
	}
	r.rows[e.EnrollmentID] = e
	return nil
}

func (r *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	e, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	e.Course = r.courses.rows[e.CourseID]
	return e, nil
}

func (r *mockEnrollmentRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	for _, e := range r.rows {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range r.rows {
		if e.StudentID == studentID {
			cp := *e
			cp.Course = r.courses.rows[e.CourseID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *mockEnrollmentRepo) ListForExport(_ context.Context, courseID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range r.rows {
		if courseID != "" && e.CourseID != courseID {
			continue
		}
		cp := *e
		cp.Course = r.courses.rows[e.CourseID]
		cp.Student = r.students.rows[e.StudentID]
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out, nil
}

func (r *mockEnrollmentRepo) ActiveCourseIDs(_ context.Context, studentID string) ([]string, error) {
	var out []string
	for _, e := range r.rows {
		if e.StudentID == studentID && e.Status == model.EnrollmentActive {
			out = append(out, e.CourseID)
		}
	}
	return out, nil
}

func (r *mockEnrollmentRepo) HasEnrollmentForUser(_ context.Context, userID, courseID string) (bool, error) {
	for _, e := range r.rows {
		if e.CourseID != courseID || e.Status == model.EnrollmentCancelled {
			continue
		}
		st, ok := r.students.rows[e.StudentID]
		if !ok {
			continue
		}
		if (st.UserID != nil && *st.UserID == userID) || (st.ParentID != nil && *st.ParentID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	if _, ok := r.rows[e.EnrollmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	e.Version++
	r.rows[e.EnrollmentID] = e
	return nil
}

func (r *mockEnrollmentRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, e := range r.rows {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

type mockProgressRepo struct {
	rows map[string]*model.LessonProgress // key student|lesson
}

func (r *mockProgressRepo) Create(_ context.Context, p *model.LessonProgress) (bool, error) {
	key := p.StudentID + "|" + p.LessonID
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	r.rows[key] = p
	return true, nil
}

func (r *mockProgressRepo) CountByStudentCourse(_ context.Context, studentID, courseID string) (int64, error) {
	var n int64
	for _, p := range r.rows {
		if p.StudentID == studentID && p.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (r *mockProgressRepo) CompletedLessonIDs(_ context.Context, studentID, courseID string) ([]string, error) {
	var out []string
	for _, p := range r.rows {
		if p.StudentID == studentID && p.CourseID == courseID {
			out = append(out, p.LessonID)
		}
	}
	return out, nil
}

// ── assignments ──

type mockAssignmentRepo struct {
	rows map[string]*model.Assignment
}

func (r *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = newID()
	}
	r.rows[a.AssignmentID] = a
	return nil
}

func (r *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := r.rows[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAssignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	return r.ListByCourses(ctx, []string{courseID})
}

func (r *mockAssignmentRepo) ListByCourses(_ context.Context, courseIDs []string) ([]model.Assignment, error) {
	want := map[string]bool{}
	for _, id := range courseIDs {
		want[id] = true
	}
	var out []model.Assignment
	for _, a := range r.rows {
		if want[a.CourseID] {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	r.rows[a.AssignmentID] = a
	return nil
}

func (r *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

type mockSubmissionRepo struct {
	rows map[string]*model.Submission
}

func (r *mockSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	for _, x := range r.rows {
		if x.AssignmentID == s.AssignmentID && x.StudentID == s.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.SubmissionID == "" {
		s.SubmissionID = newID()
	}
	r.rows[s.SubmissionID] = s
	return nil
}

func (r *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	if s, ok := r.rows[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID string) (*model.Submission, error) {
	for _, s := range r.rows {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSubmissionRepo) ListByAssignment(_ context.Context, assignmentID, status string, offset, limit int) ([]model.Submission, int64, error) {
	var out []model.Submission
	for _, s := range r.rows {
		if s.AssignmentID == assignmentID && (status == "" || s.Status == status) {
			out = append(out, *s)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockSubmissionRepo) ListByStudent(_ context.Context, studentID string, limit int) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range r.rows {
		if s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	return paginate(out, 0, limit), nil
}

func (r *mockSubmissionRepo) Update(_ context.Context, s *model.Submission) error {
	s.Version++
	r.rows[s.SubmissionID] = s
	return nil
}

func (r *mockSubmissionRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, s := range r.rows {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

// ── gamification ──

type mockBadgeRepo struct {
	rows    map[string]*model.Badge
	awarded []model.StudentBadge
}

func (r *mockBadgeRepo) Create(_ context.Context, b *model.Badge) error {
	if b.BadgeID == "" {
		b.BadgeID = newID()
	}
	r.rows[b.BadgeID] = b
	return nil
}

func (r *mockBadgeRepo) GetByID(_ context.Context, id string) (*model.Badge, error) {
	if b, ok := r.rows[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockBadgeRepo) GetBySlug(_ context.Context, slug string) (*model.Badge, error) {
	for _, b := range r.rows {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockBadgeRepo) List(_ context.Context, activeOnly bool) ([]model.Badge, error) {
	var out []model.Badge
	for _, b := range r.rows {
		if !activeOnly || b.IsActive {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out, nil
}

func (r *mockBadgeRepo) Update(_ context.Context, b *model.Badge) error {
	r.rows[b.BadgeID] = b
	return nil
}

func (r *mockBadgeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockBadgeRepo) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	for _, b := range r.rows {
		if b.Slug == slug && b.BadgeID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockBadgeRepo) Award(_ context.Context, studentID, badgeID string, at time.Time) (bool, error) {
	for _, sb := range r.awarded {
		if sb.StudentID == studentID && sb.BadgeID == badgeID {
			return false, nil
		}
	}
	r.awarded = append(r.awarded, model.StudentBadge{
		StudentBadgeID: newID(),
		StudentID:      studentID,
		BadgeID:        badgeID,
		AwardedAt:      at,
		Badge:          r.rows[badgeID],
	})
	return true, nil
}

func (r *mockBadgeRepo) ListAwarded(_ context.Context, studentID string) ([]model.StudentBadge, error) {
	var out []model.StudentBadge
	for _, sb := range r.awarded {
		if sb.StudentID == studentID {
			out = append(out, sb)
		}
	}
	return out, nil
}

func (r *mockBadgeRepo) awardedCount(studentID string) int {
	n := 0
	for _, sb := range r.awarded {
		if sb.StudentID == studentID {
			n++
		}
	}
	return n
}

type mockXPRepo struct {
	entries []model.XPTransaction
}

func (r *mockXPRepo) Create(_ context.Context, tx *model.XPTransaction) error {
	tx.XPTransactionID = newID()
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *mockXPRepo) ListByStudent(_ context.Context, studentID string, limit int) ([]model.XPTransaction, error) {
	var out []model.XPTransaction
	for _, e := range r.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return paginate(out, 0, limit), nil
}

func (r *mockXPRepo) sum(studentID string) int {
	total := 0
	for _, e := range r.entries {
		if e.StudentID == studentID {
			total += e.Amount
		}
	}
	return total
}

// ── blog ──

type mockBlogPostRepo struct {
	rows map[string]*model.BlogPost
}

func (r *mockBlogPostRepo) Create(_ context.Context, p *model.BlogPost) error {
	if p.PostID == "" {
		p.PostID = newID()
	}
	r.rows[p.PostID] = p
	return nil
}

func (r *mockBlogPostRepo) GetByID(_ context.Context, id string) (*model.BlogPost, error) {
	if p, ok := r.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockBlogPostRepo) GetBySlug(_ context.Context, slug string, publishedOnly bool) (*model.BlogPost, error) {
	for _, p := range r.rows {
		if p.Slug == slug && (!publishedOnly || p.IsPublished) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockBlogPostRepo) List(_ context.Context, f repository.BlogFilter, offset, limit int) ([]model.BlogPost, int64, error) {
	var out []model.BlogPost
	for _, p := range r.rows {
		if f.Published != nil && p.IsPublished != *f.Published {
			continue
		}
		if f.Tag != "" && !containsString(p.Tags, f.Tag) {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Keyword)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockBlogPostRepo) Update(_ context.Context, p *model.BlogPost) error {
	p.Version++
	r.rows[p.PostID] = p
	return nil
}

func (r *mockBlogPostRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockBlogPostRepo) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	for _, p := range r.rows {
		if p.Slug == slug && p.PostID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockBlogPostRepo) IncrementViews(_ context.Context, id string) error {
	if p, ok := r.rows[id]; ok {
		p.ViewCount++
	}
	return nil
}

func (r *mockBlogPostRepo) AddLikes(_ context.Context, id string, delta int) (int, error) {
	p, ok := r.rows[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	p.LikeCount += delta
	if p.LikeCount < 0 {
		p.LikeCount = 0
	}
	return p.LikeCount, nil
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

type mockCommentRepo struct {
	rows map[string]*model.Comment
}

func (r *mockCommentRepo) Create(_ context.Context, c *model.Comment) error {
	if c.CommentID == "" {
		c.CommentID = newID()
	}
	r.rows[c.CommentID] = c
	return nil
}

func (r *mockCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	if c, ok := r.rows[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCommentRepo) ListByPost(_ context.Context, postID string, approvedOnly bool, offset, limit int) ([]model.Comment, int64, error) {
	var out []model.Comment
	for _, c := range r.rows {
		if c.PostID == postID && (!approvedOnly || c.IsApproved) {
			out = append(out, *c)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockCommentRepo) ListForModeration(_ context.Context, approved *bool, offset, limit int) ([]model.Comment, int64, error) {
	var out []model.Comment
	for _, c := range r.rows {
		if approved == nil || c.IsApproved == *approved {
			out = append(out, *c)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockCommentRepo) Update(_ context.Context, c *model.Comment) error {
	r.rows[c.CommentID] = c
	return nil
}

func (r *mockCommentRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

type mockLikeRepo struct {
	rows map[string]bool
}

func likeKey(targetType, targetID, userID string) string {
	return targetType + "|" + targetID + "|" + userID
}

func (r *mockLikeRepo) Exists(_ context.Context, targetType, targetID, userID string) (bool, error) {
	return r.rows[likeKey(targetType, targetID, userID)], nil
}

func (r *mockLikeRepo) Add(_ context.Context, targetType, targetID, userID string) (bool, error) {
	k := likeKey(targetType, targetID, userID)
	if r.rows[k] {
		return false, nil
	}
	r.rows[k] = true
	return true, nil
}

func (r *mockLikeRepo) Remove(_ context.Context, targetType, targetID, userID string) (bool, error) {
	k := likeKey(targetType, targetID, userID)
	if !r.rows[k] {
		return false, nil
	}
	delete(r.rows, k)
	return true, nil
}

// ── showcase ──

type mockProjectRepo struct {
	rows map[string]*model.StudentProject
}

func (r *mockProjectRepo) Create(_ context.Context, p *model.StudentProject) error {
	if p.ProjectID == "" {
		p.ProjectID = newID()
	}
	r.rows[p.ProjectID] = p
	return nil
}

func (r *mockProjectRepo) GetByID(_ context.Context, id string) (*model.StudentProject, error) {
	if p, ok := r.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProjectRepo) GetBySlug(_ context.Context, slug string) (*model.StudentProject, error) {
	for _, p := range r.rows {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProjectRepo) ListApproved(_ context.Context, tag string, offset, limit int) ([]model.StudentProject, int64, error) {
	var out []model.StudentProject
	for _, p := range r.rows {
		if p.Status == model.ProjectApproved && (tag == "" || containsString(p.Tags, tag)) {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsFeatured && !out[j].IsFeatured })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockProjectRepo) ListByStatus(_ context.Context, status string, offset, limit int) ([]model.StudentProject, int64, error) {
	var out []model.StudentProject
	for _, p := range r.rows {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockProjectRepo) CountApprovedByStudent(_ context.Context, studentID string) (int64, error) {
	var n int64
	for _, p := range r.rows {
		if p.StudentID == studentID && p.Status == model.ProjectApproved {
			n++
		}
	}
	return n, nil
}

func (r *mockProjectRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, p := range r.rows {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *mockProjectRepo) Update(_ context.Context, p *model.StudentProject) error {
	p.Version++
	r.rows[p.ProjectID] = p
	return nil
}

func (r *mockProjectRepo) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	for _, p := range r.rows {
		if p.Slug == slug && p.ProjectID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockProjectRepo) IncrementViews(_ context.Context, id string) error {
	if p, ok := r.rows[id]; ok {
		p.ViewCount++
	}
	return nil
}

func (r *mockProjectRepo) AddLikes(_ context.Context, id string, delta int) (int, error) {
	p, ok := r.rows[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	p.LikeCount += delta
	if p.LikeCount < 0 {
		p.LikeCount = 0
	}
	return p.LikeCount, nil
}

// ── certificates & reviews ──

type mockCertificateRepo struct {
	rows map[string]*model.Certificate
}

func (r *mockCertificateRepo) Create(_ context.Context, c *model.Certificate) error {
	for _, x := range r.rows {
		if x.StudentID == c.StudentID && x.CourseID == c.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.CertificateID == "" {
		c.CertificateID = newID()
	}
	r.rows[c.CertificateID] = c
	return nil
}

func (r *mockCertificateRepo) GetByCode(_ context.Context, code string) (*model.Certificate, error) {
	for _, c := range r.rows {
		if strings.EqualFold(c.VerificationCode, code) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCertificateRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*model.Certificate, error) {
	for _, c := range r.rows {
		if c.StudentID == studentID && c.CourseID == courseID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCertificateRepo) ListByStudent(_ context.Context, studentID string) ([]model.Certificate, error) {
	var out []model.Certificate
	for _, c := range r.rows {
		if c.StudentID == studentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *mockCertificateRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

type mockReviewRepo struct {
	rows map[string]*model.Review
}

func (r *mockReviewRepo) Create(_ context.Context, rv *model.Review) error {
	for _, x := range r.rows {
		if x.CourseID == rv.CourseID && x.UserID == rv.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if rv.ReviewID == "" {
		rv.ReviewID = newID()
	}
	r.rows[rv.ReviewID] = rv
	return nil
}

func (r *mockReviewRepo) GetByID(_ context.Context, id string) (*model.Review, error) {
	if rv, ok := r.rows[id]; ok {
		return rv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockReviewRepo) GetByCourseAndUser(_ context.Context, courseID, userID string) (*model.Review, error) {
	for _, rv := range r.rows {
		if rv.CourseID == courseID && rv.UserID == userID {
			return rv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockReviewRepo) ListByCourse(_ context.Context, courseID string, offset, limit int) ([]model.Review, int64, error) {
	var out []model.Review
	for _, rv := range r.rows {
		if rv.CourseID == courseID {
			out = append(out, *rv)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockReviewRepo) Summary(_ context.Context, courseID string) (float64, int64, error) {
	var sum, n int64
	for _, rv := range r.rows {
		if rv.CourseID == courseID {
			sum += int64(rv.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (r *mockReviewRepo) Update(_ context.Context, rv *model.Review) error {
	r.rows[rv.ReviewID] = rv
	return nil
}

func (r *mockReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

// ── contact, payments, pages ──

type mockContactRepo struct {
	rows map[string]*model.ContactMessage
}

func (r *mockContactRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	if msg.ContactMessageID == "" {
		msg.ContactMessageID = newID()
	}
	r.rows[msg.ContactMessageID] = msg
	return nil
}

func (r *mockContactRepo) GetByID(_ context.Context, id string) (*model.ContactMessage, error) {
	if msg, ok := r.rows[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockContactRepo) List(_ context.Context, status string, offset, limit int) ([]model.ContactMessage, int64, error) {
	var out []model.ContactMessage
	for _, msg := range r.rows {
		if status == "" || msg.Status == status {
			out = append(out, *msg)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *mockContactRepo) Update(_ context.Context, msg *model.ContactMessage) error {
	r.rows[msg.ContactMessageID] = msg
	return nil
}

func (r *mockContactRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, msg := range r.rows {
		if msg.Status == status {
			n++
		}
	}
	return n, nil
}

type mockPaymentRepo struct {
	rows map[string]*model.Payment
}

func (r *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	if p.PaymentID == "" {
		p.PaymentID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.rows[p.PaymentID] = p
	return nil
}

func (r *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	if p, ok := r.rows[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPaymentRepo) GetBySessionID(_ context.Context, sessionID string) (*model.Payment, error) {
	for _, p := range r.rows {
		if p.StripeSessionID != nil && *p.StripeSessionID == sessionID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPaymentRepo) GetByPaymentIntent(_ context.Context, intent string) (*model.Payment, error) {
	for _, p := range r.rows {
		if p.StripePaymentIntent == intent {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPaymentRepo) HasPaid(_ context.Context, studentID, courseID string) (bool, error) {
	for _, p := range r.rows {
		if p.Status == model.PaymentPaid && p.StudentID != nil && *p.StudentID == studentID &&
			p.CourseID != nil && *p.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockPaymentRepo) ListByUser(_ context.Context, userID string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.rows {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *mockPaymentRepo) Update(_ context.Context, p *model.Payment) error {
	p.Version++
	r.rows[p.PaymentID] = p
	return nil
}

func (r *mockPaymentRepo) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, p := range r.rows {
		if p.Status == model.PaymentPending && p.CreatedAt.Before(cutoff) {
			p.Status = model.PaymentExpired
			n++
		}
	}
	return n, nil
}

func (r *mockPaymentRepo) SumPaid(_ context.Context) (int64, error) {
	var sum int64
	for _, p := range r.rows {
		if p.Status == model.PaymentPaid {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

type mockPageRepo struct {
	rows map[string]*model.Page // key slug
}

func (r *mockPageRepo) GetBySlug(_ context.Context, slug string) (*model.Page, error) {
	if p, ok := r.rows[slug]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPageRepo) List(_ context.Context) ([]model.Page, error) {
	var out []model.Page
	for _, p := range r.rows {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *mockPageRepo) Upsert(_ context.Context, p *model.Page) error {
	if existing, ok := r.rows[p.Slug]; ok {
		p.PageID = existing.PageID
		p.CreatedAt = existing.CreatedAt
	} else if p.PageID == "" {
		p.PageID = newID()
	}
	r.rows[p.Slug] = p
	return nil
}
