package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
)

func TestEmbeddedContentIsValid(t *testing.T) {
	doc, err := ParseDocument(embeddedContent)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Programs)
	assert.NotEmpty(t, doc.Courses)
	assert.NotEmpty(t, doc.Badges)

	slugs := map[string]bool{}
	for _, p := range doc.Pages {
		slugs[p.Slug] = true
	}
	for _, want := range []string{"privacy", "coppa", "terms"} {
		assert.True(t, slugs[want], "missing legal page %s", want)
	}
}

func TestParseDocument_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown key",
			yaml: "programs:\n  - slug: a\n    colour: red\n",
			want: "colour",
		},
		{
			name: "bad slug",
			yaml: "programs:\n  - slug: Not A Slug\n",
			want: "invalid slug",
		},
		{
			name: "duplicate slug",
			yaml: "badges:\n  - {slug: a, criterion: total_xp, threshold: 1}\n  - {slug: a, criterion: total_xp, threshold: 2}\n",
			want: "duplicate slug",
		},
		{
			name: "unknown program",
			yaml: "courses:\n  - {slug: c, program: missing, level: beginner}\n",
			want: `unknown program "missing"`,
		},
		{
			name: "unknown criterion",
			yaml: "badges:\n  - {slug: b, criterion: hugs_given, threshold: 1}\n",
			want: "unknown criterion",
		},
		{
			name: "age range",
			yaml: "programs:\n  - {slug: p, age_min: 12, age_max: 8}\n",
			want: "age_max below age_min",
		},
		{
			name: "page category",
			yaml: "pages:\n  - {slug: faq, category: misc}\n",
			want: "unknown category",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDocument_ReportsAllProblems(t *testing.T) {
	_, err := ParseDocument([]byte("badges:\n  - {slug: Bad, criterion: nope, threshold: 0}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid slug")
	assert.Contains(t, err.Error(), "unknown criterion")
	assert.Contains(t, err.Error(), "threshold must be positive")
}

func TestSeeder_IdempotentAndOverwrite(t *testing.T) {
	doc, err := ParseDocument(embeddedContent)
	require.NoError(t, err)
	repo, store := newFakeRepo()
	admin := &config.SeedConfig{AdminEmail: "Admin@Example.com", AdminPassword: "s3cret-pass", AdminName: "Admin"}

	first := NewSeeder(repo, false, zap.NewNop())
	require.NoError(t, first.Run(context.Background(), doc, admin))
	assert.Equal(t, 1, first.Result["admin"].Created)
	assert.Equal(t, len(doc.Programs), first.Result["programs"].Created)
	assert.Equal(t, len(doc.Courses), first.Result["courses"].Created)
	assert.Equal(t, len(doc.Badges), first.Result["badges"].Created)
	assert.Equal(t, len(doc.Pages), first.Result["pages"].Created)

	adminUser := store.users["admin@example.com"]
	require.NotNil(t, adminUser)
	assert.Equal(t, model.RoleAdmin, adminUser.Role)
	assert.NotEqual(t, "s3cret-pass", adminUser.PasswordHash)

	course := store.courses["python-game-lab"]
	require.NotNil(t, course)
	require.NotNil(t, course.ProgramID)
	assert.Equal(t, store.programs["game-dev-track"].ProgramID, *course.ProgramID)
	assert.Equal(t, adminUser.UserID, *course.CreatedBy)

	lesson := store.lessons[course.CourseID+"/catch-the-star"]
	require.NotNil(t, lesson)
	assert.Equal(t, 2, lesson.Position)

	// second run with edits: nothing changes without overwrite
	doc.Courses[1].Title = "Python Game Lab 2"
	second := NewSeeder(repo, false, zap.NewNop())
	require.NoError(t, second.Run(context.Background(), doc, admin))
	assert.Equal(t, 1, second.Result["admin"].Skipped)
	assert.Zero(t, second.Result["courses"].Created)
	assert.Equal(t, len(doc.Courses), second.Result["courses"].Skipped)
	assert.Equal(t, "Python Game Lab", store.courses["python-game-lab"].Title)

	third := NewSeeder(repo, true, zap.NewNop())
	require.NoError(t, third.Run(context.Background(), doc, admin))
	assert.Equal(t, len(doc.Courses), third.Result["courses"].Updated)
	assert.Equal(t, len(doc.Pages), third.Result["pages"].Updated)
	assert.Equal(t, "Python Game Lab 2", store.courses["python-game-lab"].Title)
}

func TestSeeder_NoAdminConfigured(t *testing.T) {
	repo, store := newFakeRepo()
	doc := &Document{Badges: []BadgeSeed{{Slug: "first", Criterion: model.CriterionTotalXP, Threshold: 10}}}

	s := NewSeeder(repo, false, zap.NewNop())
	require.NoError(t, s.Run(context.Background(), doc, &config.SeedConfig{}))
	assert.Empty(t, store.users)
	assert.Nil(t, store.badges["first"].CreatedBy)
	assert.True(t, store.badges["first"].IsActive)
}

// ── in-memory repositories ──
// Each fake embeds its interface; only the methods the seeder calls are implemented.

type fakeStore struct {
	seq      int
	users    map[string]*model.User
	programs map[string]*model.Program
	courses  map[string]*model.Course
	lessons  map[string]*model.Lesson
	badges   map[string]*model.Badge
	pages    map[string]*model.Page
}

func (s *fakeStore) id() string {
	s.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", s.seq)
}

func newFakeRepo() (*repository.Repository, *fakeStore) {
	s := &fakeStore{
		users:    map[string]*model.User{},
		programs: map[string]*model.Program{},
		courses:  map[string]*model.Course{},
		lessons:  map[string]*model.Lesson{},
		badges:   map[string]*model.Badge{},
		pages:    map[string]*model.Page{},
	}
	return &repository.Repository{
		User:    &fakeUsers{s: s},
		Program: &fakePrograms{s: s},
		Course:  &fakeCourses{s: s},
		Lesson:  &fakeLessons{s: s},
		Badge:   &fakeBadges{s: s},
		Page:    &fakePages{s: s},
	}, s
}

type fakeUsers struct {
	repository.UserRepository
	s *fakeStore
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.s.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	u.UserID = f.s.id()
	f.s.users[u.Email] = u
	return nil
}

type fakePrograms struct {
	repository.ProgramRepository
	s *fakeStore
}

func (f *fakePrograms) GetBySlug(_ context.Context, slug string, _ bool) (*model.Program, error) {
	if p, ok := f.s.programs[slug]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePrograms) Create(_ context.Context, p *model.Program) error {
	p.ProgramID = f.s.id()
	f.s.programs[p.Slug] = p
	return nil
}

func (f *fakePrograms) Update(_ context.Context, p *model.Program) error {
	f.s.programs[p.Slug] = p
	return nil
}

type fakeCourses struct {
	repository.CourseRepository
	s *fakeStore
}

func (f *fakeCourses) GetBySlug(_ context.Context, slug string) (*model.Course, error) {
	if c, ok := f.s.courses[slug]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourses) Create(_ context.Context, c *model.Course) error {
	c.CourseID = f.s.id()
	f.s.courses[c.Slug] = c
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *model.Course) error {
	f.s.courses[c.Slug] = c
	return nil
}

type fakeLessons struct {
	repository.LessonRepository
	s *fakeStore
}

func (f *fakeLessons) GetByCourseAndSlug(_ context.Context, courseID, slug string) (*model.Lesson, error) {
	if l, ok := f.s.lessons[courseID+"/"+slug]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLessons) Create(_ context.Context, l *model.Lesson) error {
	l.LessonID = f.s.id()
	f.s.lessons[l.CourseID+"/"+l.Slug] = l
	return nil
}

func (f *fakeLessons) Update(_ context.Context, l *model.Lesson) error {
	f.s.lessons[l.CourseID+"/"+l.Slug] = l
	return nil
}

type fakeBadges struct {
	repository.BadgeRepository
	s *fakeStore
}

func (f *fakeBadges) GetBySlug(_ context.Context, slug string) (*model.Badge, error) {
	if b, ok := f.s.badges[slug]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBadges) Create(_ context.Context, b *model.Badge) error {
	b.BadgeID = f.s.id()
	f.s.badges[b.Slug] = b
	return nil
}

func (f *fakeBadges) Update(_ context.Context, b *model.Badge) error {
	f.s.badges[b.Slug] = b
	return nil
}

type fakePages struct {
	repository.PageRepository
	s *fakeStore
}

func (f *fakePages) GetBySlug(_ context.Context, slug string) (*model.Page, error) {
	if p, ok := f.s.pages[slug]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePages) Upsert(_ context.Context, p *model.Page) error {
	f.s.pages[p.Slug] = p
	return nil
}
