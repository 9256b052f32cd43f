package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/internal/service"
)

//go:embed content.yaml
var embeddedContent []byte

// Document static site content
type Document struct {
	Programs []ProgramSeed `yaml:"programs"`
	Courses  []CourseSeed  `yaml:"courses"`
	Badges   []BadgeSeed   `yaml:"badges"`
	Pages    []PageSeed    `yaml:"pages"`
}

type ProgramSeed struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
	AgeMin      int    `yaml:"age_min"`
	AgeMax      int    `yaml:"age_max"`
	PriceCents  int64  `yaml:"price_cents"`
	Position    int    `yaml:"position"`
	Published   bool   `yaml:"published"`
}

type CourseSeed struct {
	Slug          string       `yaml:"slug"`
	Program       string       `yaml:"program"`
	Title         string       `yaml:"title"`
	Summary       string       `yaml:"summary"`
	Description   string       `yaml:"description"`
	Level         string       `yaml:"level"`
	Language      string       `yaml:"language"`
	AgeMin        int          `yaml:"age_min"`
	AgeMax        int          `yaml:"age_max"`
	PriceCents    int64        `yaml:"price_cents"`
	DurationWeeks int          `yaml:"duration_weeks"`
	CompletionXP  int          `yaml:"completion_xp"`
	Outcomes      []string     `yaml:"outcomes"`
	Published     bool         `yaml:"published"`
	Lessons       []LessonSeed `yaml:"lessons"`
}

type LessonSeed struct {
	Slug            string `yaml:"slug"`
	Title           string `yaml:"title"`
	Summary         string `yaml:"summary"`
	Content         string `yaml:"content"`
	VideoURL        string `yaml:"video_url"`
	DurationMinutes int    `yaml:"duration_minutes"`
	XPReward        int    `yaml:"xp_reward"`
	Preview         bool   `yaml:"preview"`
}

type BadgeSeed struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Criterion   string `yaml:"criterion"`
	Threshold   int    `yaml:"threshold"`
	XPReward    int    `yaml:"xp_reward"`
}

type PageSeed struct {
	Slug     string `yaml:"slug"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Content  string `yaml:"content"`
}

// ParseDocument decodes and validates seed content. Unknown keys are rejected.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed content: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks slugs, references and ranges before anything is written
func (d *Document) Validate() error {
	var errs []error
	seen := map[string]bool{}
	unique := func(kind, slug string) {
		key := kind + ":" + slug
		if !service.IsSlug(slug) {
			errs = append(errs, fmt.Errorf("%s %q: invalid slug", kind, slug))
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s %q: duplicate slug", kind, slug))
		}
		seen[key] = true
	}

	for _, p := range d.Programs {
		unique("program", p.Slug)
		if p.AgeMax < p.AgeMin {
			errs = append(errs, fmt.Errorf("program %q: age_max below age_min", p.Slug))
		}
	}
	for _, c := range d.Courses {
		unique("course", c.Slug)
		if c.Program != "" && !seen["program:"+c.Program] {
			errs = append(errs, fmt.Errorf("course %q: unknown program %q", c.Slug, c.Program))
		}
		if c.AgeMax < c.AgeMin {
			errs = append(errs, fmt.Errorf("course %q: age_max below age_min", c.Slug))
		}
		switch c.Level {
		case model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced:
		default:
			errs = append(errs, fmt.Errorf("course %q: unknown level %q", c.Slug, c.Level))
		}
		for _, l := range c.Lessons {
			unique("lesson "+c.Slug, l.Slug)
		}
	}
	for _, b := range d.Badges {
		unique("badge", b.Slug)
		if !model.ValidCriterion(b.Criterion) {
			errs = append(errs, fmt.Errorf("badge %q: unknown criterion %q", b.Slug, b.Criterion))
		}
		if b.Threshold <= 0 {
			errs = append(errs, fmt.Errorf("badge %q: threshold must be positive", b.Slug))
		}
	}
	for _, p := range d.Pages {
		unique("page", p.Slug)
		if p.Category != model.PageLegal && p.Category != model.PageInfo {
			errs = append(errs, fmt.Errorf("page %q: unknown category %q", p.Slug, p.Category))
		}
	}
	return errors.Join(errs...)
}

// Counts created and updated rows per kind
type Counts struct {
	Created, Updated, Skipped int
}

// Seeder writes a Document. Existing rows are left alone unless overwrite is set.
type Seeder struct {
	repo      *repository.Repository
	overwrite bool
	logger    *zap.Logger
	actor     *string
	Result    map[string]*Counts
}

// NewSeeder creates a Seeder
func NewSeeder(repo *repository.Repository, overwrite bool, logger *zap.Logger) *Seeder {
	return &Seeder{repo: repo, overwrite: overwrite, logger: logger, Result: map[string]*Counts{}}
}

func (s *Seeder) count(kind string) *Counts {
	c, ok := s.Result[kind]
	if !ok {
		c = &Counts{}
		s.Result[kind] = c
	}
	return c
}

// Run seeds the admin account and the document in a single transaction
func (s *Seeder) Run(ctx context.Context, doc *Document, admin *config.SeedConfig) error {
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ts := *s
		ts.repo = tx

		if err := ts.seedAdmin(ctx, admin); err != nil {
			return fmt.Errorf("admin: %w", err)
		}

		programIDs := map[string]string{}
		for i := range doc.Programs {
			id, err := ts.seedProgram(ctx, &doc.Programs[i])
			if err != nil {
				return fmt.Errorf("program %s: %w", doc.Programs[i].Slug, err)
			}
			programIDs[doc.Programs[i].Slug] = id
		}
		for i := range doc.Courses {
			if err := ts.seedCourse(ctx, &doc.Courses[i], programIDs); err != nil {
				return fmt.Errorf("course %s: %w", doc.Courses[i].Slug, err)
			}
		}
		for i := range doc.Badges {
			if err := ts.seedBadge(ctx, &doc.Badges[i]); err != nil {
				return fmt.Errorf("badge %s: %w", doc.Badges[i].Slug, err)
			}
		}
		for i := range doc.Pages {
			if err := ts.seedPage(ctx, &doc.Pages[i]); err != nil {
				return fmt.Errorf("page %s: %w", doc.Pages[i].Slug, err)
			}
		}
		return nil
	})
}

func (s *Seeder) seedAdmin(ctx context.Context, cfg *config.SeedConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		s.logger.Info("no seed admin configured, skipping")
		return nil
	}

	existing, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil {
		s.actor = &existing.UserID
		s.count("admin").Skipped++
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &model.User{
		Name:         cfg.AdminName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, u); err != nil {
		return err
	}
	s.actor = &u.UserID
	s.count("admin").Created++
	s.logger.Info("admin account created", zap.String("email", email))
	return nil
}

func (s *Seeder) seedProgram(ctx context.Context, in *ProgramSeed) (string, error) {
	p, err := s.repo.Program.GetBySlug(ctx, in.Slug, false)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = &model.Program{Slug: in.Slug}
		applyProgram(p, in)
		p.CreatedBy = s.actor
		if err := s.repo.Program.Create(ctx, p); err != nil {
			return "", err
		}
		s.count("programs").Created++
	case err != nil:
		return "", err
	case s.overwrite:
		applyProgram(p, in)
		p.Courses = nil
		p.UpdatedBy = s.actor
		if err := s.repo.Program.Update(ctx, p); err != nil {
			return "", err
		}
		s.count("programs").Updated++
	default:
		s.count("programs").Skipped++
	}
	return p.ProgramID, nil
}

func applyProgram(p *model.Program, in *ProgramSeed) {
	p.Title = in.Title
	p.Summary = in.Summary
	p.Description = strings.TrimSpace(in.Description)
	p.AgeMin, p.AgeMax = in.AgeMin, in.AgeMax
	p.PriceCents = in.PriceCents
	p.Position = in.Position
	p.IsPublished = in.Published
}

func (s *Seeder) seedCourse(ctx context.Context, in *CourseSeed, programIDs map[string]string) error {
	c, err := s.repo.Course.GetBySlug(ctx, in.Slug)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c = &model.Course{Slug: in.Slug}
		applyCourse(c, in, programIDs)
		c.CreatedBy = s.actor
		if err := s.repo.Course.Create(ctx, c); err != nil {
			return err
		}
		s.count("courses").Created++
	case err != nil:
		return err
	case s.overwrite:
		applyCourse(c, in, programIDs)
		c.Program, c.Instructor, c.Lessons = nil, nil, nil
		c.UpdatedBy = s.actor
		if err := s.repo.Course.Update(ctx, c); err != nil {
			return err
		}
		s.count("courses").Updated++
	default:
		s.count("courses").Skipped++
	}

	for i := range in.Lessons {
		if err := s.seedLesson(ctx, c.CourseID, i+1, &in.Lessons[i]); err != nil {
			return fmt.Errorf("lesson %s: %w", in.Lessons[i].Slug, err)
		}
	}
	return nil
}

func applyCourse(c *model.Course, in *CourseSeed, programIDs map[string]string) {
	c.ProgramID = nil
	if id, ok := programIDs[in.Program]; ok {
		c.ProgramID = &id
	}
	c.Title = in.Title
	c.Summary = in.Summary
	c.Description = strings.TrimSpace(in.Description)
	c.Level = in.Level
	c.Language = in.Language
	c.AgeMin, c.AgeMax = in.AgeMin, in.AgeMax
	c.PriceCents = in.PriceCents
	c.DurationWeeks = in.DurationWeeks
	c.CompletionXP = in.CompletionXP
	c.Outcomes = in.Outcomes
	c.IsPublished = in.Published
}

func (s *Seeder) seedLesson(ctx context.Context, courseID string, position int, in *LessonSeed) error {
	l, err := s.repo.Lesson.GetByCourseAndSlug(ctx, courseID, in.Slug)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		l = &model.Lesson{CourseID: courseID, Slug: in.Slug}
		applyLesson(l, position, in)
		l.CreatedBy = s.actor
		if err := s.repo.Lesson.Create(ctx, l); err != nil {
			return err
		}
		s.count("lessons").Created++
	case err != nil:
		return err
	case s.overwrite:
		applyLesson(l, position, in)
		l.UpdatedBy = s.actor
		if err := s.repo.Lesson.Update(ctx, l); err != nil {
			return err
		}
		s.count("lessons").Updated++
	default:
		s.count("lessons").Skipped++
	}
	return nil
}

func applyLesson(l *model.Lesson, position int, in *LessonSeed) {
	l.Title = in.Title
	l.Summary = in.Summary
	l.Content = strings.TrimSpace(in.Content)
	l.VideoURL = in.VideoURL
	l.Position = position
	l.DurationMinutes = in.DurationMinutes
	l.XPReward = in.XPReward
	l.IsPreview = in.Preview
}

func (s *Seeder) seedBadge(ctx context.Context, in *BadgeSeed) error {
	b, err := s.repo.Badge.GetBySlug(ctx, in.Slug)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		b = &model.Badge{Slug: in.Slug, IsActive: true}
		applyBadge(b, in)
		b.CreatedBy = s.actor
		if err := s.repo.Badge.Create(ctx, b); err != nil {
			return err
		}
		s.count("badges").Created++
	case err != nil:
		return err
	case s.overwrite:
		applyBadge(b, in)
		b.UpdatedBy = s.actor
		if err := s.repo.Badge.Update(ctx, b); err != nil {
			return err
		}
		s.count("badges").Updated++
	default:
		s.count("badges").Skipped++
	}
	return nil
}

func applyBadge(b *model.Badge, in *BadgeSeed) {
	b.Name = in.Name
	b.Description = in.Description
	b.Icon = in.Icon
	b.Criterion = in.Criterion
	b.Threshold = in.Threshold
	b.XPReward = in.XPReward
}

func (s *Seeder) seedPage(ctx context.Context, in *PageSeed) error {
	_, err := s.repo.Page.GetBySlug(ctx, in.Slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	exists := err == nil
	if exists && !s.overwrite {
		s.count("pages").Skipped++
		return nil
	}

	p := &model.Page{
		Slug:     in.Slug,
		Title:    in.Title,
		Category: in.Category,
		Content:  strings.TrimSpace(in.Content),
	}
	p.CreatedBy, p.UpdatedBy = s.actor, s.actor
	if err := s.repo.Page.Upsert(ctx, p); err != nil {
		return err
	}
	if exists {
		s.count("pages").Updated++
	} else {
		s.count("pages").Created++
	}
	return nil
}
