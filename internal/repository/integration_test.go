//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/database"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// Run with: TEST_DATABASE_DSN=... go test -tags integration ./internal/repository/

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=ock password=ock_password dbname=ock_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// fixture creates a parent, a student and a course, returning a cleanup func
func fixture(t *testing.T) (*model.User, *model.Student, *model.Course, func()) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	parent := &model.User{
		Name:         "Test Parent",
		Email:        unique("parent") + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleParent,
		IsActive:     true,
	}
	if err := repo.User.Create(ctx, parent); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	student := &model.Student{ParentID: &parent.UserID, DisplayName: "Kid"}
	if err := repo.Student.Create(ctx, student); err != nil {
		t.Fatalf("create student: %v", err)
	}
	course := &model.Course{
		Slug:     unique("course"),
		Title:    "Test Course",
		Level:    model.LevelBeginner,
		Language: "Scratch",
		AgeMin:   6,
		AgeMax:   12,
	}
	if err := repo.Course.Create(ctx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM student_badges WHERE student_id = ?", student.StudentID)
		testDB.Exec("DELETE FROM enrollments WHERE student_id = ?", student.StudentID)
		testDB.Exec("DELETE FROM courses WHERE course_id = ?", course.CourseID)
		testDB.Exec("DELETE FROM students WHERE student_id = ?", student.StudentID)
		testDB.Exec("DELETE FROM users WHERE user_id = ?", parent.UserID)
	}
	return parent, student, course, cleanup
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	email := unique("rollback") + "@example.com"

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		u := &model.User{Name: "Rollback", Email: email, PasswordHash: "x", Role: model.RoleParent}
		if err := tx.User.Create(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := repo.User.GetByEmail(ctx, email); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("user should have been rolled back, got err=%v", err)
	}
}

func TestTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	email := unique("commit") + "@example.com"

	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.User.Create(ctx, &model.User{Name: "Commit", Email: email, PasswordHash: "x", Role: model.RoleParent})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	u, err := repo.User.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("committed user not found: %v", err)
	}
	testDB.Exec("DELETE FROM users WHERE user_id = ?", u.UserID)
}

func TestOptimisticLock_Student(t *testing.T) {
	_, student, _, cleanup := fixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	a, err := repo.Student.GetByID(ctx, student.StudentID)
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	b, err := repo.Student.GetByID(ctx, student.StudentID)
	if err != nil {
		t.Fatalf("load b: %v", err)
	}

	a.DisplayName = "First"
	if err := repo.Student.Update(ctx, a); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if a.Version != 2 {
		t.Errorf("version after update = %d, want 2", a.Version)
	}

	b.DisplayName = "Second"
	err = repo.Student.Update(ctx, b)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("expected ErrOptimisticLock, got %v", err)
	}
	if b.Version != 1 {
		t.Errorf("failed update must restore version, got %d", b.Version)
	}

	got, _ := repo.Student.GetByID(ctx, student.StudentID)
	if got.DisplayName != "First" {
		t.Errorf("display name = %q, want First", got.DisplayName)
	}
}

func TestEnrollment_UniquePerStudentAndCourse(t *testing.T) {
	_, student, course, cleanup := fixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	first := &model.Enrollment{StudentID: student.StudentID, CourseID: course.CourseID, Status: model.EnrollmentActive}
	if err := repo.Enrollment.Create(ctx, first); err != nil {
		t.Fatalf("first enrollment: %v", err)
	}
	dup := &model.Enrollment{StudentID: student.StudentID, CourseID: course.CourseID, Status: model.EnrollmentActive}
	err := repo.Enrollment.Create(ctx, dup)
	if !pkgerrors.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	ok, err := repo.Enrollment.HasEnrollmentForUser(ctx, *student.ParentID, course.CourseID)
	if err != nil || !ok {
		t.Errorf("parent should see child's enrollment: ok=%v err=%v", ok, err)
	}
}

func TestUser_SoftDeleteFreesEmail(t *testing.T) {
	parent, _, _, cleanup := fixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	if err := repo.User.Delete(ctx, parent.UserID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.User.GetByID(ctx, parent.UserID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("deleted user still visible: %v", err)
	}

	again := &model.User{Name: "Again", Email: parent.Email, PasswordHash: "x", Role: model.RoleParent}
	if err := repo.User.Create(ctx, again); err != nil {
		t.Fatalf("email should be reusable after soft delete: %v", err)
	}
	testDB.Exec("DELETE FROM users WHERE user_id = ?", again.UserID)
}

func TestBadge_AwardOnce(t *testing.T) {
	_, student, _, cleanup := fixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	badge := &model.Badge{Slug: unique("badge"), Name: "Test", Criterion: model.CriterionTotalXP, Threshold: 10}
	if err := repo.Badge.Create(ctx, badge); err != nil {
		t.Fatalf("create badge: %v", err)
	}
	defer testDB.Exec("DELETE FROM badges WHERE badge_id = ?", badge.BadgeID)

	now := time.Now()
	awarded, err := repo.Badge.Award(ctx, student.StudentID, badge.BadgeID, now)
	if err != nil || !awarded {
		t.Fatalf("first award: awarded=%v err=%v", awarded, err)
	}
	awarded, err = repo.Badge.Award(ctx, student.StudentID, badge.BadgeID, now)
	if err != nil || awarded {
		t.Fatalf("second award must be a no-op: awarded=%v err=%v", awarded, err)
	}
	testDB.Exec("DELETE FROM student_badges WHERE badge_id = ?", badge.BadgeID)
}

func TestStudent_ResetInactiveStreaks(t *testing.T) {
	_, student, _, cleanup := fixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	stale := time.Now().AddDate(0, 0, -3)
	testDB.Exec("UPDATE students SET streak_days = 4, last_activity_date = ? WHERE student_id = ?", stale, student.StudentID)

	n, err := repo.Student.ResetInactiveStreaks(ctx, time.Now().AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n < 1 {
		t.Errorf("affected = %d, want at least 1", n)
	}
	got, _ := repo.Student.GetByID(ctx, student.StudentID)
	if got.StreakDays != 0 {
		t.Errorf("streak = %d, want 0", got.StreakDays)
	}
}

func TestPage_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	slug := unique("page")
	defer testDB.Exec("DELETE FROM pages WHERE slug = ?", slug)

	if err := repo.Page.Upsert(ctx, &model.Page{Slug: slug, Title: "v1", Category: model.PageLegal, Content: "one"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Page.Upsert(ctx, &model.Page{Slug: slug, Title: "v2", Category: model.PageInfo, Content: "two"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	p, err := repo.Page.GetBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "v2" || p.Content != "two" || p.Category != model.PageInfo {
		t.Errorf("page not overwritten: %+v", p)
	}
}
