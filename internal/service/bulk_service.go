package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
)

// ────────────────────── bulk module errors ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData       = errors.New("the file has no data rows (the first row is the header)")
	ErrImportTooManyRows  = fmt.Errorf("the file has more than %d data rows", maxImportRows)
	ErrImportBadHeader    = errors.New("the header must contain name, email and role columns")
	ErrImportUnsupported  = errors.New("upload a .csv or .xlsx file")
	ErrImportUnreadable   = errors.New("the file could not be read")
	ErrExportGenerateFail = errors.New("failed to build the spreadsheet")
)

// UserImportRow one parsed line of a user import file
type UserImportRow struct {
	Row         int
	Name        string
	Email       string
	Role        string
	ParentEmail string
}

// BulkService admin imports, batch operations, exports and dashboard stats
type BulkService interface {
	ParseUserFile(r io.Reader, filename string) ([]UserImportRow, error)
	// ImportUsers processes rows one by one, collecting per-row failures
	ImportUsers(ctx context.Context, rows []UserImportRow, callerID string) (*dto.BulkResult, error)
	BulkEnroll(ctx context.Context, req *dto.BulkEnrollRequest, caller Caller) (*dto.BulkResult, error)
	BulkStatus(ctx context.Context, req *dto.BulkStatusRequest, caller Caller) (*dto.BulkResult, error)
	ExportEnrollments(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type bulkService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewBulkService creates a BulkService
func NewBulkService(repo *repository.Repository, logger *zap.Logger) BulkService {
	return &bulkService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── ParseUserFile ──────────────────────

func (s *bulkService) ParseUserFile(r io.Reader, filename string) ([]UserImportRow, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		records, err = cr.ReadAll()
	case ".xlsx":
		records, err = readFirstSheet(r)
	default:
		return nil, ErrImportUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	if len(records) < 2 {
		return nil, ErrImportNoData
	}

	col := parseHeaderIndex(records[0])
	if col["name"] < 0 || col["email"] < 0 || col["role"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []UserImportRow
	for i := 1; i < len(records); i++ {
		rec := records[i]
		item := UserImportRow{
			Row:         i + 1,
			Name:        cellAt(rec, col["name"]),
			Email:       cellAt(rec, col["email"]),
			Role:        strings.ToLower(cellAt(rec, col["role"])),
			ParentEmail: cellAt(rec, col["parent_email"]),
		}
		if item.Name == "" && item.Email == "" && item.Role == "" && item.ParentEmail == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

// parseHeaderIndex column name -> index; missing columns map to -1
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":         -1,
		"email":        -1,
		"role":         -1,
		"parent_email": -1,
	}
	for i, h := range header {
		key := strings.TrimPrefix(h, "\ufeff")
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		if _, ok := idx[key]; ok && idx[key] < 0 {
			idx[key] = i
		}
	}
	return idx
}

func cellAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ────────────────────── ImportUsers ──────────────────────

func (s *bulkService) ImportUsers(ctx context.Context, rows []UserImportRow, callerID string) (*dto.BulkResult, error) {
	res := newBulkResult(len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if reason := validateImportRow(row); reason != "" {
			res.fail(row.Row, reason)
			continue
		}

		user, temp, err := createAccount(ctx, s.repo, accountInput{
			Name:        row.Name,
			Email:       row.Email,
			Role:        row.Role,
			ParentEmail: row.ParentEmail,
			CreatedBy:   callerID,
		})
		if err != nil {
			if !isAccountInputError(err) {
				s.logger.Error("import row failed", zap.Int("row", row.Row), zap.Error(err))
			}
			res.fail(row.Row, rowReason(err))
			continue
		}
		res.Success++
		res.Accounts = append(res.Accounts, dto.BulkAccount{Row: row.Row, Email: user.Email, TempPassword: temp})
	}

	s.logger.Info("user import finished",
		zap.Int("total", res.Total), zap.Int("success", res.Success), zap.Int("failed", res.Failed))
	return res.BulkResult, nil
}

func validateImportRow(row UserImportRow) string {
	switch {
	case row.Name == "":
		return "name is required"
	case row.Email == "":
		return "email is required"
	case !strings.Contains(row.Email, "@"):
		return "email is invalid"
	case !model.ValidRole(row.Role):
		return "role must be parent, student, instructor or admin"
	case row.ParentEmail != "" && row.Role != model.RoleStudent:
		return "parent_email only applies to students"
	}
	return ""
}

// ────────────────────── batch enrollment ──────────────────────

func (s *bulkService) BulkEnroll(ctx context.Context, req *dto.BulkEnrollRequest, caller Caller) (*dto.BulkResult, error) {
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	res := newBulkResult(len(req.StudentIDs))
	now := s.now()
	for i, studentID := range req.StudentIDs {
		row := i + 1
		if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.fail(row, ErrStudentNotFound.Error())
				continue
			}
			return nil, err
		}
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			_, err := enrollStudent(ctx, tx, studentID, course, nil, now)
			return err
		})
		if err != nil {
			if !errors.Is(err, ErrAlreadyEnrolled) {
				s.logger.Error("bulk enroll row failed", zap.Int("row", row), zap.Error(err))
			}
			res.fail(row, rowReason(err))
			continue
		}
		res.Success++
	}

	s.logger.Info("bulk enroll finished", zap.String("course_id", course.CourseID),
		zap.String("by", caller.UserID), zap.Int("success", res.Success), zap.Int("failed", res.Failed))
	return res.BulkResult, nil
}

func (s *bulkService) BulkStatus(ctx context.Context, req *dto.BulkStatusRequest, caller Caller) (*dto.BulkResult, error) {
	if !model.ValidEnrollmentStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	res := newBulkResult(len(req.EnrollmentIDs))
	now := s.now()
	for i, id := range req.EnrollmentIDs {
		row := i + 1
		e, err := s.repo.Enrollment.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.fail(row, ErrEnrollmentNotFound.Error())
				continue
			}
			return nil, err
		}
		setEnrollmentStatus(e, req.Status, now)
		e.UpdatedBy = &caller.UserID
		if err := s.repo.Enrollment.Update(ctx, e); err != nil {
			res.fail(row, rowReason(err))
			continue
		}
		res.Success++
	}
	return res.BulkResult, nil
}

// ────────────────────── ExportEnrollments ──────────────────────

var enrollmentExportHeader = []string{
	"Student", "Parent", "Parent email", "Course", "Status", "Progress %", "Enrolled at", "Completed at",
}

// ExportEnrollments one sheet, one row per enrollment; an empty courseID exports every course
func (s *bulkService) ExportEnrollments(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	list, err := s.repo.Enrollment.ListForExport(ctx, courseID)
	if err != nil {
		s.logger.Error("load enrollments for export failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Enrollments"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{24, 22, 28, 32, 12, 11, 20, 20}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#7C3AED"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range enrollmentExportHeader {
		f.SetCellValue(sheet, cellName(i+1, 1), h)
	}
	f.SetCellStyle(sheet, cellName(1, 1), cellName(len(enrollmentExportHeader), 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	courseTitle := ""
	for i := range list {
		e := &list[i]
		row := i + 2
		var student, parent, parentEmail, course, completed string
		if e.Student != nil {
			student = e.Student.DisplayName
			if e.Student.Parent != nil {
				parent, parentEmail = e.Student.Parent.Name, e.Student.Parent.Email
			}
		}
		if e.Course != nil {
			course = e.Course.Title
			courseTitle = course
		}
		if e.CompletedAt != nil {
			completed = e.CompletedAt.UTC().Format("2006-01-02 15:04")
		}
		values := []interface{}{
			student, parent, parentEmail, course, e.Status, e.ProgressPercent,
			e.EnrolledAt.UTC().Format("2006-01-02 15:04"), completed,
		}
		for c, v := range values {
			f.SetCellValue(sheet, cellName(c+1, row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	name := "enrollments"
	if courseID != "" && courseTitle != "" {
		name += "-" + Slugify(courseTitle)
	}
	filename := fmt.Sprintf("%s-%s.xlsx", name, s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// ────────────────────── Stats ──────────────────────

// Stats dashboard counters, queried concurrently
func (s *bulkService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	resp := &dto.StatsResponse{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		resp.UsersByRole, err = s.repo.User.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Students, err = s.repo.Student.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Courses, err = s.repo.Course.Count(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		resp.PublishedCourses, err = s.repo.Course.Count(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		resp.ActiveEnrollments, err = s.repo.Enrollment.CountByStatus(gctx, model.EnrollmentActive)
		return err
	})
	g.Go(func() (err error) {
		resp.CompletedEnrollments, err = s.repo.Enrollment.CountByStatus(gctx, model.EnrollmentCompleted)
		return err
	})
	g.Go(func() (err error) {
		resp.Certificates, err = s.repo.Certificate.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.PendingSubmissions, err = s.repo.Submission.CountByStatus(gctx, model.SubmissionSubmitted)
		return err
	})
	g.Go(func() (err error) {
		resp.PendingProjects, err = s.repo.Project.CountByStatus(gctx, model.ProjectPending)
		return err
	})
	g.Go(func() (err error) {
		resp.NewContactMessages, err = s.repo.Contact.CountByStatus(gctx, model.ContactNew)
		return err
	})
	g.Go(func() (err error) {
		resp.RevenueCents, err = s.repo.Payment.SumPaid(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("load dashboard stats failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ── result bookkeeping ──

type bulkResult struct {
	*dto.BulkResult
}

func newBulkResult(total int) bulkResult {
	return bulkResult{&dto.BulkResult{Total: total, Errors: []dto.BulkRowError{}}}
}

func (r bulkResult) fail(row int, reason string) {
	r.Failed++
	r.Errors = append(r.Errors, dto.BulkRowError{Row: row, Reason: reason})
}

// rowReason user-facing message for a row failure; unexpected errors are not echoed back
func rowReason(err error) string {
	switch {
	case isAccountInputError(err),
		errors.Is(err, ErrAlreadyEnrolled),
		errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrEnrollmentNotFound):
		return err.Error()
	}
	return "internal error"
}
