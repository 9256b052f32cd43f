package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourcodingkiddos/backend/internal/api/middleware"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/payment"
	"ourcodingkiddos/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	tokens       *dto.TokenResponse
	err          error
	refreshToken string
	loggedOut    [2]string
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.TokenResponse, error) {
	return m.tokens, m.err
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.tokens, m.err
}
func (m *mockAuthService) Refresh(_ context.Context, token string) (*dto.TokenResponse, error) {
	m.refreshToken = token
	return m.tokens, m.err
}
func (m *mockAuthService) Logout(_ context.Context, access, refresh string) error {
	m.loggedOut = [2]string{access, refresh}
	return m.err
}
func (m *mockAuthService) Me(_ context.Context, caller service.Caller) (*dto.MeResponse, error) {
	return &dto.MeResponse{User: dto.UserResponse{ID: caller.UserID, Role: caller.Role}}, m.err
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.err
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	err      error
	calendar string
	lastReq  *dto.CompleteLessonRequest
}

func (m *mockEnrollmentService) Enroll(_ context.Context, req *dto.EnrollRequest, _ service.Caller) (*dto.EnrollmentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.EnrollmentResponse{ID: "e1", StudentID: req.StudentID, CourseID: req.CourseID, Status: "active"}, nil
}
func (m *mockEnrollmentService) ListByStudent(_ context.Context, _ string, _ service.Caller) ([]dto.EnrollmentResponse, error) {
	return nil, m.err
}
func (m *mockEnrollmentService) UpdateStatus(_ context.Context, _, _ string, _ service.Caller) (*dto.EnrollmentResponse, error) {
	return nil, m.err
}
func (m *mockEnrollmentService) CompleteLesson(_ context.Context, lessonID string, req *dto.CompleteLessonRequest, _ service.Caller) (*dto.LessonCompletionResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.LessonCompletionResponse{LessonID: lessonID, XPAwarded: 10}, nil
}
func (m *mockEnrollmentService) Calendar(_ context.Context, _ string, _ service.Caller) (string, error) {
	return m.calendar, m.err
}

// ── Mock ShowcaseService ──

type mockShowcaseService struct {
	err      error
	uploaded []byte
}

func (m *mockShowcaseService) List(_ context.Context, _ *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error) {
	return []dto.ProjectResponse{{ID: "p1"}}, 1, m.err
}
func (m *mockShowcaseService) Get(_ context.Context, slug string, _ *service.Caller) (*dto.ProjectResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ProjectResponse{Slug: slug}, nil
}
func (m *mockShowcaseService) ToggleLike(_ context.Context, _ string, _ service.Caller) (*dto.LikeResponse, error) {
	return &dto.LikeResponse{}, m.err
}
func (m *mockShowcaseService) Submit(_ context.Context, _ *dto.CreateProjectRequest, _ service.Caller) (*dto.ProjectResponse, error) {
	return &dto.ProjectResponse{}, m.err
}
func (m *mockShowcaseService) Upload(_ context.Context, r io.Reader, size int64, _ service.Caller) (*dto.UploadResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, _ := io.ReadAll(r)
	m.uploaded = b
	return &dto.UploadResponse{URL: "/uploads/x.png", ContentType: "image/png", Size: size}, nil
}
func (m *mockShowcaseService) ReviewQueue(_ context.Context, _ *dto.AdminProjectListRequest) ([]dto.ProjectResponse, int64, error) {
	return nil, 0, m.err
}
func (m *mockShowcaseService) Review(_ context.Context, _ string, _ *dto.ReviewProjectRequest, _ service.Caller) (*dto.ProjectResponse, error) {
	return &dto.ProjectResponse{}, m.err
}

// ── Mock CertificateService ──

type mockCertificateService struct {
	err   error
	image []byte
}

func (m *mockCertificateService) Issue(_ context.Context, _ *dto.IssueCertificateRequest, _ string) (*dto.CertificateResponse, error) {
	return &dto.CertificateResponse{}, m.err
}
func (m *mockCertificateService) Verify(_ context.Context, code string) (*dto.VerifyCertificateResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if code != "OCK-GOOD" {
		return &dto.VerifyCertificateResponse{Valid: false}, nil
	}
	return &dto.VerifyCertificateResponse{Valid: true, Certificate: &dto.CertificateResponse{VerificationCode: code}}, nil
}
func (m *mockCertificateService) Image(_ context.Context, _ string) ([]byte, error) {
	return m.image, m.err
}
func (m *mockCertificateService) ListByStudent(_ context.Context, _ string, _ service.Caller) ([]dto.CertificateResponse, error) {
	return nil, m.err
}

// ── Mock PaymentService ──

type mockPaymentService struct {
	err       error
	payload   []byte
	signature string
}

func (m *mockPaymentService) Checkout(_ context.Context, _ *dto.CheckoutRequest, _ service.Caller) (*dto.CheckoutResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CheckoutResponse{PaymentID: "pay1", CheckoutURL: "https://checkout.example/1"}, nil
}
func (m *mockPaymentService) HandleWebhook(_ context.Context, payload []byte, signature string) (*dto.WebhookAck, error) {
	m.payload, m.signature = payload, signature
	if m.err != nil {
		return nil, m.err
	}
	return &dto.WebhookAck{Received: true, Handled: true, Type: "checkout.session.completed"}, nil
}
func (m *mockPaymentService) ListMine(_ context.Context, _ string) ([]dto.PaymentResponse, error) {
	return nil, m.err
}
func (m *mockPaymentService) ExpireStale(_ context.Context) (int64, error) { return 0, m.err }

// ── Mock BulkService ──

type mockBulkService struct {
	parseErr error
	filename string
}

func (m *mockBulkService) ParseUserFile(_ io.Reader, filename string) ([]service.UserImportRow, error) {
	m.filename = filename
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return []service.UserImportRow{{Row: 1, Name: "Ada", Email: "ada@example.com", Role: "parent"}}, nil
}
func (m *mockBulkService) ImportUsers(_ context.Context, rows []service.UserImportRow, _ string) (*dto.BulkResult, error) {
	return &dto.BulkResult{Total: len(rows), Success: len(rows)}, nil
}
func (m *mockBulkService) BulkEnroll(_ context.Context, _ *dto.BulkEnrollRequest, _ service.Caller) (*dto.BulkResult, error) {
	return &dto.BulkResult{}, nil
}
func (m *mockBulkService) BulkStatus(_ context.Context, _ *dto.BulkStatusRequest, _ service.Caller) (*dto.BulkResult, error) {
	return &dto.BulkResult{}, nil
}
func (m *mockBulkService) ExportEnrollments(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return bytes.NewBufferString("xlsx"), "enrollments 2026.xlsx", nil
}
func (m *mockBulkService) Stats(_ context.Context) (*dto.StatsResponse, error) {
	return &dto.StatsResponse{Students: 3}, nil
}

// ── Mock PageService ──

type mockPageService struct{}

func (mockPageService) List(_ context.Context) ([]dto.PageSummary, error) { return nil, nil }
func (mockPageService) Get(_ context.Context, slug string) (*dto.PageResponse, error) {
	if slug != "privacy" {
		return nil, service.ErrPageNotFound
	}
	return &dto.PageResponse{Slug: slug}, nil
}
func (mockPageService) Upsert(_ context.Context, slug string, req *dto.UpdatePageRequest, _ string) (*dto.PageResponse, error) {
	return &dto.PageResponse{Slug: slug, Title: req.Title}, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func asUser(role string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "test-user-id")
		c.Set(middleware.CtxRole, role)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func multipartFile(t *testing.T, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_SetsCookies(t *testing.T) {
	mock := &mockAuthService{tokens: &dto.TokenResponse{
		AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600, RememberMe: true,
	}}
	h := NewAuthHandler(mock, nil)
	r := gin.New()
	r.POST("/api/auth/login", h.Login)

	w := serve(r, http.MethodPost, "/api/auth/login", jsonBody(dto.LoginRequest{
		Email: "ada@example.com", Password: "secret123", RememberMe: true,
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	session := findCookie(w, middleware.SessionCookie)
	require.NotNil(t, session)
	assert.Equal(t, "access", session.Value)
	assert.True(t, session.HttpOnly)

	refresh := findCookie(w, middleware.RefreshCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "/api/auth", refresh.Path)
	assert.Equal(t, 30*24*3600, refresh.MaxAge)
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     io.Reader
		err      error
		wantHTTP int
		wantCode int
	}{
		{"bad json", strings.NewReader("{"), nil, http.StatusBadRequest, response.CodeValidation},
		{"missing password", jsonBody(map[string]string{"email": "a@b.co"}), nil, http.StatusBadRequest, response.CodeValidation},
		{"invalid credentials", jsonBody(dto.LoginRequest{Email: "a@b.co", Password: "x"}), service.ErrInvalidCredentials, http.StatusUnauthorized, 11001},
		{"inactive", jsonBody(dto.LoginRequest{Email: "a@b.co", Password: "x"}), service.ErrUserInactive, http.StatusForbidden, 11002},
		{"unexpected", jsonBody(dto.LoginRequest{Email: "a@b.co", Password: "x"}), errors.New("db down"), http.StatusInternalServerError, response.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{err: tt.err}, nil)
			r := gin.New()
			r.POST("/login", h.Login)

			w := serve(r, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Equal(t, tt.wantCode, parseResponse(t, w).Code)
		})
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{err: service.ErrEmailExists}, nil)
	r := gin.New()
	r.POST("/register", h.Register)

	w := serve(r, http.MethodPost, "/register", jsonBody(dto.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "longenough",
	}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 11004, parseResponse(t, w).Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("from cookie", func(t *testing.T) {
		mock := &mockAuthService{tokens: &dto.TokenResponse{AccessToken: "a2", RefreshToken: "r2"}}
		h := NewAuthHandler(mock, nil)
		r := gin.New()
		r.POST("/api/auth/refresh", h.Refresh)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "r1"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "r1", mock.refreshToken)
		require.NotNil(t, findCookie(w, middleware.RefreshCookie))
		assert.Equal(t, "r2", findCookie(w, middleware.RefreshCookie).Value)
	})

	t.Run("from body", func(t *testing.T) {
		mock := &mockAuthService{tokens: &dto.TokenResponse{AccessToken: "a2"}}
		h := NewAuthHandler(mock, nil)
		r := gin.New()
		r.POST("/refresh", h.Refresh)

		w := serve(r, http.MethodPost, "/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "body-token"}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "body-token", mock.refreshToken)
	})

	t.Run("missing", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{}, nil)
		r := gin.New()
		r.POST("/refresh", h.Refresh)

		w := serve(r, http.MethodPost, "/refresh", jsonBody(map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid clears cookies", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{err: service.ErrInvalidToken}, nil)
		r := gin.New()
		r.POST("/refresh", h.Refresh)

		w := serve(r, http.MethodPost, "/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "stale"}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		session := findCookie(w, middleware.SessionCookie)
		require.NotNil(t, session)
		assert.True(t, session.MaxAge < 0)
	})
}

func TestAuthHandler_Logout_RevokesBothTokens(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, nil)
	r := gin.New()
	r.POST("/logout", h.Logout)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer acc")
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "ref"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]string{"acc", "ref"}, mock.loggedOut)
}

func TestAuthHandler_Me_RequiresCaller(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)
	r := gin.New()
	r.GET("/anon", h.Me)
	r.GET("/me", asUser("parent", h.Me))

	w := serve(r, http.MethodGet, "/anon", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ═══════════════════════════════════════════════════════════
// EnrollmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEnrollmentHandler_Enroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantHTTP int
		wantCode int
	}{
		{nil, http.StatusCreated, 0},
		{service.ErrAlreadyEnrolled, http.StatusConflict, 14002},
		{service.ErrCourseNotPublished, http.StatusBadRequest, 14003},
		{service.ErrPaymentRequired, http.StatusPaymentRequired, 14004},
		{service.ErrCourseNotFound, http.StatusNotFound, 13002},
		{service.ErrNoPermission, http.StatusForbidden, response.CodeForbidden},
		{service.ErrStudentNotFound, http.StatusNotFound, 12004},
	}

	body := dto.EnrollRequest{
		StudentID: "0b0c3c3e-1b7a-4e8e-9d6f-3f9a1c2d4e5f",
		CourseID:  "6a1f8f7e-2c3d-4b5a-8e9f-0a1b2c3d4e5f",
	}
	for _, tt := range tests {
		name := "ok"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			h := NewEnrollmentHandler(&mockEnrollmentService{err: tt.err})
			r := gin.New()
			r.POST("/enrollments", asUser("parent", h.Enroll))

			w := serve(r, http.MethodPost, "/enrollments", jsonBody(body))
			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Equal(t, tt.wantCode, parseResponse(t, w).Code)
		})
	}
}

func TestEnrollmentHandler_CompleteLesson_OptionalBody(t *testing.T) {
	mock := &mockEnrollmentService{}
	h := NewEnrollmentHandler(mock)
	r := gin.New()
	r.POST("/lessons/:id/complete", asUser("student", h.CompleteLesson))

	w := serve(r, http.MethodPost, "/lessons/l1/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.lastReq)
	assert.Empty(t, mock.lastReq.StudentID)

	w = serve(r, http.MethodPost, "/lessons/l1/complete", jsonBody(map[string]string{"student_id": "not-a-uuid"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandler_Calendar(t *testing.T) {
	mock := &mockEnrollmentService{calendar: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}
	h := NewEnrollmentHandler(mock)
	r := gin.New()
	r.GET("/students/:id/calendar.ics", asUser("parent", h.Calendar))

	w := serve(r, http.MethodGet, "/students/s1/calendar.ics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.True(t, strings.HasPrefix(w.Body.String(), "BEGIN:VCALENDAR"))
}

// ═══════════════════════════════════════════════════════════
// ShowcaseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestShowcaseHandler_Upload(t *testing.T) {
	content := []byte("\x89PNG\r\n\x1a\nfake")

	t.Run("stores file", func(t *testing.T) {
		mock := &mockShowcaseService{}
		h := NewShowcaseHandler(mock, 1024)
		r := gin.New()
		r.POST("/upload", asUser("student", h.Upload))

		body, ct := multipartFile(t, "art.png", content)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, content, mock.uploaded)
	})

	t.Run("missing file", func(t *testing.T) {
		h := NewShowcaseHandler(&mockShowcaseService{}, 1024)
		r := gin.New()
		r.POST("/upload", asUser("student", h.Upload))

		w := serve(r, http.MethodPost, "/upload", jsonBody(map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service errors", func(t *testing.T) {
		cases := map[error]int{
			service.ErrUnsupportedImage: http.StatusUnsupportedMediaType,
			service.ErrFileTooLarge:     http.StatusRequestEntityTooLarge,
			service.ErrStorageDisabled:  http.StatusServiceUnavailable,
		}
		for err, want := range cases {
			h := NewShowcaseHandler(&mockShowcaseService{err: err}, 1024)
			r := gin.New()
			r.POST("/upload", asUser("student", h.Upload))

			body, ct := multipartFile(t, "art.png", content)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, want, w.Code, err.Error())
		}
	})
}

func TestShowcaseHandler_Get_NotFound(t *testing.T) {
	h := NewShowcaseHandler(&mockShowcaseService{err: service.ErrProjectNotFound}, 1024)
	r := gin.New()
	r.GET("/showcase/:slug", h.Get)

	w := serve(r, http.MethodGet, "/showcase/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 18001, parseResponse(t, w).Code)
}

// ═══════════════════════════════════════════════════════════
// CertificateHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCertificateHandler_Verify(t *testing.T) {
	h := NewCertificateHandler(&mockCertificateService{})
	r := gin.New()
	r.GET("/verify", h.Verify)
	r.POST("/verify", h.Verify)

	w := serve(r, http.MethodGet, "/verify?code=OCK-GOOD", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	w = serve(r, http.MethodPost, "/verify", jsonBody(map[string]string{"code": "OCK-NOPE"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)

	w = serve(r, http.MethodGet, "/verify", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateHandler_Image(t *testing.T) {
	h := NewCertificateHandler(&mockCertificateService{image: []byte("png-bytes")})
	r := gin.New()
	r.GET("/certificates/:code/image", h.Image)

	w := serve(r, http.MethodGet, "/certificates/OCK-GOOD/image", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	h = NewCertificateHandler(&mockCertificateService{err: service.ErrRendererUnavailable})
	r = gin.New()
	r.GET("/certificates/:code/image", h.Image)
	w = serve(r, http.MethodGet, "/certificates/OCK-GOOD/image", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ═══════════════════════════════════════════════════════════
// PaymentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPaymentHandler_Webhook_PassesRawBody(t *testing.T) {
	mock := &mockPaymentService{}
	h := NewPaymentHandler(mock)
	r := gin.New()
	r.POST("/webhook", h.Webhook)

	payload := `{"id":"evt_1","type":"checkout.session.completed"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, string(mock.payload))
	assert.Equal(t, "t=1,v1=abc", mock.signature)
}

func TestPaymentHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"bad signature", payment.ErrInvalidSignature, http.StatusBadRequest, 21001},
		{"unavailable", service.ErrPaymentUnavailable, http.StatusServiceUnavailable, 21004},
		{"not configured", payment.ErrNotConfigured, http.StatusServiceUnavailable, 21004},
		{"free", service.ErrFreeCourse, http.StatusBadRequest, 21002},
		{"already enrolled", service.ErrAlreadyEnrolled, http.StatusConflict, 14002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPaymentHandler(&mockPaymentService{err: tt.err})
			r := gin.New()
			r.POST("/webhook", h.Webhook)

			w := serve(r, http.MethodPost, "/webhook", strings.NewReader("{}"))
			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Equal(t, tt.wantCode, parseResponse(t, w).Code)
		})
	}
}

func TestPaymentHandler_Checkout_Validation(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})
	r := gin.New()
	r.POST("/checkout", asUser("parent", h.Checkout))

	// neither course_id nor program_id
	w := serve(r, http.MethodPost, "/checkout", jsonBody(map[string]string{
		"student_id": "0b0c3c3e-1b7a-4e8e-9d6f-3f9a1c2d4e5f",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/checkout", jsonBody(map[string]string{
		"student_id": "0b0c3c3e-1b7a-4e8e-9d6f-3f9a1c2d4e5f",
		"course_id":  "6a1f8f7e-2c3d-4b5a-8e9f-0a1b2c3d4e5f",
	}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

// ═══════════════════════════════════════════════════════════
// BulkHandler Tests
// ═══════════════════════════════════════════════════════════

func TestBulkHandler_ImportUsers(t *testing.T) {
	mock := &mockBulkService{}
	h := NewBulkHandler(mock)
	r := gin.New()
	r.POST("/import", asUser("admin", h.ImportUsers))

	body, ct := multipartFile(t, "families.csv", []byte("name,email,role\nAda,ada@example.com,parent\n"))
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "families.csv", mock.filename)

	mock.parseErr = service.ErrImportUnsupported
	body, ct = multipartFile(t, "families.pdf", []byte("%PDF"))
	req = httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, 22003, parseResponse(t, w).Code)
}

func TestBulkHandler_ExportEnrollments(t *testing.T) {
	h := NewBulkHandler(&mockBulkService{})
	r := gin.New()
	r.GET("/export", h.ExportEnrollments)

	w := serve(r, http.MethodGet, "/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxMIME, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename*=UTF-8''enrollments+2026.xlsx", w.Header().Get("Content-Disposition"))

	w = serve(r, http.MethodGet, "/export?course_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ═══════════════════════════════════════════════════════════
// PageHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPageHandler(t *testing.T) {
	h := NewPageHandler(mockPageService{})
	r := gin.New()
	r.GET("/pages/:slug", h.Get)
	r.PUT("/pages/:slug", asUser("admin", h.Upsert))

	w := serve(r, http.MethodGet, "/pages/privacy", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/pages/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 23001, parseResponse(t, w).Code)

	w = serve(r, http.MethodPut, "/pages/terms", jsonBody(dto.UpdatePageRequest{Title: "Terms", Content: "..."}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	r := gin.New()
	r.Use(middleware.BodyLimit(16))
	r.POST("/contact", NewContactHandler(nil).Submit)

	w := serve(r, http.MethodPost, "/contact", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, response.CodeBodyTooLarge, parseResponse(t, w).Code)
}

func TestRegisterValidators_Slug(t *testing.T) {
	type slugged struct {
		Slug  string  `json:"slug"  binding:"omitempty,slug"`
		Other *string `json:"other" binding:"omitempty,slug"`
	}
	bad := "Not A Slug"
	tests := []struct {
		in   slugged
		want bool
	}{
		{slugged{Slug: "intro-to-scratch"}, true},
		{slugged{}, true},
		{slugged{Slug: "Intro--Scratch"}, false},
		{slugged{Other: &bad}, false},
	}
	for _, tt := range tests {
		err := binding.Validator.ValidateStruct(&tt.in)
		assert.Equal(t, tt.want, err == nil, "%+v", tt.in)
	}
}
