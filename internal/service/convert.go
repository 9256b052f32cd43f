package service

import (
	"strings"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
)

// model → dto mappers shared by several services

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.UserID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		AvatarURL:   u.AvatarURL,
		IsActive:    u.IsActive,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
		CreatedAt:   formatTime(u.CreatedAt),
	}
}

func toStudentResponse(s *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:                s.StudentID,
		UserID:            s.UserID,
		ParentID:          s.ParentID,
		DisplayName:       s.DisplayName,
		BirthYear:         s.BirthYear,
		GradeLevel:        s.GradeLevel,
		AvatarURL:         s.AvatarURL,
		TotalXP:           s.TotalXP,
		Level:             s.Level,
		StreakDays:        s.StreakDays,
		LongestStreak:     s.LongestStreak,
		LessonsCompleted:  s.LessonsCompleted,
		CoursesCompleted:  s.CoursesCompleted,
		ProjectsPublished: s.ProjectsPublished,
	}
}

func toCourseSummary(c *model.Course) dto.CourseSummary {
	return dto.CourseSummary{
		ID:           c.CourseID,
		Slug:         c.Slug,
		Title:        c.Title,
		Summary:      c.Summary,
		Level:        c.Level,
		Language:     c.Language,
		AgeMin:       c.AgeMin,
		AgeMax:       c.AgeMax,
		PriceCents:   c.PriceCents,
		ThumbnailURL: c.ThumbnailURL,
		ProgramID:    c.ProgramID,
		IsPublished:  c.IsPublished,
	}
}

func toLessonOutline(l *model.Lesson) dto.LessonOutline {
	return dto.LessonOutline{
		ID:              l.LessonID,
		Slug:            l.Slug,
		Title:           l.Title,
		Summary:         l.Summary,
		Position:        l.Position,
		DurationMinutes: l.DurationMinutes,
		XPReward:        l.XPReward,
		IsPreview:       l.IsPreview,
	}
}

func toClassSessionResponse(s *model.ClassSession) dto.ClassSessionResponse {
	return dto.ClassSessionResponse{
		ID:          s.ClassSessionID,
		CourseID:    s.CourseID,
		Title:       s.Title,
		Description: s.Description,
		StartsAt:    formatTime(s.StartsAt),
		EndsAt:      formatTime(s.EndsAt),
		MeetingURL:  s.MeetingURL,
	}
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:              e.EnrollmentID,
		StudentID:       e.StudentID,
		CourseID:        e.CourseID,
		Status:          e.Status,
		ProgressPercent: e.ProgressPercent,
		EnrolledAt:      formatTime(e.EnrolledAt),
		CompletedAt:     formatTimePtr(e.CompletedAt),
	}
	if e.Course != nil {
		cs := toCourseSummary(e.Course)
		resp.Course = &cs
	}
	return resp
}

func toBadgeResponse(b *model.Badge) dto.BadgeResponse {
	return dto.BadgeResponse{
		ID:          b.BadgeID,
		Slug:        b.Slug,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Criterion:   b.Criterion,
		Threshold:   b.Threshold,
		XPReward:    b.XPReward,
		IsActive:    b.IsActive,
	}
}

func toStudentBadgeResponse(sb *model.StudentBadge) dto.StudentBadgeResponse {
	resp := dto.StudentBadgeResponse{AwardedAt: formatTime(sb.AwardedAt)}
	if sb.Badge != nil {
		resp.Badge = toBadgeResponse(sb.Badge)
	}
	return resp
}

func toXPResponse(x *model.XPTransaction) dto.XPTransactionResponse {
	return dto.XPTransactionResponse{
		Amount:    x.Amount,
		Reason:    x.Reason,
		CreatedAt: formatTime(x.CreatedAt),
	}
}

func toSubmissionResponse(s *model.Submission) dto.SubmissionResponse {
	resp := dto.SubmissionResponse{
		ID:            s.SubmissionID,
		AssignmentID:  s.AssignmentID,
		StudentID:     s.StudentID,
		Content:       s.Content,
		AttachmentURL: s.AttachmentURL,
		Status:        s.Status,
		StatusLabel:   model.SubmissionStatusLabel(s.Status),
		Score:         s.Score,
		Feedback:      s.Feedback,
		IsLate:        s.IsLate,
		SubmittedAt:   formatTimePtr(s.SubmittedAt),
		GradedAt:      formatTimePtr(s.GradedAt),
	}
	if s.Student != nil {
		resp.StudentName = s.Student.DisplayName
	}
	return resp
}

func toCertificateResponse(c *model.Certificate, baseURL string) dto.CertificateResponse {
	return dto.CertificateResponse{
		ID:               c.CertificateID,
		StudentID:        c.StudentID,
		CourseID:         c.CourseID,
		VerificationCode: c.VerificationCode,
		StudentName:      c.StudentName,
		CourseTitle:      c.CourseTitle,
		IssuedAt:         formatTime(c.IssuedAt),
		ImageURL:         strings.TrimRight(baseURL, "/") + "/api/certificates/" + c.VerificationCode + "/image",
	}
}

func toReviewResponse(r *model.Review) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		ID:        r.ReviewID,
		CourseID:  r.CourseID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
	if r.User != nil {
		resp.AuthorName = r.User.Name
	}
	return resp
}

func toPostSummary(p *model.BlogPost) dto.BlogPostSummary {
	resp := dto.BlogPostSummary{
		ID:            p.PostID,
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		CoverImageURL: p.CoverImageURL,
		Tags:          nonNilTags(p.Tags),
		IsPublished:   p.IsPublished,
		PublishedAt:   formatTimePtr(p.PublishedAt),
		ViewCount:     p.ViewCount,
		LikeCount:     p.LikeCount,
	}
	if p.Author != nil {
		resp.AuthorName = p.Author.Name
	}
	return resp
}

func toCommentResponse(c *model.Comment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:         c.CommentID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		Content:    c.Content,
		IsApproved: c.IsApproved,
		CreatedAt:  formatTime(c.CreatedAt),
	}
	if c.User != nil {
		resp.AuthorName = c.User.Name
	}
	return resp
}

func toProjectResponse(p *model.StudentProject) dto.ProjectResponse {
	resp := dto.ProjectResponse{
		ID:           p.ProjectID,
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		ProjectURL:   p.ProjectURL,
		ThumbnailURL: p.ThumbnailURL,
		Tags:         nonNilTags(p.Tags),
		StudentID:    p.StudentID,
		CourseID:     p.CourseID,
		Status:       p.Status,
		IsFeatured:   p.IsFeatured,
		LikeCount:    p.LikeCount,
		ViewCount:    p.ViewCount,
		ReviewNote:   p.ReviewNote,
		CreatedAt:    formatTime(p.CreatedAt),
	}
	if p.Student != nil {
		resp.StudentName = p.Student.DisplayName
	}
	return resp
}

func toContactResponse(m *model.ContactMessage) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        m.ContactMessageID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: formatTime(m.CreatedAt),
	}
}

func toPaymentResponse(p *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.PaymentID,
		StudentID:   p.StudentID,
		CourseID:    p.CourseID,
		ProgramID:   p.ProgramID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		PaidAt:      formatTimePtr(p.PaidAt),
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// cleanTags trims, lowercases and de-duplicates tags
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
