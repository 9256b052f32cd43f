package service

import (
	"context"
	"time"

	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
)

// xpPerLevel XP needed to gain one level
const xpPerLevel = 250

// LevelForXP level = 1 + total_xp / 250
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return 1 + totalXP/xpPerLevel
}

// utcDay midnight UTC of t's calendar day
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// applyActivity updates the daily streak for activity at now.
// Same day keeps the streak, the following day extends it, any longer gap restarts it at 1.
func applyActivity(st *model.Student, now time.Time) {
	today := utcDay(now)
	switch {
	case st.LastActivityDate == nil:
		st.StreakDays = 1
	case utcDay(*st.LastActivityDate).Equal(today):
		if st.StreakDays == 0 {
			st.StreakDays = 1
		}
	case utcDay(*st.LastActivityDate).AddDate(0, 0, 1).Equal(today):
		st.StreakDays++
	default:
		st.StreakDays = 1
	}
	if st.StreakDays > st.LongestStreak {
		st.LongestStreak = st.StreakDays
	}
	st.LastActivityDate = &today
}

// awardXP appends to the ledger and updates the cached total and level. The caller saves st.
func awardXP(ctx context.Context, repo *repository.Repository, st *model.Student, amount int, reason string, sourceID *string, now time.Time) error {
	if amount <= 0 {
		return nil
	}
	entry := &model.XPTransaction{
		StudentID: st.StudentID,
		Amount:    amount,
		Reason:    reason,
		SourceID:  sourceID,
		CreatedAt: now,
	}
	if err := repo.XP.Create(ctx, entry); err != nil {
		return err
	}
	st.TotalXP += amount
	st.Level = LevelForXP(st.TotalXP)
	return nil
}

// badgeCounter the student counter a criterion compares against
func badgeCounter(st *model.Student, criterion string) int {
	switch criterion {
	case model.CriterionLessonsCompleted:
		return st.LessonsCompleted
	case model.CriterionStreakDays:
		return st.StreakDays
	case model.CriterionCoursesCompleted:
		return st.CoursesCompleted
	case model.CriterionProjectsPublished:
		return st.ProjectsPublished
	case model.CriterionTotalXP:
		return st.TotalXP
	}
	return 0
}

// evaluateBadges awards every active badge whose threshold the student has reached.
// Badge XP can push total_xp over another threshold, so total_xp badges get one more pass.
// The caller saves st.
func evaluateBadges(ctx context.Context, repo *repository.Repository, st *model.Student, now time.Time) ([]model.Badge, error) {
	badges, err := repo.Badge.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(badges) == 0 {
		return nil, nil
	}
	owned, err := repo.Badge.ListAwarded(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(owned))
	for _, sb := range owned {
		held[sb.BadgeID] = true
	}

	var awarded []model.Badge
	pass := func(xpOnly bool) error {
		for i := range badges {
			b := &badges[i]
			if held[b.BadgeID] || (xpOnly && b.Criterion != model.CriterionTotalXP) {
				continue
			}
			if badgeCounter(st, b.Criterion) < b.Threshold {
				continue
			}
			held[b.BadgeID] = true
			ok, err := repo.Badge.Award(ctx, st.StudentID, b.BadgeID, now)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			awarded = append(awarded, *b)
			if err := awardXP(ctx, repo, st, b.XPReward, model.XPReasonBadge, &b.BadgeID, now); err != nil {
				return err
			}
		}
		return nil
	}

	if err := pass(false); err != nil {
		return nil, err
	}
	if len(awarded) > 0 {
		if err := pass(true); err != nil {
			return nil, err
		}
	}
	return awarded, nil
}
