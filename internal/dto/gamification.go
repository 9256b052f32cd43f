package dto

// ── badges & XP ──

// BadgeResponse badge definition
type BadgeResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Criterion   string `json:"criterion"`
	Threshold   int    `json:"threshold"`
	XPReward    int    `json:"xp_reward"`
	IsActive    bool   `json:"is_active"`
}

// StudentBadgeResponse earned badge
type StudentBadgeResponse struct {
	Badge     BadgeResponse `json:"badge"`
	AwardedAt string        `json:"awarded_at"`
}

// CreateBadgeRequest admin create
type CreateBadgeRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Slug        string `json:"slug"        binding:"omitempty,slug,max=120"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Icon        string `json:"icon"        binding:"omitempty,max=100"`
	Criterion   string `json:"criterion"   binding:"required,oneof=lessons_completed streak_days courses_completed projects_published total_xp"`
	Threshold   int    `json:"threshold"   binding:"required,min=1"`
	XPReward    int    `json:"xp_reward"   binding:"omitempty,min=0,max=10000"`
}

// UpdateBadgeRequest partial update
type UpdateBadgeRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Icon        *string `json:"icon"        binding:"omitempty,max=100"`
	Criterion   *string `json:"criterion"   binding:"omitempty,oneof=lessons_completed streak_days courses_completed projects_published total_xp"`
	Threshold   *int    `json:"threshold"   binding:"omitempty,min=1"`
	XPReward    *int    `json:"xp_reward"   binding:"omitempty,min=0,max=10000"`
	IsActive    *bool   `json:"is_active"`
}

// XPTransactionResponse ledger entry
type XPTransactionResponse struct {
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

// LeaderboardRequest leaderboard size
type LeaderboardRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LeaderboardEntry public leaderboard row: display name and level only
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
}
