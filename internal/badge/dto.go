// AngelaMos | 2026
// dto.go

package badge

import (
	"time"
)

type BadgeResponse struct {
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Icon             string `json:"icon"`
	Color            string `json:"color"`
	Category         string `json:"category"`
	RequirementType  string `json:"requirement_type"`
	RequirementValue int    `json:"requirement_value"`
	Rarity           string `json:"rarity"`
	DisplayOrder     int    `json:"display_order"`
}

type EarnedBadgeResponse struct {
	BadgeResponse
	EarnedAt         time.Time `json:"earned_at"`
	NotificationSeen bool      `json:"notification_seen"`
}

type BadgesResponse struct {
	Earned []EarnedBadgeResponse `json:"earned"`
	Locked []BadgeResponse       `json:"locked"`
}

type CheckResponse struct {
	NewBadges []string `json:"new_badges"`
}

func ToBadgeResponse(b *Badge) BadgeResponse {
	return BadgeResponse{
		Slug:             b.Slug,
		Name:             b.Name,
		Description:      b.Description,
		Icon:             b.Icon,
		Color:            b.Color,
		Category:         b.Category,
		RequirementType:  b.RequirementType,
		RequirementValue: b.RequirementValue,
		Rarity:           b.Rarity,
		DisplayOrder:     b.DisplayOrder,
	}
}

func ToEarnedBadgeResponse(e *EarnedBadge) EarnedBadgeResponse {
	return EarnedBadgeResponse{
		BadgeResponse:    ToBadgeResponse(&e.Badge),
		EarnedAt:         e.EarnedAt,
		NotificationSeen: e.NotificationSeen,
	}
}
