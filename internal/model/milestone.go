package model

import "time"

type Milestone struct {
	ID            string    `json:"id"`
	HouseholdID   string    `json:"-"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	MilestoneDate Date      `json:"milestone_date"`
	Recurring     bool      `json:"recurring"`
	Icon          *string   `json:"icon"`
	DaysUntil     *int      `json:"days_until"`
	CreatedAt     time.Time `json:"created_at"`
}

type MilestoneCreate struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	MilestoneDate *Date   `json:"milestone_date"`
	Recurring     bool    `json:"recurring"`
	Icon          *string `json:"icon"`
}

type MilestonePatch struct {
	Title         Optional[string] `json:"title"`
	Description   Optional[string] `json:"description"`
	MilestoneDate Optional[Date]   `json:"milestone_date"`
	Recurring     Optional[bool]   `json:"recurring"`
	Icon          Optional[string] `json:"icon"`
}
