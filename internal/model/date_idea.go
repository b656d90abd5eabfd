package model

import "time"

type DateIdea struct {
	ID            string    `json:"id"`
	HouseholdID   string    `json:"-"`
	CreatedBy     string    `json:"created_by"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	EstimatedCost *string   `json:"estimated_cost"`
	Location      *string   `json:"location"`
	URL           *string   `json:"url"`
	Done          bool      `json:"done"`
	DoneDate      *Date     `json:"done_date"`
	Priority      int       `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
}

type DateIdeaCreate struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	EstimatedCost *string `json:"estimated_cost"`
	Location      *string `json:"location"`
	URL           *string `json:"url"`
	Priority      int     `json:"priority"`
}

type DateIdeaPatch struct {
	Title         Optional[string] `json:"title"`
	Description   Optional[string] `json:"description"`
	Category      Optional[string] `json:"category"`
	EstimatedCost Optional[string] `json:"estimated_cost"`
	Location      Optional[string] `json:"location"`
	URL           Optional[string] `json:"url"`
	Priority      Optional[int]    `json:"priority"`
}

type DateIdeaFilter struct {
	Category *string
	Done     *bool
	Priority *int
}
