package model

import "time"

type Memory struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"-"`
	CreatedBy   string    `json:"created_by"`
	Title       string    `json:"title"`
	Content     *string   `json:"content"`
	MemoryDate  Date      `json:"memory_date"`
	Location    *string   `json:"location"`
	Mood        *string   `json:"mood"`
	Tags        []string  `json:"tags"`
	Pinned      bool      `json:"pinned"`
	Photos      []Photo   `json:"photos"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemoryCreate struct {
	Title      string   `json:"title"`
	Content    *string  `json:"content"`
	MemoryDate *Date    `json:"memory_date"`
	Location   *string  `json:"location"`
	Mood       *string  `json:"mood"`
	Tags       []string `json:"tags"`
	Pinned     bool     `json:"pinned"`
}

type MemoryPatch struct {
	Title      Optional[string]   `json:"title"`
	Content    Optional[string]   `json:"content"`
	MemoryDate Optional[Date]     `json:"memory_date"`
	Location   Optional[string]   `json:"location"`
	Mood       Optional[string]   `json:"mood"`
	Tags       Optional[[]string] `json:"tags"`
	Pinned     Optional[bool]     `json:"pinned"`
}

// MemoryFilter narrows a memory listing. Nil fields do not filter.
type MemoryFilter struct {
	Year    *int
	Month   *int
	Tag     *string
	Pinned  *bool
	Page    int
	PerPage int
}

type MemoryPage struct {
	Memories []Memory `json:"memories"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PerPage  int      `json:"per_page"`
}
