package model

import "time"

// Export is the full dump of a household. Photo bytes are not included.
type Export struct {
	App        string            `json:"app"`
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Household  ExportHousehold   `json:"household"`
	Memories   []ExportMemory    `json:"memories"`
	DateIdeas  []ExportDateIdea  `json:"date_ideas"`
	Milestones []ExportMilestone `json:"milestones"`
}

type ExportHousehold struct {
	Name        string  `json:"name"`
	UserAID     string  `json:"user_a_id"`
	UserBID     *string `json:"user_b_id"`
	Anniversary *Date   `json:"anniversary"`
}

type ExportMemory struct {
	Title      string        `json:"title"`
	Content    *string       `json:"content"`
	MemoryDate Date          `json:"memory_date"`
	Location   *string       `json:"location"`
	Mood       *string       `json:"mood"`
	Tags       []string      `json:"tags"`
	Pinned     bool          `json:"pinned"`
	CreatedBy  string        `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
	Photos     []ExportPhoto `json:"photos"`
}

type ExportPhoto struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

type ExportDateIdea struct {
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	EstimatedCost *string   `json:"estimated_cost"`
	Location      *string   `json:"location"`
	URL           *string   `json:"url"`
	Done          bool      `json:"done"`
	DoneDate      *Date     `json:"done_date"`
	Priority      int       `json:"priority"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type ExportMilestone struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	MilestoneDate Date    `json:"milestone_date"`
	Recurring     bool    `json:"recurring"`
	Icon          *string `json:"icon"`
}
