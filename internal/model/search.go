package model

type SearchResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	MemoryDate Date    `json:"memory_date"`
	Location   *string `json:"location"`
}
