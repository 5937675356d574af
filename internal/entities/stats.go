package entities

type StatusCounts struct {
	Unread     int `json:"unread"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Stats is the reading summary of one user's library.
type Stats struct {
	TotalBooks        int          `json:"total_books"`
	ByStatus          StatusCounts `json:"by_status"`
	GenreDistribution []GenreCount `json:"genre_distribution"`
	// Completed books per month of the current year, January first.
	MonthlyCompleted [12]int `json:"monthly_completed"`
}

type ReadingGoal struct {
	Year      int `json:"year"`
	Goal      int `json:"goal"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}
