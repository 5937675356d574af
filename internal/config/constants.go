package config

const (
	// DefaultReadingGoal is the yearly number of books used when none is configured.
	DefaultReadingGoal = 12

	// DefaultRecentBooks is how many books the dashboard lists.
	DefaultRecentBooks = 5
)
