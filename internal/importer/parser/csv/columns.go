package csvparser

// Columns of the CSV import format.
const (
	Date = iota
	Category
	Entity
	Note
	Income
	Expense
)
