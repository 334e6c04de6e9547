package library

// CategoryPolicy captures the two values that actually differ between user
// categories: how many items may be held at once, and how many days an item
// may be held before it counts as overdue.
type CategoryPolicy struct {
	BorrowLimit      int
	OverdueGraceDays int
}

var policies = map[UserCategory]CategoryPolicy{
	CategoryStudent:  {BorrowLimit: 5, OverdueGraceDays: 30},
	CategoryAcademic: {BorrowLimit: 3, OverdueGraceDays: 15},
	CategoryGuest:    {BorrowLimit: 1, OverdueGraceDays: 7},
}

// PolicyFor returns the borrowing policy for a user category.
func PolicyFor(c UserCategory) CategoryPolicy {
	return policies[c]
}

// penaltyIncrement is added once per overdue held item at borrow time.
const penaltyIncrement = 2

// penaltyBlockThreshold is the total penalty at which borrowing is refused
// until the user pays.
const penaltyBlockThreshold = 6
