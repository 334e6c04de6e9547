package library

import "time"

// UserCategory identifies the kind of borrower. The per-category behavior
// (borrow limit, overdue grace) lives in the policy table, not in subtypes.
type UserCategory string

const (
	CategoryStudent  UserCategory = "student"
	CategoryAcademic UserCategory = "academic"
	CategoryGuest    UserCategory = "guest"
)

// User is a registered borrower. Category-specific attributes are flattened
// here; only the fields for the user's own category are populated.
type User struct {
	ID       string
	Name     string
	Phone    string
	Category UserCategory

	Department string // student, academic
	Faculty    string // student, academic
	Grade      int    // student
	Title      string // academic
	Occupation string // guest

	Penalty int
	HasPaid bool
}

// ItemCategory identifies the kind of catalog item.
type ItemCategory string

const (
	CategoryBook     ItemCategory = "book"
	CategoryMagazine ItemCategory = "magazine"
	CategoryDVD      ItemCategory = "dvd"
)

// ItemAttrs is the category-specific attribute bundle of a catalog item.
// Implementations render the attribute line of the item's detail block.
type ItemAttrs interface {
	attrLine() string
}

// BookAttrs holds the attributes specific to books.
type BookAttrs struct {
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

// MagazineAttrs holds the attributes specific to magazines.
type MagazineAttrs struct {
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
}

// DVDAttrs holds the attributes specific to DVDs.
type DVDAttrs struct {
	Director string `json:"director"`
	Category string `json:"category"`
	Runtime  int    `json:"runtime_minutes"`
}

// Item is a catalog entry. Borrow state references the borrowing user by id
// rather than holding a pointer; the Library registry owns both sides.
type Item struct {
	ID       string
	Title    string
	Category ItemCategory
	Kind     string // normal, reference, limited
	Attrs    ItemAttrs

	Borrowed     bool
	BorrowedBy   string    // user id, empty when available
	BorrowedDate time.Time // zero when available
}
