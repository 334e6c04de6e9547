package library

import "fmt"

// dateLayout is the dd/mm/yyyy format used by input files and report lines.
const dateLayout = "02/01/2006"

func (a BookAttrs) attrLine() string {
	return fmt.Sprintf("Author: %s Genre: %s", a.Author, a.Genre)
}

func (a MagazineAttrs) attrLine() string {
	return fmt.Sprintf("Publisher: %s Category: %s", a.Publisher, a.Category)
}

func (a DVDAttrs) attrLine() string {
	return fmt.Sprintf("Director: %s Category: %s Runtime: %d min", a.Director, a.Category, a.Runtime)
}

// UserDetailLines renders a user's report block. The penalty line is always
// present here; the display operation decides whether to suppress it.
func (l *Library) UserDetailLines(u *User) []string {
	lines := []string{fmt.Sprintf("------ User Information for %s ------", u.ID)}
	switch u.Category {
	case CategoryAcademic:
		lines = append(lines,
			fmt.Sprintf("Name: %s %s Phone: %s", u.Title, u.Name, u.Phone),
			fmt.Sprintf("Faculty: %s Department: %s", u.Faculty, u.Department))
	case CategoryGuest:
		lines = append(lines,
			fmt.Sprintf("Name: %s Phone: %s", u.Name, u.Phone),
			fmt.Sprintf("Occupation: %s", u.Occupation))
	default:
		lines = append(lines,
			fmt.Sprintf("Name: %s Phone: %s", u.Name, u.Phone),
			fmt.Sprintf("Faculty: %s Department: %s Grade: %dth", u.Faculty, u.Department, u.Grade))
	}
	return append(lines, fmt.Sprintf("Penalty: $%d", u.Penalty))
}

// ItemDetailLines renders an item's report block, including borrower details
// when the item is checked out.
func (l *Library) ItemDetailLines(it *Item) []string {
	status := "Status: Available"
	if it.Borrowed {
		borrower := it.BorrowedBy
		if u := l.UserByID(it.BorrowedBy); u != nil {
			borrower = u.Name
		}
		status = fmt.Sprintf("Status: Borrowed Borrowed Date: %s Borrowed by: %s",
			it.BorrowedDate.Format(dateLayout), borrower)
	}
	return []string{
		fmt.Sprintf("------ Item Information for %s ------", it.ID),
		fmt.Sprintf("ID: %s Name: %s %s", it.ID, it.Title, status),
		it.Attrs.attrLine(),
	}
}
