package library

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseUser builds a user from one comma-split line of the users file.
// Field order follows the file format: the name precedes the id.
func parseUser(parts []string) (*User, error) {
	switch parts[0] {
	case "S":
		if len(parts) < 7 {
			return nil, fmt.Errorf("student record needs 7 fields, got %d", len(parts))
		}
		grade, err := strconv.Atoi(parts[6])
		if err != nil {
			return nil, fmt.Errorf("student grade: %w", err)
		}
		return &User{
			ID: parts[2], Name: parts[1], Phone: parts[3],
			Category:   CategoryStudent,
			Department: parts[4], Faculty: parts[5], Grade: grade,
		}, nil
	case "A":
		if len(parts) < 7 {
			return nil, fmt.Errorf("academic record needs 7 fields, got %d", len(parts))
		}
		return &User{
			ID: parts[2], Name: parts[1], Phone: parts[3],
			Category:   CategoryAcademic,
			Department: parts[4], Faculty: parts[5], Title: parts[6],
		}, nil
	case "G":
		if len(parts) < 5 {
			return nil, fmt.Errorf("guest record needs 5 fields, got %d", len(parts))
		}
		return &User{
			ID: parts[2], Name: parts[1], Phone: parts[3],
			Category:   CategoryGuest,
			Occupation: parts[4],
		}, nil
	}
	return nil, fmt.Errorf("unknown user type %q", parts[0])
}

// parseItem builds a catalog item from one comma-split line of the items file.
func parseItem(parts []string) (*Item, error) {
	switch parts[0] {
	case "B":
		if len(parts) < 6 {
			return nil, fmt.Errorf("book record needs 6 fields, got %d", len(parts))
		}
		return &Item{
			ID: parts[1], Title: parts[2], Category: CategoryBook, Kind: parts[5],
			Attrs: BookAttrs{Author: parts[3], Genre: parts[4]},
		}, nil
	case "M":
		if len(parts) < 6 {
			return nil, fmt.Errorf("magazine record needs 6 fields, got %d", len(parts))
		}
		return &Item{
			ID: parts[1], Title: parts[2], Category: CategoryMagazine, Kind: parts[5],
			Attrs: MagazineAttrs{Publisher: parts[3], Category: parts[4]},
		}, nil
	case "D":
		if len(parts) < 7 {
			return nil, fmt.Errorf("dvd record needs 7 fields, got %d", len(parts))
		}
		runtime, err := strconv.Atoi(strings.TrimSuffix(parts[5], " min"))
		if err != nil {
			return nil, fmt.Errorf("dvd runtime: %w", err)
		}
		return &Item{
			ID: parts[1], Title: parts[2], Category: CategoryDVD, Kind: parts[6],
			Attrs: DVDAttrs{Director: parts[3], Category: parts[4], Runtime: runtime},
		}, nil
	}
	return nil, fmt.Errorf("unknown item type %q", parts[0])
}

// LoadUsers reads the users file into the registry. A file that cannot be
// opened produces a single report line; the run continues with whatever was
// loaded. Malformed records are logged and skipped.
func (p *Processor) LoadUsers(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		p.rep.WriteLine("Error reading users file: " + filename)
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		user, err := parseUser(strings.Split(line, ","))
		if err != nil {
			p.log.Warn("skipping users line", "file", filename, "err", err)
			continue
		}
		p.lib.AddUser(user)
	}
	if err := sc.Err(); err != nil {
		p.rep.WriteLine("Error reading users file: " + filename)
	}
}

// LoadItems reads the items file into the registry with the same soft error
// handling as LoadUsers.
func (p *Processor) LoadItems(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		p.rep.WriteLine("Error reading items file: " + filename)
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		item, err := parseItem(strings.Split(line, ","))
		if err != nil {
			p.log.Warn("skipping items line", "file", filename, "err", err)
			continue
		}
		p.lib.AddItem(item)
	}
	if err := sc.Err(); err != nil {
		p.rep.WriteLine("Error reading items file: " + filename)
	}
}

// ReplayCommands drains the command file, applying every line in order.
func (p *Processor) ReplayCommands(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		p.rep.WriteLine("Error reading command file: " + filename)
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		p.ProcessCommand(sc.Text())
	}
	if err := sc.Err(); err != nil {
		p.rep.WriteLine("Error reading command file: " + filename)
	}
}
