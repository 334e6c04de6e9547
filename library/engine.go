package library

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LoanAction distinguishes journal entries.
type LoanAction string

const (
	ActionBorrow LoanAction = "borrow"
	ActionReturn LoanAction = "return"
)

// LoanEvent is one successful borrow or return, recorded in replay order.
type LoanEvent struct {
	Seq    int
	UserID string
	ItemID string
	Action LoanAction
	Date   time.Time
}

// Stats counts what happened during a replay.
type Stats struct {
	Commands int
	Borrows  int
	Returns  int
	Payments int
	Refused  int // penalty block, unavailable item, borrow limit
	Errors   int // unknown user/item, item not held
	Unknown  int
}

// Processor applies circulation commands to a Library one at a time, writing
// report lines to an explicit sink. It is single-threaded; commands observe
// all mutations from earlier commands.
type Processor struct {
	lib *Library
	rep *Report
	log *slog.Logger

	journal []LoanEvent
	stats   Stats
}

// NewProcessor wires a processor to its registry, report sink and logger.
func NewProcessor(lib *Library, rep *Report, log *slog.Logger) *Processor {
	return &Processor{lib: lib, rep: rep, log: log}
}

// Journal returns the recorded loan events in replay order.
func (p *Processor) Journal() []LoanEvent { return p.journal }

// Stats returns the replay counters.
func (p *Processor) Stats() Stats { return p.stats }

// Library returns the registry the processor mutates.
func (p *Processor) Library() *Library { return p.lib }

// ProcessCommand dispatches a single command line. Unrecognized commands,
// including lines with too few fields, produce the unknown-command report
// line and nothing else.
func (p *Processor) ProcessCommand(line string) {
	p.stats.Commands++
	parts := strings.Split(line, ",")
	switch parts[0] {
	case "borrow":
		if len(parts) < 4 {
			p.unknown(line)
			return
		}
		p.borrow(parts[1], parts[2], parts[3])
	case "return":
		if len(parts) < 3 {
			p.unknown(line)
			return
		}
		p.returnItem(parts[1], parts[2])
	case "pay":
		if len(parts) < 2 {
			p.unknown(line)
			return
		}
		p.payPenalty(parts[1])
	case "displayUsers":
		p.displayUsers()
	case "displayItems":
		p.displayItems()
	default:
		p.unknown(line)
	}
}

func (p *Processor) unknown(line string) {
	p.stats.Unknown++
	p.rep.WriteLine("Unknown command: " + line)
}

// borrow applies the full refusal chain: unknown user/item, penalty block,
// item unavailable, category borrow limit. Overdue penalties for items the
// user already holds are assessed here and only here.
func (p *Processor) borrow(userID, itemID, dateStr string) {
	user := p.lib.UserByID(userID)
	item := p.lib.ItemByID(itemID)
	if user == nil || item == nil {
		p.stats.Errors++
		p.rep.WriteLine("Error: user or item not found!")
		return
	}

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		p.log.Warn("skipping borrow with unparseable date", "user", userID, "item", itemID, "date", dateStr)
		return
	}

	policy := PolicyFor(user.Category)
	held := p.lib.Held(userID)

	newPenalty := 0
	for _, heldID := range held {
		heldItem := p.lib.ItemByID(heldID)
		if heldItem == nil || heldItem.BorrowedDate.IsZero() {
			continue
		}
		if daysBetween(heldItem.BorrowedDate, date) > policy.OverdueGraceDays {
			newPenalty += penaltyIncrement
		}
	}

	total := user.Penalty + newPenalty
	if total >= penaltyBlockThreshold && !user.HasPaid {
		// The accrued penalty sticks even though the borrow is refused.
		user.Penalty = total
		p.lib.block(userID)
		p.stats.Refused++
		p.rep.WriteLine(fmt.Sprintf("%s cannot borrow %s, you must first pay the penalty amount! %d$",
			user.Name, item.Title, total))
		return
	}

	user.Penalty += newPenalty

	if item.Borrowed {
		p.stats.Refused++
		p.rep.WriteLine(fmt.Sprintf("%s cannot borrow %s, it is not available!", user.Name, item.Title))
		return
	}

	if len(held) >= policy.BorrowLimit {
		p.stats.Refused++
		p.rep.WriteLine(fmt.Sprintf("%s cannot borrow %s, since the borrow limit has been reached!",
			user.Name, item.Title))
		return
	}

	item.Borrowed = true
	item.BorrowedBy = userID
	item.BorrowedDate = date
	p.lib.addHeld(userID, itemID)
	p.record(ActionBorrow, userID, itemID, date)
	p.stats.Borrows++
	p.rep.WriteLine(fmt.Sprintf("%s successfully borrowed! %s", user.Name, item.Title))
}

// returnItem clears the item's borrow state. No penalty is assessed here;
// overdue penalties are only computed at the next borrow attempt.
func (p *Processor) returnItem(userID, itemID string) {
	user := p.lib.UserByID(userID)
	item := p.lib.ItemByID(itemID)
	if user == nil || item == nil {
		p.stats.Errors++
		p.rep.WriteLine("Error: user or item not found!")
		return
	}

	if !p.lib.removeHeld(userID, itemID) {
		p.stats.Errors++
		p.rep.WriteLine("Error: item was not borrowed.")
		return
	}

	returnDate := item.BorrowedDate
	item.Borrowed = false
	item.BorrowedBy = ""
	item.BorrowedDate = time.Time{}
	p.record(ActionReturn, userID, itemID, returnDate)
	p.stats.Returns++
	p.rep.WriteLine(fmt.Sprintf("%s successfully returned %s", user.Name, item.Title))
}

// payPenalty clears the user's penalty in full and lifts the block. A pay
// command for an unknown user is silently ignored.
func (p *Processor) payPenalty(userID string) {
	user := p.lib.UserByID(userID)
	if user == nil {
		p.log.Warn("pay command for unknown user", "user", userID)
		return
	}
	user.HasPaid = true
	user.Penalty = 0
	p.lib.unblock(userID)
	p.stats.Payments++
	p.rep.WriteLine(fmt.Sprintf("%s has paid penalty", user.Name))
}

// displayUsers prints every user's detail block ordered by id, a blank line
// between blocks and one after the last. The penalty line is suppressed for
// users with zero penalty.
func (p *Processor) displayUsers() {
	for i, user := range p.lib.UsersSorted() {
		if i > 0 {
			p.rep.WriteLine("")
		}
		for _, line := range p.lib.UserDetailLines(user) {
			if strings.HasPrefix(line, "Penalty:") && user.Penalty == 0 {
				continue
			}
			p.rep.WriteLine(line)
		}
	}
	p.rep.WriteLine("")
}

// displayItems prints every item's detail block ordered by id, a blank line
// between blocks and none after the last.
func (p *Processor) displayItems() {
	items := p.lib.ItemsSorted()
	for i, item := range items {
		for _, line := range p.lib.ItemDetailLines(item) {
			p.rep.WriteLine(line)
		}
		if i < len(items)-1 {
			p.rep.WriteLine("")
		}
	}
}

func (p *Processor) record(action LoanAction, userID, itemID string, date time.Time) {
	p.journal = append(p.journal, LoanEvent{
		Seq:    len(p.journal) + 1,
		UserID: userID,
		ItemID: itemID,
		Action: action,
		Date:   date,
	})
}

// daysBetween counts whole calendar days from a to b. Dates parsed from the
// input files sit at UTC midnight, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
