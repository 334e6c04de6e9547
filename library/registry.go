package library

import "sort"

// Library is the owning registry for users and items. Cross-references
// (item to borrower, user to borrowed-set) are id-based; nothing outside the
// registry holds pointers between the two arenas.
type Library struct {
	users   []*User
	items   []*Item
	userIdx map[string]int
	itemIdx map[string]int

	// borrowed maps a user id to the ids of items currently held, in
	// borrow order.
	borrowed map[string][]string

	// blocked holds users refused further borrowing over unpaid penalty.
	blocked map[string]struct{}
}

// NewLibrary returns an empty registry.
func NewLibrary() *Library {
	return &Library{
		userIdx:  make(map[string]int),
		itemIdx:  make(map[string]int),
		borrowed: make(map[string][]string),
		blocked:  make(map[string]struct{}),
	}
}

// AddUser registers a user and initializes their borrowed-set.
func (l *Library) AddUser(u *User) {
	l.userIdx[u.ID] = len(l.users)
	l.users = append(l.users, u)
	l.borrowed[u.ID] = []string{}
}

// AddItem registers a catalog item.
func (l *Library) AddItem(it *Item) {
	l.itemIdx[it.ID] = len(l.items)
	l.items = append(l.items, it)
}

// UserByID returns the user with the given id, or nil.
func (l *Library) UserByID(id string) *User {
	if i, ok := l.userIdx[id]; ok {
		return l.users[i]
	}
	return nil
}

// ItemByID returns the item with the given id, or nil.
func (l *Library) ItemByID(id string) *Item {
	if i, ok := l.itemIdx[id]; ok {
		return l.items[i]
	}
	return nil
}

// Held returns the ids of items currently held by the user, in borrow order.
func (l *Library) Held(userID string) []string {
	return l.borrowed[userID]
}

// IsBlocked reports whether the user is currently penalty-blocked.
func (l *Library) IsBlocked(userID string) bool {
	_, ok := l.blocked[userID]
	return ok
}

// UsersSorted returns the users ordered by id ascending.
func (l *Library) UsersSorted() []*User {
	out := make([]*User, len(l.users))
	copy(out, l.users)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ItemsSorted returns the items ordered by id ascending.
func (l *Library) ItemsSorted() []*Item {
	out := make([]*Item, len(l.items))
	copy(out, l.items)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Users returns all users in load order.
func (l *Library) Users() []*User { return l.users }

// Items returns all items in load order.
func (l *Library) Items() []*Item { return l.items }

func (l *Library) block(userID string)   { l.blocked[userID] = struct{}{} }
func (l *Library) unblock(userID string) { delete(l.blocked, userID) }

func (l *Library) addHeld(userID, itemID string) {
	l.borrowed[userID] = append(l.borrowed[userID], itemID)
}

func (l *Library) removeHeld(userID, itemID string) bool {
	held := l.borrowed[userID]
	for i, id := range held {
		if id == itemID {
			l.borrowed[userID] = append(held[:i], held[i+1:]...)
			return true
		}
	}
	return false
}
