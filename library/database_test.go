package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempArchive(t *testing.T) *Archive {
	t.Helper()
	dir := t.TempDir()
	a, err := OpenArchive(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleResult(t *testing.T) *RunResult {
	t.Helper()
	lib := NewLibrary()
	s := student("S1", "Alice")
	s.Penalty = 2
	lib.AddUser(s)
	b := book("B1", "Dune")
	b.Borrowed = true
	b.BorrowedBy = "S1"
	b.BorrowedDate = mustDate(t, "01/01/2025")
	lib.AddItem(b)
	lib.addHeld("S1", "B1")
	lib.AddItem(&Item{ID: "D1", Title: "Metropolis", Category: CategoryDVD, Kind: "limited",
		Attrs: DVDAttrs{Director: "Fritz Lang", Category: "SciFi", Runtime: 153}})

	started := time.Now().Add(-time.Second)
	return &RunResult{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Stats:      Stats{Commands: 3, Borrows: 2, Returns: 1},
		Journal: []LoanEvent{
			{Seq: 1, UserID: "S1", ItemID: "B1", Action: ActionBorrow, Date: mustDate(t, "01/01/2025")},
			{Seq: 2, UserID: "S1", ItemID: "D1", Action: ActionBorrow, Date: mustDate(t, "02/01/2025")},
			{Seq: 3, UserID: "S1", ItemID: "D1", Action: ActionReturn, Date: mustDate(t, "02/01/2025")},
		},
		Library: lib,
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	a := tempArchive(t)
	dir := t.TempDir()
	itemsFile := writeFile(t, dir, "items.txt", "B,B1,Dune,Frank Herbert,SciFi,normal\n")
	usersFile := writeFile(t, dir, "users.txt", "S,Alice,S1,555-0100,CS,Engineering,3\n")
	commandsFile := writeFile(t, dir, "commands.txt", "borrow,S1,B1,01/01/2025\n")

	res := sampleResult(t)
	rec := NewRunRecord(itemsFile, usersFile, commandsFile, res)
	require.NotEmpty(t, rec.ID)
	require.NotEmpty(t, rec.ItemsFP)
	require.NoError(t, a.SaveRun(rec, res))

	runs, err := a.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rec.ID, runs[0].ID)
	assert.Equal(t, 3, runs[0].CommandCount)
	assert.Equal(t, rec.CommandsFP, runs[0].CommandsFP)

	loans, err := a.Loans(rec.ID)
	require.NoError(t, err)
	require.Len(t, loans, 3)
	assert.Equal(t, 1, loans[0].Seq)
	assert.Equal(t, string(ActionBorrow), loans[0].Action)
	assert.Equal(t, "01/01/2025", loans[0].EventDate)
	assert.Equal(t, string(ActionReturn), loans[2].Action)
}

func TestArchiveMultipleRunsNewestFirst(t *testing.T) {
	a := tempArchive(t)
	dir := t.TempDir()
	f := writeFile(t, dir, "f.txt", "x\n")

	first := sampleResult(t)
	second := sampleResult(t)
	second.StartedAt = first.StartedAt.Add(time.Minute)
	second.FinishedAt = second.StartedAt.Add(time.Second)

	recFirst := NewRunRecord(f, f, f, first)
	recSecond := NewRunRecord(f, f, f, second)
	require.NoError(t, a.SaveRun(recFirst, first))
	require.NoError(t, a.SaveRun(recSecond, second))

	runs, err := a.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, recSecond.ID, runs[0].ID)
	assert.Equal(t, recFirst.ID, runs[1].ID)

	// Same input file, same fingerprint across runs.
	assert.Equal(t, runs[0].CommandsFP, runs[1].CommandsFP)
}

func TestFingerprintFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "borrow,S1,B1,01/01/2025\n")
	b := writeFile(t, dir, "b.txt", "borrow,S1,B1,01/01/2025\n")
	c := writeFile(t, dir, "c.txt", "pay,S1\n")

	fpA, err := FingerprintFile(a)
	require.NoError(t, err)
	fpB, err := FingerprintFile(b)
	require.NoError(t, err)
	fpC, err := FingerprintFile(c)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
	assert.NotEqual(t, fpA, fpC)
	assert.Len(t, fpA, 64)

	_, err = FingerprintFile(dir + "/missing.txt")
	assert.Error(t, err)
}
