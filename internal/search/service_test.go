package search

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"column-tracker/internal/database/dbtest"
	"column-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	users map[string]models.User
	cols  map[int]models.Column
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t).DB
	f := &fixture{
		db:    db,
		svc:   NewService(db, zap.NewNop()),
		users: map[string]models.User{},
		cols:  map[int]models.Column{},
	}

	for _, u := range []models.User{
		{Name: "Ann", EmployeeID: "E100"},
		{Name: "Bob", EmployeeID: "e100"},
		{Name: "Cid", EmployeeID: "E200"},
	} {
		require.NoError(t, db.Create(&u).Error)
		f.users[u.EmployeeID] = u
	}

	for _, c := range []models.Column{
		{SerialNumber: "S1", Reference: "REF-A", Supplier: "Acme", Dimension: "4.6x150", Chemistry: "C18", ColumnNumber: 1},
		{SerialNumber: "S2", Reference: "ref-b", Supplier: "Waters", Dimension: "2.1x50", Chemistry: "C8", ColumnNumber: 2},
		{SerialNumber: "S3", Reference: "REF-C", Supplier: "Acme", Dimension: "4.6x250", Chemistry: "C18", ColumnNumber: 12, IsObsolete: true},
	} {
		require.NoError(t, db.Create(&c).Error)
		f.cols[c.ColumnNumber] = c
	}
	return f
}

func (f *fixture) use(t *testing.T, emp string, number int, project string, day int) {
	t.Helper()
	e := models.UsageEntry{
		UserID:    f.users[emp].ID,
		ColumnID:  f.cols[number].ID,
		Project:   project,
		Technique: "HPLC",
		Date:      datatypes.Date(time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, f.db.Create(&e).Error)
}

func numbers(cols []models.Column) []int {
	out := []int{}
	for _, c := range cols {
		out = append(out, c.ColumnNumber)
	}
	return out
}

func TestSearchColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ColumnFilter
		want   []int
	}{
		{"no filters returns everything", ColumnFilter{}, []int{1, 2, 12}},
		{"number substring", ColumnFilter{ColumnNumber: "1"}, []int{1, 12}},
		{"chemistry substring", ColumnFilter{Chemistry: "C1"}, []int{1, 12}},
		{"filters are combined", ColumnFilter{Chemistry: "C18", Supplier: "Acme", ColumnNumber: "2"}, []int{12}},
		{"case sensitive", ColumnFilter{Reference: "REF"}, []int{1, 12}},
		{"case sensitive lower", ColumnFilter{Reference: "ref"}, []int{2}},
		{"blank filter ignored", ColumnFilter{Supplier: "   "}, []int{1, 2, 12}},
		{"no match", ColumnFilter{Supplier: "Phenomenex"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := f.svc.SearchColumns(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, numbers(cols))
		})
	}
}

func TestSearchByEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.use(t, "E100", 2, "P1", 1)
	f.use(t, "E100", 1, "P1", 2)
	f.use(t, "E100", 2, "P2", 3)
	f.use(t, "e100", 12, "P3", 4)

	ids, err := f.svc.SearchByEmployee(ctx, "E100")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f.cols[1].ID, f.cols[2].ID}, ids)

	ids, err = f.svc.SearchByEmployee(ctx, "E999")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// пользователь есть, но ничего не логировал
	cols, err := f.svc.SearchColumns(ctx, ColumnFilter{EmployeeID: "E200"})
	require.NoError(t, err)
	assert.Empty(t, cols)

	cols, err = f.svc.SearchColumns(ctx, ColumnFilter{EmployeeID: "e100"})
	require.NoError(t, err)
	assert.Equal(t, []int{12}, numbers(cols))

	cols, err = f.svc.SearchColumns(ctx, ColumnFilter{EmployeeID: "E100", Supplier: "Waters"})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, numbers(cols))
}

func TestUsageCountsAndInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.use(t, "E100", 1, "P1", 1)
	f.use(t, "E200", 1, "P2", 2)
	f.use(t, "E100", 12, "P1", 3)

	counts, err := f.svc.UsageCountByColumn(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{f.cols[1].ID: 2, f.cols[12].ID: 1}, counts)

	rows, err := f.svc.Inventory(ctx, ColumnFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), rows[0].TimesUsed)
	assert.Equal(t, int64(0), rows[1].TimesUsed)
	assert.Equal(t, int64(1), rows[2].TimesUsed)
	assert.Equal(t, "Obsolete", rows[2].Column.Status())

	usage, err := f.svc.UsageByColumnNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ColumnUsage{{ColumnNumber: 1, Count: 2}, {ColumnNumber: 12, Count: 1}}, usage)
}

func TestUsageHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.use(t, "E100", 2, "P1", 1)
	f.use(t, "E200", 1, "P2", 5)
	f.use(t, "E100", 1, "P3", 9)

	rows, err := f.svc.UsageHistory(ctx, []uint{f.cols[1].ID, f.cols[2].ID})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].ColumnNumber)
	assert.Equal(t, "P3", rows[0].Project)
	assert.Equal(t, "2026-01-09", rows[0].Date.Format("2006-01-02"))
	assert.Equal(t, "P2", rows[1].Project)
	assert.Equal(t, "E200", rows[1].EmployeeID)
	assert.Equal(t, 2, rows[2].ColumnNumber)

	rows, err = f.svc.UsageHistory(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	col := models.Column{SerialNumber: "S1", Supplier: "Acme, Inc", Chemistry: "C18", Dimension: "4.6x150", ColumnNumber: 1}
	require.NoError(t, WriteInventoryCSV(&buf, []InventoryRow{{Column: col, TimesUsed: 3}}))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Column Number", "Serial Number", "Supplier", "Chemistry", "Dimension", "Total Times Used", "Status"},
		{"1", "S1", "Acme, Inc", "C18", "4.6x150", "3", "Active"},
	}, recs)

	buf.Reset()
	require.NoError(t, WriteHistoryCSV(&buf, []HistoryRow{{
		ColumnNumber: 1, EmployeeID: "E100", Project: "P1",
		MobilePhaseA: "Water", MobilePhaseB: "MeCN", Technique: "HPLC",
		Date: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
	}}))
	recs, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, HistoryHeader, recs[0])
	assert.Equal(t, []string{"1", "E100", "P1", "Water", "MeCN", "HPLC", "2026-02-03"}, recs[1])
}
