package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"column-tracker/internal/common"
	"column-tracker/internal/database/dbtest"
	"column-tracker/internal/models"
	"column-tracker/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func userCtx() context.Context {
	return session.WithIdentity(context.Background(), session.Identity{UserID: 1, EmployeeID: "E1"})
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.New(t).DB, zap.NewNop())
}

func input(serial string) ColumnInput {
	return ColumnInput{
		SerialNumber: serial,
		Reference:    "REF-1",
		Supplier:     "Acme",
		Dimension:    "4.6x150mm",
		Chemistry:    "C18",
	}
}

func ptr[T any](v T) *T { return &v }

func TestRegisterColumn_SequentialNumbers(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	next, err := s.NextColumnNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	first, err := s.RegisterColumn(ctx, input("S100"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ColumnNumber)

	second, err := s.RegisterColumn(ctx, input("S101"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ColumnNumber)

	for i := 3; i <= 10; i++ {
		col, err := s.RegisterColumn(ctx, input(fmt.Sprintf("S%d", 100+i)))
		require.NoError(t, err)
		assert.Equal(t, i, col.ColumnNumber)
	}

	next, err = s.NextColumnNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, next)
}

func TestRegisterColumn_FailuresLeaveNoGap(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	_, err := s.RegisterColumn(ctx, input("S100"))
	require.NoError(t, err)

	_, err = s.RegisterColumn(ctx, input("S100"))
	assert.ErrorIs(t, err, common.ErrConflict)

	blank := input("S200")
	blank.Chemistry = "   "
	_, err = s.RegisterColumn(ctx, blank)
	assert.ErrorIs(t, err, common.ErrValidationEmpty)

	var count int64
	s.db.Model(&models.Column{}).Count(&count)
	assert.Equal(t, int64(1), count)

	col, err := s.RegisterColumn(ctx, input("S101"))
	require.NoError(t, err)
	assert.Equal(t, 2, col.ColumnNumber)
}

func TestRegisterColumn_RequiresLogin(t *testing.T) {
	s := newService(t)
	_, err := s.RegisterColumn(context.Background(), input("S1"))
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestRegisterColumn_Concurrent(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	const n = 30
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		nums []int
		errs []error
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			col, err := s.RegisterColumn(ctx, input(fmt.Sprintf("C%03d", i)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			nums = append(nums, col.ColumnNumber)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	slices.Sort(nums)
	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, nums, "numbers must be 1..n without duplicates or gaps")
}

func TestRegisterColumn_ConcurrentSameSerial(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
		other     []error
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RegisterColumn(ctx, input("DUP"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, common.ErrConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	next, err := s.NextColumnNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestInsertColumn_DuplicateSerialIsConflict(t *testing.T) {
	s := newService(t)

	_, err := s.RegisterColumn(userCtx(), input("S100"))
	require.NoError(t, err)

	// вставка мимо проверки серийника: дубль ловит уникальный индекс
	dup := models.Column{
		SerialNumber: "S100", Reference: "R", Supplier: "Acme",
		Dimension: "2.1x50mm", Chemistry: "C8", ColumnNumber: 99,
	}
	err = insertColumn(s.db, &dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestRegisterColumn_TrimsFields(t *testing.T) {
	s := newService(t)
	in := input("  S7 ")
	in.Supplier = " Acme "

	col, err := s.RegisterColumn(userCtx(), in)
	require.NoError(t, err)
	assert.Equal(t, "S7", col.SerialNumber)
	assert.Equal(t, "Acme", col.Supplier)
	assert.False(t, col.IsObsolete)
}

func TestModifyColumn(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	orig, err := s.RegisterColumn(ctx, input("S100"))
	require.NoError(t, err)

	patch := ColumnPatch{
		Supplier:   ptr("Waters"),
		Chemistry:  ptr("C8"),
		IsObsolete: ptr(true),
	}
	updated, err := s.ModifyColumn(ctx, 1, patch)
	require.NoError(t, err)

	assert.Equal(t, "Waters", updated.Supplier)
	assert.Equal(t, "C8", updated.Chemistry)
	assert.True(t, updated.IsObsolete)
	// не входившие в patch поля не меняются
	assert.Equal(t, orig.Reference, updated.Reference)
	assert.Equal(t, orig.Dimension, updated.Dimension)
	assert.Equal(t, orig.SerialNumber, updated.SerialNumber)
	assert.Equal(t, orig.ColumnNumber, updated.ColumnNumber)

	reread, err := s.GetColumn(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated.Supplier, reread.Supplier)
	assert.Equal(t, updated.IsObsolete, reread.IsObsolete)

	again, err := s.ModifyColumn(ctx, 1, patch)
	require.NoError(t, err)
	assert.Equal(t, reread.Reference, again.Reference)
	assert.Equal(t, reread.Supplier, again.Supplier)
	assert.Equal(t, reread.Dimension, again.Dimension)
	assert.Equal(t, reread.Chemistry, again.Chemistry)
	assert.Equal(t, reread.IsObsolete, again.IsObsolete)

	restored, err := s.ModifyColumn(ctx, 1, ColumnPatch{IsObsolete: ptr(false)})
	require.NoError(t, err)
	assert.False(t, restored.IsObsolete)
	assert.Equal(t, "Waters", restored.Supplier)
}

func TestModifyColumn_Errors(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	_, err := s.ModifyColumn(ctx, 99, ColumnPatch{Supplier: ptr("X")})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.RegisterColumn(ctx, input("S100"))
	require.NoError(t, err)

	_, err = s.ModifyColumn(ctx, 1, ColumnPatch{Reference: ptr("  ")})
	assert.ErrorIs(t, err, common.ErrValidationEmpty)

	col, err := s.GetColumn(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "REF-1", col.Reference)

	_, err = s.ModifyColumn(context.Background(), 1, ColumnPatch{})
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestListColumns_IncludesObsolete(t *testing.T) {
	s := newService(t)
	ctx := userCtx()

	for _, sn := range []string{"S1", "S2", "S3"} {
		_, err := s.RegisterColumn(ctx, input(sn))
		require.NoError(t, err)
	}
	_, err := s.ModifyColumn(ctx, 2, ColumnPatch{IsObsolete: ptr(true)})
	require.NoError(t, err)

	cols, err := s.ListColumns(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{cols[0].ColumnNumber, cols[1].ColumnNumber, cols[2].ColumnNumber})
	assert.True(t, cols[1].IsObsolete)
}
