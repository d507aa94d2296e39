package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DepartmentRepository answers whether two departments belong to the same
// configured related-department group (e.g. a merged or renamed department
// whose majors still count for each other). The group table is tiny and
// read-only, so it is cached once on first use.
type DepartmentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger

	once    sync.Once
	loadErr error
	mu      sync.RWMutex
	groups  map[int64][]int64 // department id -> group ids
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB, logger *zap.Logger) *DepartmentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentRepository{db: db, logger: logger}
}

type departmentGroupRow struct {
	GroupID      int64 `db:"group_id"`
	DepartmentID int64 `db:"department_id"`
}

func (r *DepartmentRepository) populate(ctx context.Context) {
	const query = `SELECT group_id, department_id FROM related_department_groups`
	var rows []departmentGroupRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.loadErr = fmt.Errorf("load related department groups: %w", err)
		return
	}
	groups := make(map[int64][]int64)
	for _, row := range rows {
		groups[row.DepartmentID] = append(groups[row.DepartmentID], row.GroupID)
	}
	r.mu.Lock()
	r.groups = groups
	r.mu.Unlock()
	r.logger.Info("related department groups loaded", zap.Int("memberships", len(rows)))
}

// AreRelated reports whether the two departments share a group. Identical
// departments are always related; load failures degrade to unrelated.
func (r *DepartmentRepository) AreRelated(ctx context.Context, a, b int64) bool {
	if a == b {
		return true
	}
	r.once.Do(func() { r.populate(ctx) })
	if r.loadErr != nil {
		r.logger.Warn("department groups unavailable", zap.Error(r.loadErr))
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, groupA := range r.groups[a] {
		for _, groupB := range r.groups[b] {
			if groupA == groupB {
				return true
			}
		}
	}
	return false
}
