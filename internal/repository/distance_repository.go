package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DistanceRepository serves campus walking times between buildings. The pair
// matrix is loaded once on first use and then only read, so concurrent
// generation requests share it safely.
type DistanceRepository struct {
	db             *sqlx.DB
	logger         *zap.Logger
	defaultMinutes int

	once    sync.Once
	loadErr error
	mu      sync.RWMutex
	matrix  map[buildingPair]int
}

type buildingPair struct {
	From string
	To   string
}

// NewDistanceRepository constructs the repository. defaultMinutes applies to
// building pairs absent from the matrix.
func NewDistanceRepository(db *sqlx.DB, defaultMinutes int, logger *zap.Logger) *DistanceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistanceRepository{db: db, logger: logger, defaultMinutes: defaultMinutes}
}

type distanceRow struct {
	FromCode    string `db:"from_code"`
	ToCode      string `db:"to_code"`
	WalkMinutes int    `db:"walk_minutes"`
}

func (r *DistanceRepository) populate(ctx context.Context) {
	const query = `SELECT from_code, to_code, walk_minutes FROM building_distances`
	var rows []distanceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.loadErr = fmt.Errorf("load building distances: %w", err)
		return
	}
	matrix := make(map[buildingPair]int, len(rows)*2)
	for _, row := range rows {
		matrix[buildingPair{From: row.FromCode, To: row.ToCode}] = row.WalkMinutes
		matrix[buildingPair{From: row.ToCode, To: row.FromCode}] = row.WalkMinutes
	}
	r.mu.Lock()
	r.matrix = matrix
	r.mu.Unlock()
	r.logger.Info("building distance matrix loaded", zap.Int("pairs", len(rows)))
}

// WalkMinutes returns the walking time between two building codes,
// populating the matrix on first call. Unknown pairs and load failures fall
// back to the configured default rather than failing the request.
func (r *DistanceRepository) WalkMinutes(ctx context.Context, from, to string) int {
	if from == "" || to == "" || from == to {
		return 0
	}
	r.once.Do(func() { r.populate(ctx) })
	if r.loadErr != nil {
		r.logger.Warn("distance matrix unavailable, using default", zap.Error(r.loadErr))
		return r.defaultMinutes
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if minutes, ok := r.matrix[buildingPair{From: from, To: to}]; ok {
		return minutes
	}
	return r.defaultMinutes
}
