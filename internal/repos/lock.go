package repos

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockedQuery prepares tx for a bounded-wait SELECT ... FOR UPDATE. The
// lock_timeout is SET LOCAL, so it lasts exactly as long as the attempt
// transaction. The sqlite dev driver has no row locks; its whole-database
// write lock stands in, so no clause is added there.
func lockedQuery(ctx context.Context, tx *gorm.DB, timeout time.Duration) (*gorm.DB, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() != "postgres" {
		return q, nil
	}
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	if err := q.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)).Error; err != nil {
		return nil, err
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"}), nil
}
