// Package persistence stores analysis run history.
package persistence

import (
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
)

// NewRunRepository returns the repository matching the connection's driver.
func NewRunRepository(conn database.Connection) (analysis.Repository, error) {
	switch conn.Driver() {
	case database.DriverSQLite:
		return NewSQLiteRunRepository(conn), nil
	case database.DriverPostgres:
		return NewPostgresRunRepository(conn), nil
	default:
		return nil, fmt.Errorf("no run repository for driver %s", conn.Driver())
	}
}
