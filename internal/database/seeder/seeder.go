package seeder

import (
	"context"

	"competence-exchange/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
