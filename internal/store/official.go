package store

import (
	"context"
	"database/sql"

	"github.com/brgy-records/apiserver/types"
)

var officialColumns = []string{
	"id", "position", "name", "title", "committee", "position_order", "created_at", "updated_at",
}

func scanOfficial(row rowScanner) (types.Official, error) {
	var o types.Official
	err := row.Scan(&o.ID, &o.Position, &o.Name, &o.Title, &o.Committee, &o.PositionOrder, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// OfficialRepository handles persistence for council seats.
type OfficialRepository struct {
	table *Table[types.Official]
}

func NewOfficialRepository(db *sql.DB) *OfficialRepository {
	return &OfficialRepository{table: NewTable(db, "officials", officialColumns, scanOfficial)}
}

// List returns every seat in letterhead order.
func (r *OfficialRepository) List(ctx context.Context) ([]types.Official, error) {
	return r.table.FindWhere(ctx, nil, Options{OrderBy: "position_order"})
}

func (r *OfficialRepository) Get(ctx context.Context, id int) (types.Official, error) {
	return r.table.FindByID(ctx, id)
}

// Update changes the holder of a seat. position_order is not updatable.
func (r *OfficialRepository) Update(ctx context.Context, id int, official types.Official) (types.Official, error) {
	ok, err := r.table.Update(ctx, id, Fields{
		"position":  official.Position,
		"name":      official.Name,
		"title":     official.Title,
		"committee": official.Committee,
	})
	if err != nil {
		return types.Official{}, err
	}
	if !ok {
		return types.Official{}, ErrNotFound
	}
	return r.table.FindByID(ctx, id)
}
