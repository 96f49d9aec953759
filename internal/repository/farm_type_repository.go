package repository

import (
	"context"
	"database/sql"

	"github.com/agritrack/farm-records/internal/model"
)

// FarmTypeRepo reads and writes rows of the 'farm_types' table.
type FarmTypeRepo struct{ DB *sql.DB }

func NewFarmTypeRepo(db *sql.DB) *FarmTypeRepo { return &FarmTypeRepo{DB: db} }

// Create inserts a farm type and returns its ID.
func (r *FarmTypeRepo) Create(ctx context.Context, ft *model.FarmType) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO farm_types (name, description) VALUES (?,?)",
		ft.Name, ft.Description)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ft.ID = uint64(id)
	return nil
}

// GetByID fetches a farm type by id.
func (r *FarmTypeRepo) GetByID(ctx context.Context, id uint64) (model.FarmType, error) {
	var ft model.FarmType
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description FROM farm_types WHERE id=? LIMIT 1",
		id).Scan(&ft.ID, &ft.Name, &ft.Description)
	if err == sql.ErrNoRows {
		return model.FarmType{}, ErrNotFound
	}
	return ft, err
}

// List returns all farm types ordered by name.
func (r *FarmTypeRepo) List(ctx context.Context) ([]model.FarmType, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description FROM farm_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FarmType
	for rows.Next() {
		var ft model.FarmType
		if err := rows.Scan(&ft.ID, &ft.Name, &ft.Description); err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

// Update rewrites name and description of a farm type.
func (r *FarmTypeRepo) Update(ctx context.Context, ft model.FarmType) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE farm_types SET name=?, description=? WHERE id=?",
		ft.Name, ft.Description, ft.ID)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return checkAffected(res)
}

// Delete removes a farm type. Farmers referencing it block the delete via
// the foreign key, surfaced as ErrForeignKey.
func (r *FarmTypeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM farm_types WHERE id=?", id)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrForeignKey
		}
		return err
	}
	return checkAffected(res)
}
