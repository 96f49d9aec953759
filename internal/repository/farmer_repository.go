package repository

import (
	"context"
	"database/sql"

	"github.com/agritrack/farm-records/internal/model"
)

// FarmerRepo reads and writes rows of the 'farmers' table. Read queries join
// farm_types and crops so responses carry the referenced names.
type FarmerRepo struct{ DB *sql.DB }

func NewFarmerRepo(db *sql.DB) *FarmerRepo { return &FarmerRepo{DB: db} }

const farmerSelect = `SELECT f.id, f.name, f.national_id, f.location, f.farm_type_id, f.crop_id, ft.name, c.name
FROM farmers f
JOIN farm_types ft ON ft.id = f.farm_type_id
JOIN crops c ON c.id = f.crop_id`

// Create inserts a farmer and returns its ID. A missing farm type or crop
// reference is reported as ErrForeignKey, a duplicate national_id as
// ErrDuplicate.
func (r *FarmerRepo) Create(ctx context.Context, f *model.Farmer) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO farmers (name, national_id, location, farm_type_id, crop_id) VALUES (?,?,?,?,?)",
		f.Name, f.NationalID, f.Location, f.FarmTypeID, f.CropID)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		if isForeignKeyErr(err) {
			return ErrForeignKey
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID fetches a farmer with the joined farm type and crop names.
func (r *FarmerRepo) GetByID(ctx context.Context, id uint64) (model.FarmerDetail, error) {
	var d model.FarmerDetail
	err := r.DB.QueryRowContext(ctx, farmerSelect+" WHERE f.id=? LIMIT 1", id).
		Scan(&d.ID, &d.Name, &d.NationalID, &d.Location, &d.FarmTypeID, &d.CropID,
			&d.FarmTypeName, &d.CropName)
	if err == sql.ErrNoRows {
		return model.FarmerDetail{}, ErrNotFound
	}
	return d, err
}

// List returns all farmers with joined names, ordered by name.
func (r *FarmerRepo) List(ctx context.Context) ([]model.FarmerDetail, error) {
	rows, err := r.DB.QueryContext(ctx, farmerSelect+" ORDER BY f.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FarmerDetail
	for rows.Next() {
		var d model.FarmerDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.NationalID, &d.Location,
			&d.FarmTypeID, &d.CropID, &d.FarmTypeName, &d.CropName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites the fields of a farmer.
func (r *FarmerRepo) Update(ctx context.Context, f model.Farmer) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE farmers SET name=?, national_id=?, location=?, farm_type_id=?, crop_id=? WHERE id=?",
		f.Name, f.NationalID, f.Location, f.FarmTypeID, f.CropID, f.ID)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		if isForeignKeyErr(err) {
			return ErrForeignKey
		}
		return err
	}
	return checkAffected(res)
}

// Delete removes a farmer by id.
func (r *FarmerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM farmers WHERE id=?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
