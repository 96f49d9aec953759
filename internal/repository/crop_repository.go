package repository

import (
	"context"
	"database/sql"

	"github.com/agritrack/farm-records/internal/model"
)

// CropRepo reads and writes rows of the 'crops' table.
type CropRepo struct{ DB *sql.DB }

func NewCropRepo(db *sql.DB) *CropRepo { return &CropRepo{DB: db} }

// Create inserts a crop and returns its ID.
func (r *CropRepo) Create(ctx context.Context, c *model.Crop) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO crops (name, description, image) VALUES (?,?,?)",
		c.Name, c.Description, c.Image)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a crop by id.
func (r *CropRepo) GetByID(ctx context.Context, id uint64) (model.Crop, error) {
	var c model.Crop
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description,image FROM crops WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Description, &c.Image)
	if err == sql.ErrNoRows {
		return model.Crop{}, ErrNotFound
	}
	return c, err
}

// List returns all crops ordered by name.
func (r *CropRepo) List(ctx context.Context) ([]model.Crop, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description,image FROM crops ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Crop
	for rows.Next() {
		var c model.Crop
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Image); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the fields of a crop.
func (r *CropRepo) Update(ctx context.Context, c model.Crop) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE crops SET name=?, description=?, image=? WHERE id=?",
		c.Name, c.Description, c.Image, c.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// Delete removes a crop. Farmers referencing it block the delete.
func (r *CropRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM crops WHERE id=?", id)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrForeignKey
		}
		return err
	}
	return checkAffected(res)
}
