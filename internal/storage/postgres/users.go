package postgres

import (
	"database/sql"
	"errors"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

func (s *Store) AddUser(user models.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, name, email, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			active = EXCLUDED.active`,
		user.ID, user.Name, user.Email, user.Active, user.CreatedAt.UTC(),
	)
	return err
}

func (s *Store) GetUser(id string) (models.User, error) {
	row := s.db.QueryRow(`
		SELECT id, name, email, active, created_at
		FROM users WHERE id = $1`, id)

	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperrors.NotFoundf("user %s", id)
		}
		return models.User{}, err
	}
	u.CreatedAt = u.CreatedAt.Local()

	return u, nil
}

func (s *Store) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT id, name, email, active, created_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.Local()
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) AddCategory(category models.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, name, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color`,
		category.ID, category.Name, category.Color,
	)
	return err
}

func (s *Store) GetAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
