package sqlite

import (
	"database/sql"
	"errors"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

func (s *Store) AddUser(user models.User) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO users (id, name, email, active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.Active, formatTime(user.CreatedAt),
	)
	return err
}

func (s *Store) GetUser(id string) (models.User, error) {
	row := s.db.QueryRow(`
		SELECT id, name, email, active, created_at
		FROM users WHERE id = ?`, id)

	var u models.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Active, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperrors.NotFoundf("user %s", id)
		}
		return models.User{}, err
	}
	u.CreatedAt = parseTime(createdAt)

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
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Active, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(createdAt)
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) AddCategory(category models.Category) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO categories (id, name, color)
		VALUES (?, ?, ?)`,
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
