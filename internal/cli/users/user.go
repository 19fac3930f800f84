package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
)

type UserAddCmd struct {
	Name  string `arg:"" help:"Display name."`
	Email string `short:"e" help:"Email address."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("user name cannot be empty")
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     c.Email,
		Active:    true,
		CreatedAt: time.Now(),
	}

	if err := ctx.Store.AddUser(user); err != nil {
		return err
	}
	fmt.Printf("Added user %q (%s)\n", user.Name, user.ID)
	return nil
}

type UserListCmd struct{}

func (c *UserListCmd) Run(ctx *cli.Context) error {
	users, err := ctx.Store.GetAllUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users yet. Add one with 'routinely user add'.")
		return nil
	}

	for _, u := range users {
		state := "active"
		if !u.Active {
			state = "inactive"
		}
		fmt.Printf("%s  %-20s %-30s %s\n", u.ID, u.Name, u.Email, state)
	}
	return nil
}
