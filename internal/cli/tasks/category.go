package tasks

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/cli"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

type CategoryAddCmd struct {
	Name  string `arg:"" help:"Category name."`
	Color string `help:"Display color (hex or terminal color name)."`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return apperrors.Validationf("category name cannot be empty")
	}

	category := models.Category{
		ID:    uuid.NewString(),
		Name:  name,
		Color: c.Color,
	}
	if err := ctx.Store.AddCategory(category); err != nil {
		return err
	}
	fmt.Printf("Added category %q (%s)\n", category.Name, category.ID)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Println("No categories. Add one with 'routinely category add <name>'.")
		return nil
	}

	for _, cat := range categories {
		fmt.Printf("%s  %-20s %s\n", cat.ID, cat.Name, cat.Color)
	}
	return nil
}
