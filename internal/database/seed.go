package database

import (
	"context"
	"fmt"
	"time"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"

	"github.com/rs/zerolog/log"
)

// SeedDemo populates an empty catalog with a few categories, tags and products.
// It does nothing when any product already exists.
func SeedDemo(
	ctx context.Context,
	products repositories.ProductRepository,
	categories repositories.CategoryRepository,
	tags repositories.TagRepository,
) error {
	_, total, err := products.List(ctx, repositories.ProductQuery{Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	existingCategories, err := categories.List(ctx)
	if err != nil {
		return err
	}
	categoryByName := map[string]*models.Category{}
	for i := range existingCategories {
		categoryByName[existingCategories[i].Name] = &existingCategories[i]
	}
	for _, name := range []string{"Computers", "Peripherals"} {
		if _, ok := categoryByName[name]; ok {
			continue
		}
		c := &models.Category{Name: name}
		if err := categories.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
		categoryByName[name] = c
	}
	computers, peripherals := categoryByName["Computers"], categoryByName["Peripherals"]

	existingTags, err := tags.List(ctx)
	if err != nil {
		return err
	}
	tagByName := map[string]models.Tag{}
	for _, t := range existingTags {
		tagByName[t.Name] = t
	}
	for _, name := range []string{"gaming", "wireless"} {
		if _, ok := tagByName[name]; ok {
			continue
		}
		t := &models.Tag{Name: name}
		if err := tags.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed tag %s: %w", name, err)
		}
		tagByName[name] = *t
	}
	gaming, wireless := tagByName["gaming"], tagByName["wireless"]

	now := time.Now().UTC()
	seeded := []struct {
		product models.Product
		tags    []models.Tag
	}{
		{models.Product{Name: "Laptop", Price: 120000, Status: models.StatusInStock, CategoryID: &computers.ID, CreatedAt: now.AddDate(0, 0, -30)}, nil},
		{models.Product{Name: "Keyboard", Price: 7500, Status: models.StatusSoldOut, CategoryID: &peripherals.ID, CreatedAt: now.AddDate(0, 0, -7)}, []models.Tag{gaming}},
		{models.Product{Name: "Mouse", Price: 2500, Status: models.StatusComingSoon, CategoryID: &peripherals.ID, CreatedAt: now}, []models.Tag{wireless, gaming}},
	}
	for i := range seeded {
		p := &seeded[i].product
		if err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		if err := products.AttachTags(ctx, p.ID, seeded[i].tags); err != nil {
			return err
		}
		log.Info().Str("product", p.Name).Str("id", p.ID).Msg("seeded product")
	}
	return nil
}
