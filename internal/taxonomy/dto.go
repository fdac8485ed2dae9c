package taxonomy

import (
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/google/uuid"
)

type CategoryDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Slug      string      `json:"slug"`
	SortOrder int         `json:"sortOrder"`
	Options   []OptionDTO `json:"options"`
}

type OptionDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SortOrder int       `json:"sortOrder"`
}

func categoriesFromModels(rows []models.NeedCategory) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		category := CategoryDTO{
			ID:        row.ID,
			Name:      row.Name,
			Slug:      row.Slug,
			SortOrder: row.SortOrder,
			Options:   make([]OptionDTO, 0, len(row.Options)),
		}
		for _, opt := range row.Options {
			category.Options = append(category.Options, OptionDTO{
				ID:        opt.ID,
				Name:      opt.Name,
				Slug:      opt.Slug,
				SortOrder: opt.SortOrder,
			})
		}
		out = append(out, category)
	}
	return out
}
