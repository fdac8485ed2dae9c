package needs

import (
	"time"

	"github.com/google/uuid"
)

type NeedDTO struct {
	ID          uuid.UUID  `json:"id"`
	Category    TaxonRef   `json:"category"`
	Options     []TaxonRef `json:"options"`
	ContextText *string    `json:"contextText"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaxonRef is the display form of a category or option.
type TaxonRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type ProjectNeedsDTO struct {
	ProjectID uuid.UUID `json:"projectId"`
	Needs     []NeedDTO `json:"needs"`
}

// groupRows folds the joined (need, option) rows into one DTO per need,
// keeping the row order of the query.
func groupRows(projectID uuid.UUID, rows []needRow) *ProjectNeedsDTO {
	out := &ProjectNeedsDTO{ProjectID: projectID, Needs: []NeedDTO{}}
	index := make(map[uuid.UUID]int, MaxCategories)
	for _, row := range rows {
		i, ok := index[row.NeedID]
		if !ok {
			i = len(out.Needs)
			index[row.NeedID] = i
			out.Needs = append(out.Needs, NeedDTO{
				ID: row.NeedID,
				Category: TaxonRef{
					ID:   row.CategoryID,
					Name: row.CategoryName,
					Slug: row.CategorySlug,
				},
				Options:     []TaxonRef{},
				ContextText: row.ContextText,
				UpdatedAt:   row.UpdatedAt,
			})
		}
		if row.OptionID == nil {
			continue
		}
		option := TaxonRef{ID: *row.OptionID}
		if row.OptionName != nil {
			option.Name = *row.OptionName
		}
		if row.OptionSlug != nil {
			option.Slug = *row.OptionSlug
		}
		out.Needs[i].Options = append(out.Needs[i].Options, option)
	}
	return out
}
