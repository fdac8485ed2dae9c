package taxonomy

import "github.com/google/uuid"

// Membership answers which active categories exist and which active category
// each active option belongs to.
type Membership struct {
	categories     map[uuid.UUID]struct{}
	optionCategory map[uuid.UUID]uuid.UUID
}

func NewMembership(categories []CategoryDTO) Membership {
	m := Membership{
		categories:     make(map[uuid.UUID]struct{}, len(categories)),
		optionCategory: make(map[uuid.UUID]uuid.UUID),
	}
	for _, category := range categories {
		m.categories[category.ID] = struct{}{}
		for _, opt := range category.Options {
			m.optionCategory[opt.ID] = category.ID
		}
	}
	return m
}

func (m Membership) HasCategory(id uuid.UUID) bool {
	_, ok := m.categories[id]
	return ok
}

// CategoryOf returns the category owning an active option.
func (m Membership) CategoryOf(optionID uuid.UUID) (uuid.UUID, bool) {
	categoryID, ok := m.optionCategory[optionID]
	return categoryID, ok
}
