package store

import (
	"strings"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/notify"
)

type CategoryDraft struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type CategoryPatch struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

func (s *Store) CreateCategory(d CategoryDraft) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return model.Category{}, s.reject(invalid("category name is required"))
	}
	c := model.Category{
		ID:    model.NewID("cat"),
		Name:  name,
		Icon:  orDefault(d.Icon, "Star"),
		Color: orDefault(d.Color, "bg-blue-500"),
	}
	s.commitCategories(append(append([]model.Category{}, s.categories...), c))
	notify.Success(s.notifier, "Category created", c.Name)
	s.appendLog("Category created", "Created category: "+c.Name, nil)
	return c, nil
}

func (s *Store) UpdateCategory(id string, p CategoryPatch) (model.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, idx, found := model.FindCategory(s.categories, id)
	if !found {
		return model.Category{}, false, nil
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return model.Category{}, true, s.reject(invalid("category name is required"))
		}
		c.Name = name
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}

	next := append([]model.Category{}, s.categories...)
	next[idx] = c
	s.commitCategories(next)
	notify.Success(s.notifier, "Category updated", c.Name)
	s.appendLog("Category updated", "Updated category: "+c.Name, nil)
	return c, true, nil
}

// DeleteCategory does not cascade: tasks keep the dangling category id.
func (s *Store) DeleteCategory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, found := model.FindCategory(s.categories, id)
	if !found {
		return false
	}
	next := make([]model.Category, 0, len(s.categories))
	for _, x := range s.categories {
		if x.ID != id {
			next = append(next, x)
		}
	}
	s.commitCategories(next)
	notify.Success(s.notifier, "Category deleted", c.Name)
	s.appendLog("Category deleted", "Deleted category: "+c.Name, activity.CategoryDelete{Category: c})
	return true
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
