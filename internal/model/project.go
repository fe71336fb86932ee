package model

import "sort"

// DefaultProjectID is the root project that can never be deleted.
const DefaultProjectID = "default"

type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Order     int    `json:"order"`
}

type Project struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	Color    string    `json:"color"`
	Sections []Section `json:"sections"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func DefaultProject() Project {
	return Project{
		ID:       DefaultProjectID,
		Name:     "Main project",
		Icon:     "Folder",
		Color:    "bg-blue-500",
		Sections: []Section{},
	}
}

func (p Project) Clone() Project {
	p.Sections = append([]Section{}, p.Sections...)
	return p
}

func (p Project) Section(id string) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SortedSections orders by Order, falling back to array position on ties.
func (p Project) SortedSections() []Section {
	out := append([]Section{}, p.Sections...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// NextSectionOrder is one past the highest order in use (1 for an empty project).
func (p Project) NextSectionOrder() int {
	max := 0
	for _, s := range p.Sections {
		if s.Order > max {
			max = s.Order
		}
	}
	return max + 1
}

func CloneProjects(ps []Project) []Project {
	out := make([]Project, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func FindProject(ps []Project, id string) (Project, int, bool) {
	for i, p := range ps {
		if p.ID == id {
			return p, i, true
		}
	}
	return Project{}, -1, false
}

// FindSection searches every project for the section.
func FindSection(ps []Project, id string) (Section, Project, bool) {
	for _, p := range ps {
		if s, ok := p.Section(id); ok {
			return s, p, true
		}
	}
	return Section{}, Project{}, false
}

func FindCategory(cs []Category, id string) (Category, int, bool) {
	for i, c := range cs {
		if c.ID == id {
			return c, i, true
		}
	}
	return Category{}, -1, false
}
