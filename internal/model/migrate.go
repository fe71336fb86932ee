package model

// SectionRecord is a section as found in stored or remote data, where order
// may be missing.
type SectionRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Order     *int   `json:"order,omitempty"`
}

// ProjectRecord is a project whose sections may be missing or unordered.
type ProjectRecord struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"`
	Sections []SectionRecord `json:"sections"`
}

// Migrate fills a missing sections list with an empty one and a missing
// order with the section's 1-based position.
func (r ProjectRecord) Migrate() Project {
	p := Project{ID: r.ID, Name: r.Name, Icon: r.Icon, Color: r.Color, Sections: make([]Section, 0, len(r.Sections))}
	for i, s := range r.Sections {
		order := i + 1
		if s.Order != nil {
			order = *s.Order
		}
		projectID := s.ProjectID
		if projectID == "" {
			projectID = r.ID
		}
		p.Sections = append(p.Sections, Section{ID: s.ID, Name: s.Name, ProjectID: projectID, Order: order})
	}
	return p
}

func MigrateProjects(rs []ProjectRecord) []Project {
	out := make([]Project, len(rs))
	for i, r := range rs {
		out[i] = r.Migrate()
	}
	return out
}

// Record converts back to the storage shape.
func (p Project) Record() ProjectRecord {
	r := ProjectRecord{ID: p.ID, Name: p.Name, Icon: p.Icon, Color: p.Color, Sections: make([]SectionRecord, len(p.Sections))}
	for i, s := range p.Sections {
		order := s.Order
		r.Sections[i] = SectionRecord{ID: s.ID, Name: s.Name, ProjectID: s.ProjectID, Order: &order}
	}
	return r
}

// NormalizeTasks applies load-time defaults: priority falls back to the default.
func NormalizeTasks(ts []Task) []Task {
	out := CloneTasks(ts)
	for i := range out {
		out[i].Priority = out[i].Priority.Normalize()
	}
	return out
}
