package activity

import (
	"encoding/json"
	"fmt"

	"taskreward/internal/model"
)

type Kind string

const (
	KindTaskComplete   Kind = "task_complete"
	KindTaskDelete     Kind = "task_delete"
	KindTaskCreate     Kind = "task_create"
	KindCategoryDelete Kind = "category_delete"
	KindProjectDelete  Kind = "project_delete"
	KindSectionDelete  Kind = "section_delete"
	KindThemeChange    Kind = "theme_change"
	KindRewardChange   Kind = "reward_change"
)

// Undo is the payload that reverses one logged action. The set of
// implementations is closed; switch on the concrete type.
type Undo interface {
	Kind() Kind
	sealed()
}

type TaskComplete struct {
	TaskID string `json:"taskId"`
}

type TaskDelete struct {
	Task model.Task `json:"task"`
}

type TaskCreate struct {
	TaskID string `json:"taskId"`
}

type CategoryDelete struct {
	Category model.Category `json:"category"`
}

// ProjectDelete carries the tasks removed by the cascade so they come back too.
type ProjectDelete struct {
	Project model.Project `json:"project"`
	Tasks   []model.Task  `json:"tasks,omitempty"`
}

type SectionDelete struct {
	ProjectID string        `json:"projectId"`
	Section   model.Section `json:"section"`
	Tasks     []model.Task  `json:"sectionTasks"`
}

type ThemeChange struct {
	PreviousDark bool `json:"previousTheme"`
}

// RewardChange restores either the whole ledger (Previous) or a single kind.
type RewardChange struct {
	Previous      *model.EarnedRewards `json:"previousRewards,omitempty"`
	RewardType    model.RewardType     `json:"rewardType,omitempty"`
	PreviousValue *int                 `json:"previousValue,omitempty"`
	NewValue      *int                 `json:"newValue,omitempty"`
}

func (TaskComplete) Kind() Kind   { return KindTaskComplete }
func (TaskDelete) Kind() Kind     { return KindTaskDelete }
func (TaskCreate) Kind() Kind     { return KindTaskCreate }
func (CategoryDelete) Kind() Kind { return KindCategoryDelete }
func (ProjectDelete) Kind() Kind  { return KindProjectDelete }
func (SectionDelete) Kind() Kind  { return KindSectionDelete }
func (ThemeChange) Kind() Kind    { return KindThemeChange }
func (RewardChange) Kind() Kind   { return KindRewardChange }

func (TaskComplete) sealed()   {}
func (TaskDelete) sealed()     {}
func (TaskCreate) sealed()     {}
func (CategoryDelete) sealed() {}
func (ProjectDelete) sealed()  {}
func (SectionDelete) sealed()  {}
func (ThemeChange) sealed()    {}
func (RewardChange) sealed()   {}

type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

func marshalUndo(u Undo) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: u.Kind(), Data: data})
}

func unmarshalUndo(b []byte) (Undo, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}

	var u Undo
	switch env.Type {
	case KindTaskComplete:
		u = &TaskComplete{}
	case KindTaskDelete:
		u = &TaskDelete{}
	case KindTaskCreate:
		u = &TaskCreate{}
	case KindCategoryDelete:
		u = &CategoryDelete{}
	case KindProjectDelete:
		u = &ProjectDelete{}
	case KindSectionDelete:
		u = &SectionDelete{}
	case KindThemeChange:
		u = &ThemeChange{}
	case KindRewardChange:
		u = &RewardChange{}
	default:
		return nil, fmt.Errorf("unknown undo type %q", env.Type)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, u); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return deref(u), nil
}

// deref turns the decode target back into the value variant stored everywhere else.
func deref(u Undo) Undo {
	switch v := u.(type) {
	case *TaskComplete:
		return *v
	case *TaskDelete:
		return *v
	case *TaskCreate:
		return *v
	case *CategoryDelete:
		return *v
	case *ProjectDelete:
		return *v
	case *SectionDelete:
		return *v
	case *ThemeChange:
		return *v
	case *RewardChange:
		return *v
	}
	return u
}
