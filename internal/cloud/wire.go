package cloud

import "time"

// Shapes of the data endpoint. Pulls speak the database's snake_case for
// task and log fields; pushes use the local app's camelCase.

type CategoryJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type SectionJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Order     *int   `json:"order,omitempty"`
}

type ProjectJSON struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Icon     string        `json:"icon"`
	Color    string        `json:"color"`
	Sections []SectionJSON `json:"sections"`
}

type RewardsJSON struct {
	Points  int `json:"points"`
	Minutes int `json:"minutes"`
	Rubles  int `json:"rubles"`
}

type PulledTask struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	CategoryID        string     `json:"category_id"`
	ProjectID         string     `json:"project_id"`
	SectionID         *string    `json:"section_id"`
	RewardType        string     `json:"reward_type"`
	RewardAmount      int        `json:"reward_amount"`
	RewardDescription string     `json:"reward_description,omitempty"`
	Priority          int        `json:"priority"`
	Completed         bool       `json:"completed"`
	ScheduledDate     *time.Time `json:"scheduled_date"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

type PulledLog struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DataResponse is the body of GET data.
type DataResponse struct {
	Categories   []CategoryJSON `json:"categories"`
	Projects     []ProjectJSON  `json:"projects"`
	Tasks        []PulledTask   `json:"tasks"`
	Rewards      RewardsJSON    `json:"rewards"`
	ActivityLogs []PulledLog    `json:"activityLogs"`
}

type PushedTask struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	RewardType        string     `json:"rewardType"`
	RewardAmount      int        `json:"rewardAmount"`
	RewardDescription string     `json:"rewardDescription,omitempty"`
	Completed         bool       `json:"completed"`
	CreatedAt         time.Time  `json:"createdAt"`
	ScheduledDate     *time.Time `json:"scheduledDate,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ProjectID         string     `json:"projectId"`
	SectionID         string     `json:"sectionId,omitempty"`
	Priority          int        `json:"priority"`
}

type PushedLog struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// SyncRequest is the body of POST data.
type SyncRequest struct {
	Categories   []CategoryJSON `json:"categories"`
	Projects     []ProjectJSON  `json:"projects"`
	Tasks        []PushedTask   `json:"tasks"`
	Rewards      RewardsJSON    `json:"rewards"`
	ActivityLogs []PushedLog    `json:"activityLogs"`
}

// MaxPulledLogs and MaxPushedLogs bound the activity history exchanged per call.
const (
	MaxPulledLogs = 100
	MaxPushedLogs = 50
)
