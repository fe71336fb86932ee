// Package cloud serves the remote auth and data endpoints the local app
// syncs against, backed by a SQL database through gorm.
package cloud

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Username     string `gorm:"size:100;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
}

// Client-generated ids are only unique per user, so every row keyed by one
// is keyed by (user_id, id).

type Category struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:255;not null"`
	Icon      string `gorm:"size:64"`
	Color     string `gorm:"size:64"`
	Position  int
	CreatedAt time.Time
}

type Project struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:255;not null"`
	Icon      string `gorm:"size:64"`
	Color     string `gorm:"size:64"`
	Position  int
	CreatedAt time.Time
}

type Section struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	ID        string `gorm:"primaryKey;size:64"`
	ProjectID string `gorm:"size:64;index"`
	Name      string `gorm:"size:255;not null"`
	SortOrder *int
	CreatedAt time.Time
}

type Task struct {
	UserID            uint    `gorm:"primaryKey;autoIncrement:false"`
	ID                string  `gorm:"primaryKey;size:64"`
	ProjectID         string  `gorm:"size:64;index"`
	SectionID         *string `gorm:"size:64"`
	CategoryID        string  `gorm:"size:64"`
	Title             string  `gorm:"size:500;not null"`
	Description       string  `gorm:"type:text"`
	RewardType        string  `gorm:"size:16"`
	RewardAmount      int
	RewardDescription string `gorm:"size:500"`
	Priority          int
	Completed         bool
	ScheduledDate     *time.Time
	CompletedAt       *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime:false"`
}

type EarnedRewards struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	Points    int
	Minutes   int
	Rubles    int
	UpdatedAt time.Time
}

type ActivityLog struct {
	UserID      uint      `gorm:"primaryKey;autoIncrement:false"`
	ID          string    `gorm:"primaryKey;size:64"`
	Action      string    `gorm:"size:255"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index;autoCreateTime:false"`
}

func allModels() []any {
	return []any{
		&User{},
		&Category{},
		&Project{},
		&Section{},
		&Task{},
		&EarnedRewards{},
		&ActivityLog{},
	}
}
