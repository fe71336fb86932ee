package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskreward/internal/auth"
	"taskreward/internal/model"
)

// Repo is the cloud's storage; it also backs auth.Service.
type Repo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db, now: time.Now}
}

var defaultCategories = []Category{
	{ID: "work", Name: "Work", Icon: "Briefcase", Color: "bg-blue-500"},
	{ID: "personal", Name: "Personal", Icon: "User", Color: "bg-green-500"},
	{ID: "health", Name: "Health", Icon: "Heart", Color: "bg-red-500"},
	{ID: "learning", Name: "Learning", Icon: "BookOpen", Color: "bg-purple-500"},
	{ID: "home", Name: "Home", Icon: "Home", Color: "bg-orange-500"},
}

func toAuthUser(u User) auth.User {
	return auth.User{ID: u.ID, Email: u.Email, Username: u.Username, CreatedAt: u.CreatedAt}
}

// CreateUser inserts the account and seeds its categories, the default
// project and a zero rewards row in one transaction.
func (r *Repo) CreateUser(ctx context.Context, email, username, passwordHash string) (auth.User, error) {
	var created User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return auth.ErrUserExists
		}

		created = User{Email: email, Username: username, PasswordHash: passwordHash}
		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return auth.ErrUserExists
			}
			return err
		}

		if err := tx.Create(&EarnedRewards{UserID: created.ID}).Error; err != nil {
			return err
		}
		cats := make([]Category, len(defaultCategories))
		for i, c := range defaultCategories {
			c.UserID = created.ID
			c.Position = i
			cats[i] = c
		}
		if err := tx.Create(&cats).Error; err != nil {
			return err
		}
		def := model.DefaultProject()
		return tx.Create(&Project{
			UserID: created.ID,
			ID:     def.ID,
			Name:   def.Name,
			Icon:   def.Icon,
			Color:  def.Color,
		}).Error
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return auth.User{}, err
		}
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}
	return toAuthUser(created), nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (auth.User, string, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.User{}, "", auth.ErrUserNotFound
		}
		return auth.User{}, "", err
	}
	return toAuthUser(u), u.PasswordHash, nil
}

func (r *Repo) FindByID(ctx context.Context, id uint) (auth.User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, err
	}
	return toAuthUser(u), nil
}

// Data returns everything stored for a user: tasks newest first and the
// most recent activity entries.
func (r *Repo) Data(ctx context.Context, userID uint) (DataResponse, error) {
	db := r.db.WithContext(ctx)
	out := DataResponse{
		Categories:   []CategoryJSON{},
		Projects:     []ProjectJSON{},
		Tasks:        []PulledTask{},
		ActivityLogs: []PulledLog{},
	}

	var cats []Category
	if err := db.Where("user_id = ?", userID).Order("position, created_at").Find(&cats).Error; err != nil {
		return out, fmt.Errorf("load categories: %w", err)
	}
	for _, c := range cats {
		out.Categories = append(out.Categories, CategoryJSON{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color})
	}

	var projects []Project
	if err := db.Where("user_id = ?", userID).Order("position, created_at").Find(&projects).Error; err != nil {
		return out, fmt.Errorf("load projects: %w", err)
	}
	var sections []Section
	if err := db.Where("user_id = ?", userID).Order("created_at").Find(&sections).Error; err != nil {
		return out, fmt.Errorf("load sections: %w", err)
	}
	byProject := map[string][]SectionJSON{}
	for _, s := range sections {
		byProject[s.ProjectID] = append(byProject[s.ProjectID], SectionJSON{
			ID:        s.ID,
			Name:      s.Name,
			ProjectID: s.ProjectID,
			Order:     s.SortOrder,
		})
	}
	for _, p := range projects {
		secs := byProject[p.ID]
		if secs == nil {
			secs = []SectionJSON{}
		}
		out.Projects = append(out.Projects, ProjectJSON{ID: p.ID, Name: p.Name, Icon: p.Icon, Color: p.Color, Sections: secs})
	}

	var tasks []Task
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return out, fmt.Errorf("load tasks: %w", err)
	}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, PulledTask{
			ID:                t.ID,
			Title:             t.Title,
			Description:       t.Description,
			CategoryID:        t.CategoryID,
			ProjectID:         t.ProjectID,
			SectionID:         t.SectionID,
			RewardType:        t.RewardType,
			RewardAmount:      t.RewardAmount,
			RewardDescription: t.RewardDescription,
			Priority:          t.Priority,
			Completed:         t.Completed,
			ScheduledDate:     utcPtr(t.ScheduledDate),
			CompletedAt:       utcPtr(t.CompletedAt),
			CreatedAt:         t.CreatedAt.UTC(),
		})
	}

	var rewards EarnedRewards
	err := db.Where("user_id = ?", userID).First(&rewards).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return out, fmt.Errorf("load rewards: %w", err)
	}
	out.Rewards = RewardsJSON{Points: rewards.Points, Minutes: rewards.Minutes, Rubles: rewards.Rubles}

	var logs []ActivityLog
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(MaxPulledLogs).Find(&logs).Error; err != nil {
		return out, fmt.Errorf("load activity: %w", err)
	}
	for _, l := range logs {
		out.ActivityLogs = append(out.ActivityLogs, PulledLog{ID: l.ID, Action: l.Action, Description: l.Description, CreatedAt: l.CreatedAt.UTC()})
	}
	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Sync stores a pushed snapshot. Categories, projects, sections and tasks
// are replaced by the pushed set; activity entries are only ever added.
func (r *Repo) Sync(ctx context.Context, userID uint, in SyncRequest) error {
	now := r.now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catIDs := make([]string, 0, len(in.Categories))
		for i, c := range in.Categories {
			row := Category{UserID: userID, ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color, Position: i}
			if err := upsert(tx, &row, "name", "icon", "color", "position"); err != nil {
				return fmt.Errorf("sync categories: %w", err)
			}
			catIDs = append(catIDs, c.ID)
		}
		if err := prune(tx, &Category{}, userID, catIDs); err != nil {
			return fmt.Errorf("sync categories: %w", err)
		}

		projIDs := make([]string, 0, len(in.Projects))
		var secIDs []string
		for i, p := range in.Projects {
			row := Project{UserID: userID, ID: p.ID, Name: p.Name, Icon: p.Icon, Color: p.Color, Position: i}
			if err := upsert(tx, &row, "name", "icon", "color", "position"); err != nil {
				return fmt.Errorf("sync projects: %w", err)
			}
			projIDs = append(projIDs, p.ID)
			for _, s := range p.Sections {
				srow := Section{UserID: userID, ID: s.ID, ProjectID: p.ID, Name: s.Name, SortOrder: s.Order}
				if err := upsert(tx, &srow, "project_id", "name", "sort_order"); err != nil {
					return fmt.Errorf("sync sections: %w", err)
				}
				secIDs = append(secIDs, s.ID)
			}
		}
		if err := prune(tx, &Project{}, userID, projIDs); err != nil {
			return fmt.Errorf("sync projects: %w", err)
		}
		if err := prune(tx, &Section{}, userID, secIDs); err != nil {
			return fmt.Errorf("sync sections: %w", err)
		}

		taskIDs := make([]string, 0, len(in.Tasks))
		for _, t := range in.Tasks {
			row := Task{
				UserID:            userID,
				ID:                t.ID,
				ProjectID:         t.ProjectID,
				CategoryID:        t.Category,
				Title:             t.Title,
				Description:       t.Description,
				RewardType:        t.RewardType,
				RewardAmount:      t.RewardAmount,
				RewardDescription: t.RewardDescription,
				Priority:          t.Priority,
				Completed:         t.Completed,
				ScheduledDate:     utcPtr(t.ScheduledDate),
				CompletedAt:       utcPtr(t.CompletedAt),
				CreatedAt:         t.CreatedAt.UTC(),
			}
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			if t.SectionID != "" {
				sid := t.SectionID
				row.SectionID = &sid
			}
			if err := upsert(tx, &row,
				"project_id", "section_id", "category_id", "title", "description",
				"reward_type", "reward_amount", "reward_description", "priority",
				"completed", "scheduled_date", "completed_at",
			); err != nil {
				return fmt.Errorf("sync tasks: %w", err)
			}
			taskIDs = append(taskIDs, t.ID)
		}
		if err := prune(tx, &Task{}, userID, taskIDs); err != nil {
			return fmt.Errorf("sync tasks: %w", err)
		}

		rewards := EarnedRewards{
			UserID:  userID,
			Points:  in.Rewards.Points,
			Minutes: in.Rewards.Minutes,
			Rubles:  in.Rewards.Rubles,
		}
		if err := upsertRewards(tx, &rewards); err != nil {
			return fmt.Errorf("sync rewards: %w", err)
		}

		logs := in.ActivityLogs
		if len(logs) > MaxPushedLogs {
			logs = logs[len(logs)-MaxPushedLogs:]
		}
		for _, l := range logs {
			row := ActivityLog{UserID: userID, ID: l.ID, Action: l.Action, Description: l.Description, CreatedAt: l.Timestamp.UTC()}
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("sync activity: %w", err)
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, row any, columns ...string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error
}

func upsertRewards(tx *gorm.DB, row *EarnedRewards) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "minutes", "rubles", "updated_at"}),
	}).Create(row).Error
}

// prune deletes the user's rows of the given model whose id is not in keep.
func prune(tx *gorm.DB, m any, userID uint, keep []string) error {
	q := tx.Where("user_id = ?", userID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(m).Error
}
