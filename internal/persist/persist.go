// Package persist stores each top-level collection as one JSON document
// under a fixed key.
package persist

import "errors"

// Fixed keys, one per persisted collection or preference.
const (
	KeyTasks             = "tasks"
	KeyCategories        = "categories"
	KeyProjects          = "projects"
	KeyActivityLog       = "activityLog"
	KeyEarnedRewards     = "earnedRewards"
	KeyDarkMode          = "darkMode"
	KeyTaskViewMode      = "taskViewMode"
	KeySelectedProjectID = "selectedProjectId"
	KeyLastSyncTime      = "lastSyncTime"
	KeyAuthToken         = "authToken"
)

// Keys lists every key the application writes, in a stable order.
var Keys = []string{
	KeyTasks,
	KeyCategories,
	KeyProjects,
	KeyActivityLog,
	KeyEarnedRewards,
	KeyDarkMode,
	KeyTaskViewMode,
	KeySelectedProjectID,
	KeyLastSyncTime,
	KeyAuthToken,
}

var ErrEmptyKey = errors.New("persist: empty key")

// Persister is a durable key-value store of JSON documents.
// Load reports found=false, with no error, for a key that was never saved.
type Persister interface {
	Save(key string, v any) error
	Load(key string, v any) (found bool, err error)
	Delete(key string) error
}
