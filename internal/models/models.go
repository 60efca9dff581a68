package models

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the completion state of a task
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Theme is the UI theme stored in settings
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Language is the UI language stored in settings
type Language string

const (
	LanguageEn Language = "en"
	LanguageVi Language = "vi"
)

func (l Language) Valid() bool {
	return l == LanguageEn || l == LanguageVi
}

// Task represents a single task. ParentTaskID links a subtask to its parent.
type Task struct {
	ID                   int64      `db:"id" json:"id"`
	Title                string     `db:"title" json:"title"`
	Description          *string    `db:"description" json:"description"`
	DueDate              *string    `db:"due_date" json:"due_date"`
	Priority             Priority   `db:"priority" json:"priority"`
	Status               TaskStatus `db:"status" json:"status"`
	CreatedAt            string     `db:"created_at" json:"created_at"`
	CategoryID           *int64     `db:"category_id" json:"category_id"`
	ProjectID            *int64     `db:"project_id" json:"project_id"`
	ParentTaskID         *int64     `db:"parent_task_id" json:"parent_task_id"`
	CompletionPercentage int        `db:"completion_percentage" json:"completion_percentage"`
}

// EffectiveCompletion is the completion a task contributes to its parent:
// completed tasks always count as 100.
func (t Task) EffectiveCompletion() int {
	if t.Status == StatusCompleted {
		return 100
	}
	return t.CompletionPercentage
}

// NewTask holds the fields accepted when creating a task
type NewTask struct {
	Title        string
	Description  *string `validate:"omitempty,max=500"`
	DueDate      *string
	Priority     Priority   `validate:"oneof=low medium high"`
	Status       TaskStatus `validate:"oneof=pending completed"`
	CategoryID   *int64
	ProjectID    *int64
	ParentTaskID *int64
}

// Category groups tasks; Color doubles as the swatch identifier
type Category struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name" validate:"notblank"`
	Color     string  `db:"color" json:"color" validate:"notblank"`
	Icon      *string `db:"icon" json:"icon"`
	CreatedAt string  `db:"created_at" json:"created_at"`
}

// Tag represents a tag that can be applied to tasks
type Tag struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name" validate:"notblank"`
	Color      string `db:"color" json:"color" validate:"notblank"`
	UsageCount int    `db:"usage_count" json:"usage_count"`
}

// TaskTag is one row of the task/tag association table
type TaskTag struct {
	TaskID int64 `db:"task_id" json:"task_id"`
	TagID  int64 `db:"tag_id" json:"tag_id"`
}

// Project represents a task management project
type Project struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name" validate:"notblank"`
	Description *string       `db:"description" json:"description"`
	StartDate   *string       `db:"start_date" json:"start_date"`
	EndDate     *string       `db:"end_date" json:"end_date"`
	Status      ProjectStatus `db:"status" json:"status" validate:"omitempty,oneof=not_started in_progress completed on_hold"`
	Color       *string       `db:"color" json:"color"`
	CreatedAt   string        `db:"created_at" json:"created_at"`
}

// Settings is the single process-wide settings row
type Settings struct {
	ID                   int64    `db:"id" json:"id"`
	Theme                Theme    `db:"theme" json:"theme"`
	NotificationsEnabled bool     `db:"notifications_enabled" json:"notifications_enabled"`
	Language             Language `db:"language" json:"language"`
	LastUpdated          string   `db:"last_updated" json:"last_updated"`
}

// Filter selects tasks. "all" (or empty) disables a constraint; CategoryID
// also accepts "none" for uncategorized tasks.
type Filter struct {
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	SearchQuery string `json:"searchQuery"`
	CategoryID  string `json:"category_id"`
}

const (
	FilterAll  = "all"
	FilterNone = "none"
)

// TaskStats summarizes the task table
type TaskStats struct {
	Total      int              `json:"total"`
	Completed  int              `json:"completed"`
	Pending    int              `json:"pending"`
	ByPriority map[Priority]int `json:"by_priority"`
}
