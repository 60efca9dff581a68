package models

// Nullable is a patch value for a nullable column. A nil *Nullable leaves the
// column untouched, Null writes SQL NULL.
type Nullable[T any] struct {
	Value T
	Null  bool
}

// Set returns a patch value that writes v
func Set[T any](v T) *Nullable[T] {
	return &Nullable[T]{Value: v}
}

// Null returns a patch value that clears the column
func Null[T any]() *Nullable[T] {
	return &Nullable[T]{Null: true}
}

// Arg returns the SQL argument for the value
func (n *Nullable[T]) Arg() any {
	if n.Null {
		return nil
	}
	return n.Value
}

// TaskPatch is a partial task update. Only non-nil fields are written.
type TaskPatch struct {
	Title                *string
	Description          *Nullable[string] `validate:"omitempty,max=500"`
	DueDate              *Nullable[string]
	Priority             *Priority   `validate:"omitempty,oneof=low medium high"`
	Status               *TaskStatus `validate:"omitempty,oneof=pending completed"`
	CategoryID           *Nullable[int64]
	ProjectID            *Nullable[int64]
	ParentTaskID         *Nullable[int64]
	CompletionPercentage *int `validate:"omitempty,gte=0,lte=100"`
}

// AffectsParentCompletion reports whether applying the patch can change the
// completion of the task's parent.
func (p TaskPatch) AffectsParentCompletion() bool {
	return p.Status != nil || p.CompletionPercentage != nil || p.ParentTaskID != nil
}

type CategoryPatch struct {
	Name  *string `validate:"omitempty,notblank"`
	Color *string `validate:"omitempty,notblank"`
	Icon  *Nullable[string]
}

type TagPatch struct {
	Name  *string `validate:"omitempty,notblank"`
	Color *string `validate:"omitempty,notblank"`
}

type ProjectPatch struct {
	Name        *string `validate:"omitempty,notblank"`
	Description *Nullable[string]
	StartDate   *Nullable[string]
	EndDate     *Nullable[string]
	Status      *ProjectStatus `validate:"omitempty,oneof=not_started in_progress completed on_hold"`
	Color       *Nullable[string]
}

// SettingsPatch updates the settings row. last_updated is always refreshed.
type SettingsPatch struct {
	Theme                *Theme `validate:"omitempty,oneof=light dark system"`
	NotificationsEnabled *bool
	Language             *Language `validate:"omitempty,oneof=en vi"`
}
