// Package domain defines the persistence models for annotation queues,
// image groups, images, selections and per-user progress. These types are
// mapped with GORM and form the core data layer of the pickset backend.
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles. Observers may read progress but never record selections.
const (
	RoleAdmin     = "admin"
	RoleAnnotator = "annotator"
	RoleObserver  = "observer"
)

// QueueStatus is the lifecycle state of a Queue.
type QueueStatus string

const (
	QueueDraft     QueueStatus = "draft"
	QueueActive    QueueStatus = "active"
	QueueCompleted QueueStatus = "completed"
	QueueArchived  QueueStatus = "archived"
)

// Project groups queues under a common owner.
type Project struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null;uniqueIndex:ux_projects_name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Project.
func (Project) TableName() string { return "projects" }

// User is a person taking part in annotation, identified by ID in requests.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Username: unique login handle.
//   - Role: "admin", "annotator" or "observer" (enforced by DB constraint).
type User struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username  string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;default:'annotator';check:role IN ('admin','annotator','observer')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// CanSelect reports whether the user is allowed to record selections.
func (u User) CanSelect() bool { return u.Role == RoleAdmin || u.Role == RoleAnnotator }

// Queue is a unit of annotation work: a set of image groups in which every
// participating user picks exactly one image per group.
//
// Fields:
//   - ComparisonCount: expected images per group (2..10), advisory only.
//   - GroupCount / TotalImageCount: denormalized counters over non-deleted
//     groups and images. Recomputed from rows after every ingestion.
//   - Status: lifecycle state, see QueueStatus.
//   - DeletedAt: soft deletion marker; cascades to groups and images.
type Queue struct {
	ID              string         `json:"id"                gorm:"type:char(36);primaryKey"`
	ProjectID       string         `json:"project_id"        gorm:"type:char(36);not null;index:idx_queues_project"`
	Name            string         `json:"name"              gorm:"type:varchar(255);not null"`
	ComparisonCount int            `json:"comparison_count"  gorm:"not null;check:comparison_count BETWEEN 2 AND 10"`
	GroupCount      int            `json:"group_count"       gorm:"not null;default:0"`
	TotalImageCount int            `json:"total_image_count" gorm:"not null;default:0"`
	Status          QueueStatus    `json:"status"            gorm:"type:varchar(16);not null;default:'draft';check:status IN ('draft','active','completed','archived')"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"                 gorm:"index"`

	Project Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Queue.
func (Queue) TableName() string { return "queues" }

// ImageGroup collects the images sharing one file name inside a queue.
// DisplayOrder is 1-based and never reused, even after soft deletes.
type ImageGroup struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	QueueID      string         `json:"queue_id"      gorm:"type:char(36);not null;uniqueIndex:ux_groups_queue_name,priority:1;index:idx_groups_queue_order,priority:1"`
	Name         string         `json:"name"          gorm:"type:varchar(512);not null;uniqueIndex:ux_groups_queue_name,priority:2"`
	DisplayOrder int            `json:"display_order" gorm:"not null;index:idx_groups_queue_order,priority:2"`
	ImageCount   int            `json:"image_count"   gorm:"not null;default:0"`
	IsCompleted  bool           `json:"is_completed"  gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`

	Queue Queue `json:"-" gorm:"foreignKey:QueueID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ImageGroup.
func (ImageGroup) TableName() string { return "image_groups" }

// Image is one stored file, slotted by (queue, folder, file name). The slot
// and the content digest are each unique among non-deleted images of a
// queue; both indexes are partial so a soft-deleted image frees its slot.
//
// Width and Height are nil when the payload could not be decoded as an
// image (partial metadata).
type Image struct {
	ID            string         `json:"id"                       gorm:"type:char(36);primaryKey"`
	QueueID       string         `json:"queue_id"                 gorm:"type:char(36);not null;index:ux_images_queue_slot,unique,priority:1,where:deleted_at IS NULL;index:ux_images_queue_digest,unique,priority:1,where:deleted_at IS NULL"`
	GroupID       string         `json:"group_id"                 gorm:"type:char(36);not null;index:idx_images_group_order,priority:1"`
	FolderName    string         `json:"folder_name"              gorm:"type:varchar(255);not null;index:ux_images_queue_slot,unique,priority:2,where:deleted_at IS NULL"`
	FileName      string         `json:"file_name"                gorm:"type:varchar(512);not null;index:ux_images_queue_slot,unique,priority:3,where:deleted_at IS NULL"`
	StorageRef    string         `json:"storage_ref"              gorm:"type:varchar(1024);not null"`
	DisplayOrder  int            `json:"display_order"            gorm:"not null;index:idx_images_group_order,priority:2"`
	FileSize      int64          `json:"file_size"                gorm:"not null"`
	Width         *int           `json:"width,omitempty"`
	Height        *int           `json:"height,omitempty"`
	ContentDigest *string        `json:"content_digest,omitempty" gorm:"type:varchar(64);index:ux_images_queue_digest,unique,priority:2,where:deleted_at IS NULL"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"                        gorm:"index"`

	Queue Queue      `json:"-" gorm:"foreignKey:QueueID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Group ImageGroup `json:"-" gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Image.
func (Image) TableName() string { return "images" }

// Selection records the single image a user picked within a group. The
// unique index on (queue_id, user_id, group_id) is the authoritative guard
// against a second pick; selections are never soft-deleted.
type Selection struct {
	ID              string    `json:"id"                         gorm:"type:char(36);primaryKey"`
	QueueID         string    `json:"queue_id"                   gorm:"type:char(36);not null;uniqueIndex:ux_selection_queue_user_group,priority:1"`
	UserID          string    `json:"user_id"                    gorm:"type:char(36);not null;uniqueIndex:ux_selection_queue_user_group,priority:2;index:idx_selections_user"`
	GroupID         string    `json:"group_id"                   gorm:"type:char(36);not null;uniqueIndex:ux_selection_queue_user_group,priority:3"`
	ImageID         string    `json:"image_id"                   gorm:"type:char(36);not null;index:idx_selections_image"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for Selection.
func (Selection) TableName() string { return "selections" }

// UserProgress is the per-(queue, user) completion counter. TotalGroups is
// captured when the row is first created and is not refreshed afterwards.
type UserProgress struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	QueueID         string    `json:"queue_id"         gorm:"type:char(36);not null;uniqueIndex:ux_progress_queue_user,priority:1"`
	UserID          string    `json:"user_id"          gorm:"type:char(36);not null;uniqueIndex:ux_progress_queue_user,priority:2"`
	CompletedGroups int       `json:"completed_groups" gorm:"not null;default:0"`
	TotalGroups     int       `json:"total_groups"     gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserProgress.
func (UserProgress) TableName() string { return "user_progress" }

// ImportRun is the audit record of one batch ingestion. Errors and Skipped
// hold the (capped) per-file reports as JSON arrays.
type ImportRun struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	QueueID      string         `json:"queue_id"      gorm:"type:char(36);not null;index:idx_import_runs_queue"`
	SuccessCount int            `json:"success_count" gorm:"not null;default:0"`
	SkippedCount int            `json:"skipped_count" gorm:"not null;default:0"`
	FailureCount int            `json:"failure_count" gorm:"not null;default:0"`
	TotalGroups  int            `json:"total_groups"  gorm:"not null;default:0"`
	Errors       datatypes.JSON `json:"errors"`
	Skipped      datatypes.JSON `json:"skipped"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName returns the database table name for ImportRun.
func (ImportRun) TableName() string { return "import_runs" }
