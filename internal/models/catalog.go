package models

import "time"

// Catalog hierarchy: Course -> Section -> Subsection -> Video.
// The tree mirrors a Drive folder tree; driveFolderId/driveFileId are the
// external keys the sync reconciles against. Sync only creates and updates,
// it never deletes, so rows whose Drive source disappeared stay around.

type Course struct {
	ID            string    `gorm:"primaryKey;type:text" json:"id"`
	Title         string    `json:"title"`
	DriveFolderID *string   `gorm:"column:driveFolderId;uniqueIndex" json:"driveFolderId"`
	CreatedAt     time.Time `gorm:"column:createdAt" json:"createdAt"`

	Sections []Section `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
}

type Section struct {
	ID            string    `gorm:"primaryKey;type:text" json:"id"`
	CourseID      string    `gorm:"column:courseId;index" json:"courseId"`
	Title         string    `json:"title"`
	Order         int       `gorm:"column:order" json:"order"`
	DriveFolderID *string   `gorm:"column:driveFolderId" json:"driveFolderId"`
	CreatedAt     time.Time `gorm:"column:createdAt" json:"createdAt"`

	Subsections []Subsection `gorm:"foreignKey:SectionID" json:"subsections,omitempty"`
}

// Subsection with a NULL driveFolderId is "synthetic": the section folder
// held loose video files and no subfolders, so one implicit child is used.
type Subsection struct {
	ID            string    `gorm:"primaryKey;type:text" json:"id"`
	SectionID     string    `gorm:"column:sectionId;index" json:"sectionId"`
	Title         string    `json:"title"`
	Order         int       `gorm:"column:order" json:"order"`
	DriveFolderID *string   `gorm:"column:driveFolderId" json:"driveFolderId"`
	CreatedAt     time.Time `gorm:"column:createdAt" json:"createdAt"`

	Videos []Video `gorm:"foreignKey:SubsectionID" json:"videos,omitempty"`
}

type Video struct {
	ID              string    `gorm:"primaryKey;type:text" json:"id"`
	SubsectionID    string    `gorm:"column:subsectionId;index" json:"subsectionId"`
	Title           string    `json:"title"`
	DriveFileID     string    `gorm:"column:driveFileId" json:"driveFileId"`
	Order           int       `gorm:"column:order" json:"order"`
	DurationSeconds *int      `gorm:"column:durationSeconds" json:"durationSeconds"`
	CreatedAt       time.Time `gorm:"column:createdAt" json:"createdAt"`
}
