package models

// TrackModel holds shared music metadata. The audio bytes themselves live
// in external storage; only the validated descriptor is kept here.
type TrackModel struct {
	Base
	OwnerID  string `json:"owner_id"  gorm:"index;not null"`
	Title    string `json:"title"     gorm:"not null"`
	Artist   string `json:"artist"`
	FileName string `json:"file_name" gorm:"not null"`
	FileSize int64  `json:"file_size"`
}

func (TrackModel) TableName() string { return "tracks" }
