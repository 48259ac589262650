package entities

type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:200;uniqueIndex" json:"name"`
	Slug string `gorm:"size:200;uniqueIndex" json:"slug"`
}
