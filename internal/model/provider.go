package model

// Provider represents a product supplier within one tenant store
type Provider struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"type:varchar(100);not null"`
	ContactPerson string `json:"contact_person" gorm:"type:varchar(100)"`
	Email         string `json:"email" gorm:"type:varchar(120)"`
	Phone         string `json:"phone" gorm:"type:varchar(20)"`
	Address       string `json:"address" gorm:"type:varchar(200)"`
}
