package entities

import (
	"time"
)

type Timestamp struct {
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Email     string `gorm:"size:150;uniqueIndex" json:"email"`
	Username  string `gorm:"size:150" json:"username"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Password  string `json:"-"`
	Avatar    string `json:"avatar,omitempty"`

	Timestamp
}

type Subscription struct {
	ID             uint `gorm:"primarykey" json:"id"`
	SubscriberID   uint `gorm:"uniqueIndex:idx_subscription_pair" json:"subscriber_id"`
	SubscribedToID uint `gorm:"uniqueIndex:idx_subscription_pair" json:"subscribed_to_id"`

	Subscriber   *User `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE" json:"-"`
	SubscribedTo *User `gorm:"foreignKey:SubscribedToID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}
