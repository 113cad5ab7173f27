package domain

import "time"

type User struct {
	ID         string    `bson:"_id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	ProfilePic string    `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	Bio        string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Password   string    `bson:"password,omitempty" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
