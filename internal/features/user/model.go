package user

import (
	"time"

	"eduvibe/internal/features/access"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      access.Role        `bson:"role" json:"role"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	Interests []string           `bson:"interests,omitempty" json:"interests,omitempty"`
	Languages []string           `bson:"languages,omitempty" json:"languages,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	LastLogin *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
}

type ListFilter struct {
	Role   access.Role
	Active *bool
	Search string
}

type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student mentor admin super_admin"`
}

type UpdateProfileRequest struct {
	Name      string   `json:"name" validate:"omitempty,min=2,max=100"`
	Interests []string `json:"interests" validate:"omitempty,max=20,dive,required,max=60"`
	Languages []string `json:"languages" validate:"omitempty,max=10,dive,required,max=40"`
}
