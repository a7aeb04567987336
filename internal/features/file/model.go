package file

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type File struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID          string             `json:"owner_id" bson:"owner_id"`
	OriginalFilename string             `json:"original_filename" bson:"original_filename"`
	StoredName       string             `json:"-" bson:"stored_name"`
	URL              string             `json:"url" bson:"url"`
	Size             int64              `json:"size" bson:"size"`
	MimeType         string             `json:"mime_type" bson:"mime_type"`
	SessionID        string             `json:"session_id,omitempty" bson:"session_id,omitempty"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}

// Upload is one multipart file as received by the controller.
type Upload struct {
	Filename    string
	Size        int64
	SessionID   string
	Description string
}
