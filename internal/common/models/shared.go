package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	ClientIPKey  ContextKey = "client_ip"
)

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionStatus   AuditAction = "STATUS"
	AuditActionPayment  AuditAction = "PAYMENT"
	AuditActionCron     AuditAction = "CRON"
	AuditActionExport   AuditAction = "EXPORT"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	RecordID  string             `bson:"record_id" json:"record_id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"-" json:"actor_name,omitempty"`
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is a persisted application log line written by the logger's Mongo tee.
type Log struct {
	AppID        string    `bson:"app_id" json:"app_id"`
	Message      string    `bson:"message" json:"message"`
	Level        string    `bson:"level" json:"level"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	IpAddress    string    `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserID       string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	RequestID    string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
