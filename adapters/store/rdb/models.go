package rdb

import (
	"encoding/json"
	"fmt"
	"time"
)

// ServiceRecord is the RDB persistence model for domain Service.
// Table name: services
type ServiceRecord struct {
	ID        string    `gorm:"primaryKey;type:text;not null"`
	Name      string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ServiceRecord) TableName() string { return "services" }

// ProviderRecord persistence model
type ProviderRecord struct {
	ID        string    `gorm:"primaryKey;type:text;not null"`
	Name      string    `gorm:"type:text;not null"`
	ServiceID string    `gorm:"type:text;not null;index"` // references Service
	Driver    string    `gorm:"type:text;not null"`
	Settings  string    `gorm:"type:text"` // JSON encoded map[string]string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ProviderRecord) TableName() string { return "providers" }

// StackRecord persistence model. Nested stack sections are stored as JSON.
type StackRecord struct {
	ID           string    `gorm:"primaryKey;type:text;not null"`
	Name         string    `gorm:"type:text;not null"`
	ProviderID   string    `gorm:"type:text;not null;index"` // references Provider
	Preset       string    `gorm:"type:text"`
	Network      string    `gorm:"type:text"` // JSON encoded model.StackNetwork
	Task         string    `gorm:"type:text"` // JSON encoded model.StackTask
	Container    string    `gorm:"type:text"` // JSON encoded model.StackContainer
	Database     string    `gorm:"type:text"` // JSON encoded model.StackDatabase
	LoadBalancer string    `gorm:"type:text"` // JSON encoded model.StackLoadBalancer
	Bucket       string    `gorm:"type:text"` // JSON encoded model.StackBucket
	Settings     string    `gorm:"type:text"` // JSON encoded map[string]string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (StackRecord) TableName() string { return "stacks" }

func encodeJSON(field string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", field, err)
	}
	return string(b), nil
}

func decodeJSON(field, s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("decode %s: %w", field, err)
	}
	return nil
}
