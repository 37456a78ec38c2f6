package models

import "time"

// Organization is the top of the Organization → Class → Section hierarchy.
type Organization struct {
	ID                int64      `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Address           string     `json:"address" db:"address"`
	PanNumber         string     `json:"panNumber" db:"pan_number"`
	IncorporationDate *time.Time `json:"incorporationDate,omitempty" db:"incorporation_date"`
	IsInternal        bool       `json:"isInternal" db:"is_internal"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}

// Class belongs to an organization.
type Class struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	OrganizationID int64  `json:"organizationId" db:"organization_id"`
}

// Section belongs to a class.
type Section struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	ClassID int64  `json:"classId" db:"class_id"`
}
