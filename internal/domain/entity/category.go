package entity

import "time"

// Category categoría de productos (nombre único).
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
