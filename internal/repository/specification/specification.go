package specification

import "gorm.io/gorm"

// Specification narrows a query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
