package specification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ByEmail matches the account email exactly. The value is the same opaque key
// the session store uses, so it is not normalized here.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ForUpdate locks matched rows until the surrounding transaction ends.
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
