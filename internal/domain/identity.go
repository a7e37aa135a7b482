package domain

import (
	"github.com/google/uuid"

	"github.com/atelier-moda/fashion-shop/internal/models"
)

// Identity is the authenticated caller, passed explicitly into core
// operations that need role or ownership checks.
type Identity struct {
	UserID uuid.UUID
	Role   models.UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}
