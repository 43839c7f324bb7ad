package services

import (
	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/models"
)

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IsPremium resolves the entitlement for a user id. Unknown users are
// never entitled.
func (s *UserService) IsPremium(id uint) bool {
	user, err := s.GetByID(id)
	if err != nil {
		return false
	}
	return user.IsPremium()
}
