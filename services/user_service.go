package services

import (
	"errors"
	"time"

	"notelock/broker"
	"notelock/database"
	"notelock/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterUserInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type UserServiceInterface interface {
	CreateUser(db *database.Database, input RegisterUserInput) (models.User, error)
	GetUserById(db *database.Database, id uuid.UUID) (models.User, error)
}

type UserService struct {
	authService AuthServiceInterface
}

func NewUserService(authService AuthServiceInterface) *UserService {
	return &UserService{authService: authService}
}

func (s *UserService) CreateUser(db *database.Database, input RegisterUserInput) (models.User, error) {
	var count int64
	if err := db.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrResourceExists
	}

	passwordHash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New(),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.User{}, tx.Error
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	event, err := models.NewEvent(
		string(broker.UserCreated),
		"user",
		"create",
		user.ID.String(),
		map[string]interface{}{"user_id": user.ID.String()},
	)
	if err != nil {
		tx.Rollback()
		return models.User{}, err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) GetUserById(db *database.Database, id uuid.UUID) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

var UserServiceInstance UserServiceInterface
