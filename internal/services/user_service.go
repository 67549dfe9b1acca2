package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterInput carries the registration fields. ID is optional; a fresh UUID
// is assigned when the client does not pick one.
type RegisterInput struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

// RegisterUser creates an account. Duplicate id or email reports a conflict.
func RegisterUser(in RegisterInput) (*models.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if in.ID != "" && !userIDRegex.MatchString(in.ID) {
		return nil, fmt.Errorf("%w: id must contain only alphanumeric characters and underscores", ErrValidation)
	}

	id := in.ID
	if id == "" {
		id = uuid.New().String()
	} else {
		var existing models.User
		err := database.DB.First(&existing, "id = ?", id).Error
		if err == nil {
			return nil, fmt.Errorf("%w: id %s", ErrConflict, id)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var existing models.User
	err := database.DB.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: email %s", ErrConflict, in.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           id,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		DisplayName:  in.DisplayName,
	}
	if err := database.DB.Create(user).Error; err != nil {
		// A concurrent register can slip past the checks above; the unique
		// indexes catch it on insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: duplicate id or email", ErrConflict)
		}
		return nil, err
	}

	return user, nil
}

// LoginUser authenticates by email or id.
func LoginUser(identifier, password string) (*models.User, error) {
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	var user models.User
	err := database.DB.Where("email = ?", identifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = database.DB.First(&user, "id = ?", identifier).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	return &user, nil
}

// FindUserByID loads a user, for the auth middleware and profile reads.
func FindUserByID(id string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries the optional profile fields; nil leaves a field
// unchanged.
type ProfileUpdate struct {
	DisplayName *string
	Avatar      *string
	Password    *string
}

// UpdateProfile updates display name, avatar and (re-hashed) password.
func UpdateProfile(id string, in ProfileUpdate) (*models.User, error) {
	user, err := FindUserByID(id)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		user.DisplayName = *in.DisplayName
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	if err := database.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
