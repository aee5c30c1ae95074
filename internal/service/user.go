package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

const searchLimit = 20

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Register(ctx context.Context, username, nickname, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	nickname = strings.TrimSpace(nickname)
	email = strings.TrimSpace(email)

	if username == "" || nickname == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.InvalidArgument, "username, nickname, email and password are required")
	}
	if len(username) < 3 {
		return nil, apperr.New(apperr.InvalidArgument, "username must be at least 3 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	user := &model.User{
		Username:     username,
		Nickname:     nickname,
		Email:        email,
		PasswordHash: string(hash),
	}
	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.New(apperr.Conflict, "user with this username or email already exists")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.InvalidArgument, "username and password are required")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.Unauthorized, "invalid username or password")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.Unauthorized, "invalid username or password")
	}

	return user, nil
}

func (s *userService) Profile(ctx context.Context, requestingID, userID uint) (*model.User, error) {
	if requestingID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if userID == 0 {
		userID = requestingID
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	// Почта видна только владельцу профиля
	if userID != requestingID {
		user.Email = ""
	}
	user.EnsureNickname()
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, update repository.ProfileUpdate) error {
	if userID == 0 {
		return apperr.New(apperr.Unauthorized, "missing user id")
	}
	if update.Empty() {
		return apperr.New(apperr.InvalidArgument, "no fields to update")
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, update); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update profile", err)
	}
	return nil
}

func (s *userService) Search(ctx context.Context, userID uint, query string) ([]*model.User, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.New(apperr.InvalidArgument, "query required")
	}

	users, err := s.userRepo.Search(ctx, query, userID, searchLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to search users", err)
	}

	for _, user := range users {
		user.Email = ""
		user.EnsureNickname()
	}
	return users, nil
}
