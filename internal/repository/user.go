package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
)

type ProfileUpdate struct {
	Nickname    *string
	AvatarURL   *string
	StatusText  *string
	StatusEmoji *string
}

func (u ProfileUpdate) Empty() bool {
	return u.Nickname == nil && u.AvatarURL == nil && u.StatusText == nil && u.StatusEmoji == nil
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) error
	SetOnline(ctx context.Context, userID uint, online bool, seenAt time.Time) error
	Search(ctx context.Context, prompt string, excludeID uint, limit int) ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) error {
	fields := map[string]any{}
	if update.Nickname != nil {
		fields["nickname"] = *update.Nickname
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if update.StatusText != nil {
		fields["status_text"] = *update.StatusText
	}
	if update.StatusEmoji != nil {
		fields["status_emoji"] = *update.StatusEmoji
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(fields).Error
}

func (r *userRepository) SetOnline(ctx context.Context, userID uint, online bool, seenAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(map[string]any{
		"is_online": online,
		"last_seen": seenAt,
	}).Error
}

func (r *userRepository) Search(ctx context.Context, prompt string, excludeID uint, limit int) ([]*model.User, error) {
	var users []*model.User
	pattern := "%" + strings.ToLower(prompt) + "%"
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("(LOWER(username) LIKE ? OR LOWER(nickname) LIKE ?) AND id <> ?", pattern, pattern, excludeID).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
