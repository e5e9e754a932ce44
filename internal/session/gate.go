package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"column-tracker/internal/common"
	"column-tracker/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Gate struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGate(db *gorm.DB, log *zap.Logger) *Gate {
	return &Gate{db: db, log: log}
}

// Authenticate ищет пользователя по точному совпадению табельного номера.
func (g *Gate) Authenticate(ctx context.Context, employeeID string) (Identity, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return Identity{}, common.ErrValidationEmpty
	}

	var user models.User
	err := g.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, fmt.Errorf("employee %q: %w", employeeID, common.ErrNotFound)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("find employee: %w", err)
	}

	g.log.Info("user logged in", zap.String("employee_id", user.EmployeeID), zap.Bool("admin", user.IsAdmin))
	return IdentityOf(user), nil
}

// Lookup перечитывает пользователя из сессионной cookie.
func (g *Gate) Lookup(ctx context.Context, userID uint) (Identity, error) {
	var user models.User
	err := g.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, common.ErrNotFound
	}
	if err != nil {
		return Identity{}, fmt.Errorf("find user %d: %w", userID, err)
	}
	return IdentityOf(user), nil
}

type NewUser struct {
	Name       string
	EmployeeID string
	IsAdmin    bool
}

// RegisterUser: только для администратора.
func (g *Gate) RegisterUser(ctx context.Context, in NewUser) (models.User, error) {
	actor, err := RequireAdmin(ctx)
	if err != nil {
		return models.User{}, err
	}

	user, err := g.createUser(ctx, in)
	if err != nil {
		return models.User{}, err
	}

	g.log.Info("user registered",
		zap.String("employee_id", user.EmployeeID),
		zap.Bool("admin", user.IsAdmin),
		zap.String("by", actor.EmployeeID),
	)
	return user, nil
}

func (g *Gate) createUser(ctx context.Context, in NewUser) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	if in.Name == "" || in.EmployeeID == "" {
		return models.User{}, common.ErrValidationEmpty
	}

	db := g.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("employee_id = ?", in.EmployeeID).Count(&count).Error; err != nil {
		return models.User{}, fmt.Errorf("check employee id: %w", err)
	}
	if count > 0 {
		return models.User{}, fmt.Errorf("employee %q: %w", in.EmployeeID, common.ErrConflict)
	}

	user := models.User{Name: in.Name, EmployeeID: in.EmployeeID, IsAdmin: in.IsAdmin}
	if err := db.Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureDefaultAdmin создаёт администратора при первом запуске, если админов ещё нет.
func (g *Gate) EnsureDefaultAdmin(ctx context.Context, employeeID, name string) error {
	if strings.TrimSpace(employeeID) == "" {
		return nil
	}

	var count int64
	if err := g.db.WithContext(ctx).Model(&models.User{}).
		Where("is_admin = ?", true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		// админ уже есть — ничего не делаем
		return nil
	}

	user, err := g.createUser(ctx, NewUser{Name: name, EmployeeID: employeeID, IsAdmin: true})
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	g.log.Info("created default admin", zap.String("employee_id", user.EmployeeID))
	return nil
}
