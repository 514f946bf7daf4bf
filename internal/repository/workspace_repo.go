package repository

import (
	"context"

	"gorm.io/gorm"

	"adflow_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// WorkspaceRepository 工作区仓储接口
type WorkspaceRepository interface {
	Create(ctx context.Context, ws *model.Workspace) error
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
	List(ctx context.Context) ([]model.Workspace, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.SysUser) error
	GetByID(ctx context.Context, id string) (*model.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*model.SysUser, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// ==================== Workspace 仓储实现 ====================

type workspaceRepo struct {
	db *gorm.DB
}

// NewWorkspaceRepository 创建工作区仓储
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) Create(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

func (r *workspaceRepo) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) List(ctx context.Context) ([]model.Workspace, error) {
	var list []model.Workspace
	err := r.db.WithContext(ctx).
		Where("status = ?", model.WorkspaceStatusActive).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *workspaceRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Workspace{}).Where("id = ?", id).Updates(fields).Error
}

// ==================== User 仓储实现 ====================

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.SysUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.SysUser, error) {
	var user model.SysUser
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.SysUser, error) {
	var user model.SysUser
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.SysUser{}).Where("id = ?", id).Updates(fields).Error
}
