package repository

import (
	"context"
	"errors"

	"worksphere-portal/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CredentialRepository interface {
	Upsert(ctx context.Context, rec *model.CredentialMirror) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.CredentialMirror, error)
	Delete(ctx context.Context, sessionID string) error
}

type credentialRepoImpl struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepoImpl{
		db: db,
	}
}

func (r *credentialRepoImpl) Upsert(ctx context.Context, rec *model.CredentialMirror) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *credentialRepoImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.CredentialMirror, error) {
	var rec model.CredentialMirror
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *credentialRepoImpl) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.CredentialMirror{}).Error
}
