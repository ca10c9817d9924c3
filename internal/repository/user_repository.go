package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

// 保存・取得を約束。見つからないときはErrNotFound。
type UserRepository interface {
	//新規ユーザー作成（email / user_name重複はErrConflict）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUserName(ctx context.Context, userName string) (*model.User, error)
	// ユーザー情報の更新=>ロール・パスワード・最後のログインなど
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
