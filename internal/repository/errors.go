package repository

import "errors"

var (
	//対象が無い
	ErrNotFound = errors.New("not found")
	//一意制約違反（電話番号・メールなど）
	ErrConflict = errors.New("conflict")
	//他から参照されていて消せない
	ErrReferenced = errors.New("referenced by other records")
	//楽観ロック失敗（versionがずれた）
	ErrVersionConflict = errors.New("version conflict")
	//監査ログのaction / resource_typeが既知の値でない
	ErrInvalidAuditEntry = errors.New("invalid audit entry")
)
