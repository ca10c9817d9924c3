package repository

import (
	"errors"
	"fmt"

	repo "restaurant/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgresのエラーコード
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBのエラーをrepositoryのエラーに寄せる。
// 元のエラーは%wで残す。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", repo.ErrReferenced, err)
	}

	//TranslateErrorを通らなかったときのため
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %v", repo.ErrConflict, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %v", repo.ErrReferenced, err)
		}
	}
	return err
}
