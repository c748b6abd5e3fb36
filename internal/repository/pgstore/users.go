package pgstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

// UserStore хранит отображаемые имена владельцев, заполняется при регистрации
type UserStore struct {
	DB *dbpg.DB
}

func (p UserStore) DisplayName(ctx context.Context, email string) (string, error) {
	query := `SELECT display_name FROM users WHERE email = $1`
	var name string

	err := p.DB.QueryRowContext(ctx, query, email).Scan(&name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", model.ErrUserNotFound
		default:
			return "", err // 500
		}
	}
	return name, nil
}
