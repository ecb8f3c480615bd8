package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrSesionNoEncontrada is returned when the session expired or was revoked.
var ErrSesionNoEncontrada = errors.New("sesion no encontrada")

// SesionRepository stores login sessions. Logout deletes the record, which
// revokes the signed cookie even before it expires.
type SesionRepository interface {
	Save(ctx context.Context, s *model.Sesion, ttl time.Duration) error
	Find(ctx context.Context, id string) (*model.Sesion, error)
	Delete(ctx context.Context, id string) error
}

type sesionRepo struct{ rdb *redis.Client }

func NewSesionRepository(rdb *redis.Client) SesionRepository { return &sesionRepo{rdb: rdb} }

func sesionKey(id string) string { return "session:" + id }

func (r *sesionRepo) Save(ctx context.Context, s *model.Sesion, ttl time.Duration) error {
	key := sesionKey(s.ID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", strconv.FormatUint(uint64(s.UsuarioID), 10),
			"csrf_token", s.CSRFToken,
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (r *sesionRepo) Find(ctx context.Context, id string) (*model.Sesion, error) {
	vals, err := r.rdb.HGetAll(ctx, sesionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrSesionNoEncontrada
	}
	uid, err := strconv.ParseUint(vals["user_id"], 10, 64)
	if err != nil {
		return nil, ErrSesionNoEncontrada
	}
	return &model.Sesion{ID: id, UsuarioID: uint(uid), CSRFToken: vals["csrf_token"]}, nil
}

func (r *sesionRepo) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sesionKey(id)).Err()
}
