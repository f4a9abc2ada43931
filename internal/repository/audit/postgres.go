package audit

import (
	"context"
	"encoding/json"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Record(ctx context.Context, e Entry) error {
	oldJSON, err := marshalValue(e.Old)
	if err != nil {
		return err
	}
	newJSON, err := marshalValue(e.New)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, old_value, new_value)
VALUES ($1, $2, $3, $4, $5, $6)
`, e.ActorID, e.Action, e.EntityType, e.EntityID, oldJSON, newJSON)
	if err != nil {
		r.logger.Printf("audit repo: record action=%s entity=%s/%d error=%v", e.Action, e.EntityType, e.EntityID, err)
	}
	return err
}

func marshalValue(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
