package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Solve is one archived solve event.
type Solve struct {
	ID       string    `json:"id"`
	UserID   int64     `json:"userId"`
	UserName string    `json:"userName"`
	Answer   string    `json:"answer"`
	Score    int       `json:"score"`
	SolvedAt time.Time `json:"solvedAt"`
}

// SolveStore archives solve events in Postgres. The archive is
// append-only history, the game never reads it back.
type SolveStore struct {
	db *pgxpool.Pool
}

func NewSolveStore(db *pgxpool.Pool) *SolveStore {
	return &SolveStore{db: db}
}

func (s *SolveStore) Record(ctx context.Context, sv Solve) error {
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO solves (id, user_id, user_name, answer, score)
		 VALUES ($1, $2, $3, $4, $5)`,
		sv.ID, sv.UserID, sv.UserName, sv.Answer, sv.Score,
	)
	return err
}

func (s *SolveStore) Recent(ctx context.Context, limit int) ([]Solve, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, user_name, answer, score, solved_at
		FROM solves
		ORDER BY solved_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	solves := []Solve{}
	for rows.Next() {
		var sv Solve
		if err := rows.Scan(&sv.ID, &sv.UserID, &sv.UserName, &sv.Answer, &sv.Score, &sv.SolvedAt); err != nil {
			return nil, err
		}
		solves = append(solves, sv)
	}
	return solves, rows.Err()
}
