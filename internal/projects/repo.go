package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the pgx-backed project Store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, ownerID, name, description string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	for i := 0; i < 5; i++ {
		id, err := NewPublicID("proj")
		if err != nil {
			return nil, err
		}

		const q = `
insert into projects (id, user_id, name, description)
values ($1, $2, $3, nullif($4, ''))
returning id, name, description, user_id, created_at;
`
		var p Project
		err = r.db.QueryRow(ctx, q, id, ownerID, name, description).
			Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt)

		if err == nil {
			return &p, nil
		}

		// unique violation on id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (r *Repo) ByID(ctx context.Context, id string) (*Project, error) {
	const q = `
select id, name, description, user_id, created_at
from projects
where id = $1;
`
	var p Project
	err := r.db.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	const q = `
select id, name, description, user_id, created_at
from projects
where user_id = $1
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id, ownerID string, name, description *string) (bool, error) {
	var set []string
	var args []any
	if name != nil {
		args = append(args, *name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if description != nil {
		args = append(args, *description)
		set = append(set, fmt.Sprintf("description = nullif($%d, '')", len(args)))
	}
	if len(set) == 0 {
		return false, nil
	}
	args = append(args, id, ownerID)
	q := fmt.Sprintf(`update projects set %s where id = $%d and user_id = $%d;`,
		strings.Join(set, ", "), len(args)-1, len(args))

	ct, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `delete from projects where id = $1 and user_id = $2;`
	ct, err := r.db.Exec(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
