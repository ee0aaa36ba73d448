package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const endpointCols = `
e.id, e.path, coalesce(e.parameters, ''), e.code, e.language, e.http_method,
e.project_id, e.user_id, e.created_at, p.name, u.email`

const endpointJoin = `
from endpoints e
left join projects p on p.id = e.project_id
left join users u on u.id = e.user_id`

func scanEndpoint(row pgx.Row) (*domain.Endpoint, error) {
	var e domain.Endpoint
	var params string
	err := row.Scan(&e.ID, &e.Path, &params, &e.Code, &e.Language, &e.HTTPMethod,
		&e.ProjectID, &e.OwnerID, &e.CreatedAt, &e.ProjectName, &e.UserEmail)
	if err != nil {
		return nil, err
	}
	e.Parameters = splitParameters(params)
	return &e, nil
}

func (s *Postgres) CreateEndpoint(ctx context.Context, ep domain.Endpoint) (*domain.Endpoint, error) {
	if ep.ID == "" {
		ep.ID = uuid.New().String()
	}

	const q = `
insert into endpoints (id, path, parameters, code, language, http_method, project_id, user_id)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning id, path, coalesce(parameters, ''), code, language, http_method, project_id, user_id, created_at;
`
	var e domain.Endpoint
	var params string
	err := s.db.QueryRow(ctx, q, ep.ID, ep.Path, joinParameters(ep.Parameters),
		ep.Code, ep.Language, ep.HTTPMethod, ep.ProjectID, ep.OwnerID).
		Scan(&e.ID, &e.Path, &params, &e.Code, &e.Language, &e.HTTPMethod,
			&e.ProjectID, &e.OwnerID, &e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrPathConflict
		}
		return nil, err
	}
	e.Parameters = splitParameters(params)
	return &e, nil
}

func (s *Postgres) EndpointByID(ctx context.Context, id string) (*domain.Endpoint, error) {
	q := `select ` + endpointCols + endpointJoin + ` where e.id = $1;`
	e, err := scanEndpoint(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (s *Postgres) EndpointByPath(ctx context.Context, path string) (*domain.Endpoint, error) {
	q := `select ` + endpointCols + endpointJoin + ` where e.path = $1;`
	e, err := scanEndpoint(s.db.QueryRow(ctx, q, path))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (s *Postgres) listEndpoints(ctx context.Context, where string, args ...any) ([]domain.Endpoint, error) {
	q := `select ` + endpointCols + endpointJoin + where + ` order by e.created_at desc;`
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Endpoint, 0, 16)
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Postgres) ListEndpointsByOwner(ctx context.Context, ownerID string) ([]domain.Endpoint, error) {
	return s.listEndpoints(ctx, ` where e.user_id = $1`, ownerID)
}

func (s *Postgres) ListEndpointsByProject(ctx context.Context, projectID string) ([]domain.Endpoint, error) {
	return s.listEndpoints(ctx, ` where e.project_id = $1`, projectID)
}

func (s *Postgres) ListAllEndpoints(ctx context.Context) ([]domain.Endpoint, error) {
	return s.listEndpoints(ctx, ``)
}

func (s *Postgres) UpdateEndpoint(ctx context.Context, id, ownerID string, u domain.EndpointUpdate) (bool, error) {
	set, args := updateClauses(u)
	if len(set) == 0 {
		return false, nil
	}
	args = append(args, id, ownerID)
	q := fmt.Sprintf(`update endpoints set %s where id = $%d and user_id = $%d;`,
		strings.Join(set, ", "), len(args)-1, len(args))

	ct, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, domain.ErrPathConflict
		}
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Postgres) DeleteEndpoint(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `delete from endpoints where id = $1 and user_id = $2;`
	ct, err := s.db.Exec(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

const pageCols = `
g.id, g.path, g.html_content, g.project_id, g.user_id, g.created_at, p.name, u.email`

const pageJoin = `
from pages g
left join projects p on p.id = g.project_id
left join users u on u.id = g.user_id`

func scanPage(row pgx.Row) (*domain.Page, error) {
	var p domain.Page
	err := row.Scan(&p.ID, &p.Path, &p.HTMLContent, &p.ProjectID, &p.OwnerID,
		&p.CreatedAt, &p.ProjectName, &p.UserEmail)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) CreatePage(ctx context.Context, pg domain.Page) (*domain.Page, error) {
	if pg.ID == "" {
		pg.ID = uuid.New().String()
	}

	const q = `
insert into pages (id, path, html_content, project_id, user_id)
values ($1, $2, $3, $4, $5)
returning id, path, html_content, project_id, user_id, created_at;
`
	var p domain.Page
	err := s.db.QueryRow(ctx, q, pg.ID, pg.Path, pg.HTMLContent, pg.ProjectID, pg.OwnerID).
		Scan(&p.ID, &p.Path, &p.HTMLContent, &p.ProjectID, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrPathConflict
		}
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) PageByID(ctx context.Context, id string) (*domain.Page, error) {
	q := `select ` + pageCols + pageJoin + ` where g.id = $1;`
	p, err := scanPage(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (s *Postgres) PageByPath(ctx context.Context, path string) (*domain.Page, error) {
	q := `select ` + pageCols + pageJoin + ` where g.path = $1;`
	p, err := scanPage(s.db.QueryRow(ctx, q, path))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (s *Postgres) listPages(ctx context.Context, where string, args ...any) ([]domain.Page, error) {
	q := `select ` + pageCols + pageJoin + where + ` order by g.created_at desc;`
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Page, 0, 16)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Postgres) ListPagesByOwner(ctx context.Context, ownerID string) ([]domain.Page, error) {
	return s.listPages(ctx, ` where g.user_id = $1`, ownerID)
}

func (s *Postgres) ListPagesByProject(ctx context.Context, projectID string) ([]domain.Page, error) {
	return s.listPages(ctx, ` where g.project_id = $1`, projectID)
}

func (s *Postgres) ListAllPages(ctx context.Context) ([]domain.Page, error) {
	return s.listPages(ctx, ``)
}

func (s *Postgres) UpdatePage(ctx context.Context, id, ownerID string, u domain.PageUpdate) (bool, error) {
	var set []string
	var args []any
	if u.Path != nil {
		args = append(args, *u.Path)
		set = append(set, fmt.Sprintf("path = $%d", len(args)))
	}
	if u.HTMLContent != nil {
		args = append(args, *u.HTMLContent)
		set = append(set, fmt.Sprintf("html_content = $%d", len(args)))
	}
	if len(set) == 0 {
		return false, nil
	}
	args = append(args, id, ownerID)
	q := fmt.Sprintf(`update pages set %s where id = $%d and user_id = $%d;`,
		strings.Join(set, ", "), len(args)-1, len(args))

	ct, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, domain.ErrPathConflict
		}
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Postgres) DeletePage(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `delete from pages where id = $1 and user_id = $2;`
	ct, err := s.db.Exec(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func updateClauses(u domain.EndpointUpdate) ([]string, []any) {
	var set []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Path != nil {
		add("path", *u.Path)
	}
	if u.Parameters != nil {
		add("parameters", joinParameters(*u.Parameters))
	}
	if u.Code != nil {
		add("code", *u.Code)
	}
	if u.Language != nil {
		add("language", *u.Language)
	}
	if u.HTTPMethod != nil {
		add("http_method", *u.HTTPMethod)
	}
	return set, args
}
