// Package postgres carries the schema bootstrap for the relational
// store; the connection pool is opened by internal/bootstrap.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied idempotently at boot. Path uniqueness on endpoints
// and pages is the constraint the whole route core leans on.
const schema = `
create table if not exists users (
    id uuid primary key default gen_random_uuid(),
    external_uid text not null unique,
    email text,
    display_name text,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create table if not exists projects (
    id text primary key,
    name text not null,
    description text,
    user_id uuid not null references users(id),
    created_at timestamptz not null default now()
);

create table if not exists endpoints (
    id uuid primary key,
    path text not null unique,
    parameters text,
    code text not null,
    language text not null default 'javascript',
    http_method text not null default 'GET',
    project_id text not null,
    user_id uuid not null,
    created_at timestamptz not null default now()
);

create table if not exists pages (
    id uuid primary key,
    path text not null unique,
    html_content text not null,
    project_id text not null,
    user_id uuid not null,
    created_at timestamptz not null default now()
);

create index if not exists idx_endpoints_user on endpoints(user_id);
create index if not exists idx_endpoints_project on endpoints(project_id);
create index if not exists idx_pages_user on pages(user_id);
create index if not exists idx_pages_project on pages(project_id);
`

// EnsureSchema creates the tables the route core reads and writes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
