package db

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/config"
	"workforce/internal/platform/querier"
)

// Seed creates the default tenant, its roles and the first HR account in a
// single transaction. It is safe to run on every start and returns the tenant
// id so demo data can be attached to it.
func Seed(ctx context.Context, pool *Pool, cfg config.Config) (string, error) {
	var tenantID string
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var err error
		if tenantID, err = upsertID(ctx, tx,
			"INSERT INTO tenants (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id",
			cfg.SeedTenantName); err != nil {
			return fmt.Errorf("tenant: %w", err)
		}

		permIDs := make(map[string]string, len(auth.DefaultPermissions))
		for _, key := range auth.DefaultPermissions {
			id, err := upsertID(ctx, tx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key RETURNING id", key)
			if err != nil {
				return fmt.Errorf("permission %s: %w", key, err)
			}
			permIDs[key] = id
		}

		roleIDs, err := seedRoles(ctx, tx, tenantID, permIDs)
		if err != nil {
			return err
		}

		if err := seedAdmin(ctx, tx, tenantID, roleIDs[auth.RoleHR], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("admin user: %w", err)
		}

		_, err = tx.Exec(ctx, `
      INSERT INTO tenant_settings (tenant_id, email_notifications_enabled, email_from)
      VALUES ($1, $2, $3)
      ON CONFLICT (tenant_id) DO NOTHING
    `, tenantID, cfg.EmailEnabled, cfg.EmailFrom)
		return err
	})
	if err != nil {
		return "", err
	}
	return tenantID, nil
}

// seedRoles makes sure every role exists and holds at least its default
// grants. Extra grants added by an administrator are left alone.
func seedRoles(ctx context.Context, db querier.Querier, tenantID string, permIDs map[string]string) (map[string]string, error) {
	names := make([]string, 0, len(auth.RolePermissions))
	for name := range auth.RolePermissions {
		names = append(names, name)
	}
	sort.Strings(names)

	roleIDs := make(map[string]string, len(names))
	for _, name := range names {
		roleID, err := upsertID(ctx, db, `
      INSERT INTO roles (tenant_id, name) VALUES ($1, $2)
      ON CONFLICT (tenant_id, name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id
    `, tenantID, name)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", name, err)
		}
		roleIDs[name] = roleID

		for _, key := range auth.RolePermissions[name] {
			permID, ok := permIDs[key]
			if !ok {
				return nil, fmt.Errorf("role %s: unknown permission %s", name, key)
			}
			if _, err := db.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID); err != nil {
				return nil, err
			}
		}
	}
	return roleIDs, nil
}

func seedAdmin(ctx context.Context, db querier.Querier, tenantID, roleID, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (email) DO NOTHING
  `, tenantID, email, hash, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		slog.Info("seed admin created", "email", email)
	}
	return nil
}

func upsertID(ctx context.Context, db querier.Querier, sql string, args ...any) (string, error) {
	var id string
	err := db.QueryRow(ctx, sql, args...).Scan(&id)
	return id, err
}
