package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// DefaultQueryTimeout bounds a single vendor query.
const DefaultQueryTimeout = 2 * time.Second

const vendorColumns = `id::text, name, COALESCE(domain, ''), slug, COALESCE(logo_url, ''), theme_config, status, created_at`

const (
	findVendorByDomainSQL = `SELECT ` + vendorColumns + ` FROM vendors
WHERE lower(domain) IN ($1, $2) AND status = 'active'
ORDER BY lower(domain) = $1 DESC
LIMIT 1`
	findVendorBySlugSQL = `SELECT ` + vendorColumns + ` FROM vendors
WHERE lower(slug) = $1 AND status = 'active'
LIMIT 1`
	listActiveVendorsSQL = `SELECT ` + vendorColumns + ` FROM vendors
WHERE status = 'active'
ORDER BY name`
	vendorExistsForDomainSQL = `SELECT EXISTS (SELECT 1 FROM vendors WHERE lower(domain) IN ($1, $2))`
)

// Querier is the subset of *pgxpool.Pool (or pgx.Tx) the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VendorRepository reads the externally owned vendors table. It never writes.
type VendorRepository struct {
	db      Querier
	timeout time.Duration
}

func NewVendorRepository(db Querier, timeout time.Duration) *VendorRepository {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &VendorRepository{db: db, timeout: timeout}
}

func (r *VendorRepository) FindByDomain(ctx context.Context, domainName string) (*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	v, err := scanVendor(r.db.QueryRow(ctx, findVendorByDomainSQL, domainName, "www."+domainName))
	return v, mapErr("find_by_domain", err)
}

func (r *VendorRepository) FindBySlug(ctx context.Context, slug string) (*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	v, err := scanVendor(r.db.QueryRow(ctx, findVendorBySlugSQL, slug))
	return v, mapErr("find_by_slug", err)
}

func (r *VendorRepository) ListActive(ctx context.Context) ([]*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.db.Query(ctx, listActiveVendorsSQL)
	if err != nil {
		return nil, mapErr("list_active", err)
	}
	defer rows.Close()
	out := make([]*domain.Vendor, 0)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, mapErr("list_active", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list_active", err)
	}
	return out, nil
}

func (r *VendorRepository) ExistsForDomain(ctx context.Context, domainName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	var exists bool
	if err := r.db.QueryRow(ctx, vendorExistsForDomainSQL, domainName, "www."+domainName).Scan(&exists); err != nil {
		return false, mapErr("exists_for_domain", err)
	}
	return exists, nil
}

// scanVendor decodes one row selected with vendorColumns.
func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var (
		v      domain.Vendor
		theme  []byte
		status string
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Domain, &v.Slug, &v.LogoURL, &theme, &status, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Status = domain.VendorStatus(status)
	if !v.Status.Valid() {
		return nil, &malformedRowError{field: "status", err: errors.New("unknown value " + status)}
	}
	if len(theme) > 0 && string(theme) != "null" {
		var t domain.ThemeConfig
		if err := json.Unmarshal(theme, &t); err != nil {
			return nil, &malformedRowError{field: "theme_config", err: err}
		}
		v.Theme = &t
	}
	return &v, nil
}

type malformedRowError struct {
	field string
	err   error
}

func (e *malformedRowError) Error() string {
	return "malformed vendor " + e.field + ": " + e.err.Error()
}

func (e *malformedRowError) Unwrap() error { return e.err }

// mapErr keeps "no rows" distinct from real failures: the former is ErrVendorNotFound,
// everything else (including malformed rows) is a RepositoryError.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domerrors.ErrVendorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &domerrors.RepositoryError{Op: op + " (" + pgErr.Code + ")", Err: err}
	}
	return domerrors.NewRepositoryError(op, err)
}

var _ ports.VendorRepository = (*VendorRepository)(nil)
