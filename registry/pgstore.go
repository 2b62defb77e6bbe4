package registry

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
	"github.com/SocAIty/fastsdk-go/pkg/database"
	"github.com/SocAIty/fastsdk-go/pkg/telemetry"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PostgresStore is a Store backed by a single "services" table. Save also
// writes category/family_id into their own columns, but no query reads
// them: List loads and decodes raw_json for every row.
type PostgresStore struct {
	db database.DB
}

// NewPostgresStore wraps an already-open database.DB. Run Migrate before
// first use in a fresh database.
func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies the registry's embedded goose migrations.
func Migrate(ctx context.Context, pdb *database.PostgresDB) error {
	migrator := database.NewMigrator(pdb.Pool(), migrationFS, "migrations")
	return migrator.Up(ctx)
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*model.ServiceDefinition, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresStore.Load")
	defer span.End()

	const query = `
		SELECT raw_json FROM services WHERE id = $1 OR normalized_name = $1
	`
	var raw []byte
	err := s.db.QueryRow(ctx, query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStoreMiss
		}
		return nil, apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not load service %s", id))
	}
	var svc model.ServiceDefinition
	if err := json.Unmarshal(raw, &svc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("service %s record is corrupt", id))
	}
	return &svc, nil
}

func (s *PostgresStore) Save(ctx context.Context, svc *model.ServiceDefinition) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresStore.Save")
	defer span.End()

	raw, err := json.Marshal(svc)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "could not marshal service")
	}

	const query = `
		INSERT INTO services (
			id, display_name, normalized_name, specification, version,
			category, family_id, raw_json, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			display_name    = EXCLUDED.display_name,
			normalized_name = EXCLUDED.normalized_name,
			specification   = EXCLUDED.specification,
			version         = EXCLUDED.version,
			category        = EXCLUDED.category,
			family_id       = EXCLUDED.family_id,
			raw_json        = EXCLUDED.raw_json
	`
	_, err = s.db.Exec(ctx, query,
		svc.ID,
		svc.DisplayName,
		model.NormalizeName(svc.DisplayName),
		string(svc.Specification),
		svc.Version,
		svc.Category,
		svc.FamilyID,
		raw,
		svc.CreatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not save service %s", svc.ID))
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresStore.Delete")
	defer span.End()

	_, err := s.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not delete service %s", id))
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*model.ServiceDefinition, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresStore.List")
	defer span.End()

	rows, err := s.db.Query(ctx, `SELECT raw_json FROM services ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not list services")
	}
	defer rows.Close()

	var out []*model.ServiceDefinition
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "could not scan service row")
		}
		var svc model.ServiceDefinition
		if err := json.Unmarshal(raw, &svc); err != nil {
			continue
		}
		out = append(out, &svc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) VersionIndex(ctx context.Context) (map[string]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresStore.VersionIndex")
	defer span.End()

	rows, err := s.db.Query(ctx, `SELECT id, version FROM services`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not read version index")
	}
	defer rows.Close()

	idx := make(map[string]string)
	for rows.Next() {
		var id, version string
		if err := rows.Scan(&id, &version); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "could not scan version index row")
		}
		idx[id] = version
	}
	return idx, rows.Err()
}
