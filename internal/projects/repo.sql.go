package projects

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const projectSelect = `SELECT p.id, p.name, p.code, p.address, p.lat, p.lng, p.structure_type, p.destination_use,
	p.construction_year, p.seismic_zone, p.estimated_value, p.floor_area, p.risk_class, p.status, p.owner_id,
	p.total_sensors, p.active_sensors, p.alarms_count, p.created_at, p.updated_at,
	COALESCE(array_agg(pm.user_id ORDER BY pm.user_id) FILTER (WHERE pm.user_id IS NOT NULL), '{}')
FROM projects p
LEFT JOIN project_members pm ON pm.project_id = p.id`

// ListProjects returns every project with its member ids.
func (r *PGRepository) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, projectSelect+` GROUP BY p.id ORDER BY p.created_at DESC, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetProject fetches one project.
func (r *PGRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	project, err := scanProject(r.pool.QueryRow(ctx, projectSelect+` WHERE p.id = $1 GROUP BY p.id`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	var status string
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Address, &p.Coordinates.Lat, &p.Coordinates.Lng, &p.StructureType,
		&p.DestinationUse, &p.ConstructionYear, &p.SeismicZone, &p.EstimatedValue, &p.FloorArea, &p.RiskClass,
		&status, &p.OwnerID, &p.SensorCount, &p.ActiveSensors, &p.AlarmsCount, &p.CreatedAt, &p.UpdatedAt, &p.MemberIDs)
	p.Status = Status(status)
	return p, err
}

var _ Repository = (*PGRepository)(nil)
