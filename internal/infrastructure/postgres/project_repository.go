package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo lectura del BOM de proyectos sobre PostgreSQL. El motor no es
// dueño de estas tablas: pertenecen al módulo de proyectos.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

// Exists verifica que el proyecto exista.
func (r *ProjectRepo) Exists(ctx context.Context, projectID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("project exists: %w", err)
	}
	return exists, nil
}

// GetComponents expande el BOM del proyecto: una fila por componente con su
// material, cantidad de material por unidad y multiplicador en el proyecto.
func (r *ProjectRepo) GetComponents(ctx context.Context, projectID string) ([]entity.ProjectComponent, error) {
	query := `
		SELECT c.id, c.name, c.material_type, c.material_id, c.material_quantity, pc.quantity
		FROM project_components pc
		JOIN components c ON c.id = pc.component_id
		WHERE pc.project_id = $1
		ORDER BY c.name`
	rows, err := r.q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project components: %w", err)
	}
	defer rows.Close()
	var components []entity.ProjectComponent
	for rows.Next() {
		var c entity.ProjectComponent
		if err := rows.Scan(&c.ComponentID, &c.Name, &c.MaterialRef.Type, &c.MaterialRef.ID,
			&c.MaterialQuantity, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scan project component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}
