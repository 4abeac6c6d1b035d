package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProjectRepository puerto de solo lectura hacia el colaborador externo que
// conoce proyectos y su BOM. El motor no es dueño de estas tablas.
type ProjectRepository interface {
	Exists(ctx context.Context, projectID string) (bool, error)
	// GetComponents expande el BOM del proyecto en pares (material, cantidad).
	GetComponents(ctx context.Context, projectID string) ([]entity.ProjectComponent, error)
}
