package picking

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// PDFUseCase genera la hoja de picking imprimible para bodega.
type PDFUseCase struct {
	uc        *PickingUseCase
	generator SheetGenerator
}

// NewPDFUseCase construye el caso de uso de PDF.
func NewPDFUseCase(uc *PickingUseCase, generator SheetGenerator) *PDFUseCase {
	return &PDFUseCase{uc: uc, generator: generator}
}

// GenerateSheet carga la lista y devuelve los bytes del PDF.
func (p *PDFUseCase) GenerateSheet(ctx context.Context, listID string) ([]byte, error) {
	list, err := p.uc.Get(ctx, listID)
	if err != nil {
		return nil, err
	}
	if p.generator == nil {
		return nil, domain.ErrBusinessRule
	}
	return p.generator.GeneratePickingSheet(ctx, list)
}
