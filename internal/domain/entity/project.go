package entity

import "github.com/shopspring/decimal"

// ProjectComponent línea del BOM de un proyecto: un componente que requiere
// MaterialQuantity unidades de material por cada unidad del componente.
// Cantidad total requerida = MaterialQuantity * Quantity.
type ProjectComponent struct {
	ComponentID      string
	Name             string
	MaterialRef      ItemRef
	MaterialQuantity decimal.Decimal // material por unidad de componente
	Quantity         decimal.Decimal // multiplicador de componentes en el proyecto
}

// RequiredQuantity cantidad total de material que exige la línea.
func (c ProjectComponent) RequiredQuantity() decimal.Decimal {
	return c.MaterialQuantity.Mul(c.Quantity)
}
