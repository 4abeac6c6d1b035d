package entity

import "fmt"

// ItemType tipo de ítem rastreable en el almacén.
type ItemType string

// Tipos de ítem válidos.
const (
	ItemTypeMaterial ItemType = "material"
	ItemTypeProduct  ItemType = "product"
	ItemTypeTool     ItemType = "tool"
)

// Valid indica si el tipo de ítem es uno de los conocidos.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeMaterial, ItemTypeProduct, ItemTypeTool:
		return true
	}
	return false
}

// ItemRef clave compuesta (tipo + id) de un ítem rastreable.
// Es la única referencia que el resto del sistema usa para hablar de stock:
// los picking lists nunca referencian cantidades, solo ItemRefs.
type ItemRef struct {
	Type ItemType
	ID   string
}

// NewItemRef construye la referencia validando tipo e id.
func NewItemRef(itemType ItemType, id string) (ItemRef, error) {
	if !itemType.Valid() || id == "" {
		return ItemRef{}, fmt.Errorf("item ref inválido: type=%q id=%q", itemType, id)
	}
	return ItemRef{Type: itemType, ID: id}, nil
}

// IsZero indica si la referencia está vacía.
func (r ItemRef) IsZero() bool {
	return r.Type == "" && r.ID == ""
}

// String representación "tipo:id" para logs y razones de transacción.
func (r ItemRef) String() string {
	return string(r.Type) + ":" + r.ID
}
