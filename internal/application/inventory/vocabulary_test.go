package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
)

func TestVocabulary(t *testing.T) {
	v := inventory.NewVocabulary([]string{"Kg", " Caja ", ""}, []string{"Almacén", "Taller"}, false)

	u, ok := v.Unit("KG")
	assert.True(t, ok)
	assert.Equal(t, "Kg", u)

	u, ok = v.Unit("caja")
	assert.True(t, ok)
	assert.Equal(t, "Caja", u)

	_, ok = v.Unit("")
	assert.False(t, ok)
	_, ok = v.Unit("Litro")
	assert.False(t, ok)

	// forma descompuesta (e + acento combinante)
	l, ok := v.Location("almace\u0301n")
	assert.True(t, ok)
	assert.Equal(t, "Almacén", l)

	l, ok = v.Location("  ")
	assert.True(t, ok, "vacío = sin departamento")
	assert.Equal(t, "", l)

	_, ok = v.Location("Bodega")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"Almacén", "Taller"}, v.Locations())
}

func TestDeriveSKU(t *testing.T) {
	assert.Equal(t, "A42", inventory.DeriveSKU("A", 42))
	assert.Equal(t, "INV-7", inventory.DeriveSKU("INV-", 7))
}
