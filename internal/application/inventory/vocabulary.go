package inventory

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// Vocabularios por defecto (formulario original + familias de unidades de conteo, peso, volumen,
// longitud y envase).
var (
	DefaultUnits     = []string{"Unitario", "Kg", "Gramo", "Litro", "Ml", "Metro", "Caja", "Paquete"}
	DefaultLocations = []string{"Almacén", "Taller", "Oficina", "Tienda"}
)

// Vocabulary resuelve unidades y departamentos contra los valores configurados.
// La comparación ignora mayúsculas y formas Unicode; se devuelve siempre el valor canónico.
type Vocabulary struct {
	units         map[string]string
	locations     map[string]string
	freeFormUnits bool
}

// NewVocabulary construye el vocabulario. Con freeFormUnits cualquier unidad no vacía es válida.
func NewVocabulary(units, locations []string, freeFormUnits bool) Vocabulary {
	v := Vocabulary{
		units:         make(map[string]string, len(units)),
		locations:     make(map[string]string, len(locations)),
		freeFormUnits: freeFormUnits,
	}
	for _, u := range units {
		if c := normalizeText(u); c != "" {
			v.units[foldKey(c)] = c
		}
	}
	for _, l := range locations {
		if c := normalizeText(l); c != "" {
			v.locations[foldKey(c)] = c
		}
	}
	return v
}

// Unit devuelve la unidad canónica o false si no pertenece al vocabulario.
func (v Vocabulary) Unit(s string) (string, bool) {
	s = normalizeText(s)
	if s == "" {
		return "", false
	}
	if c, ok := v.units[foldKey(s)]; ok {
		return c, true
	}
	if v.freeFormUnits {
		return s, true
	}
	return "", false
}

// Location devuelve el departamento canónico. Vacío es válido (sin departamento).
func (v Vocabulary) Location(s string) (string, bool) {
	s = normalizeText(s)
	if s == "" {
		return entity.NoLocation, true
	}
	c, ok := v.locations[foldKey(s)]
	return c, ok
}

// Units lista las unidades configuradas.
func (v Vocabulary) Units() []string {
	out := make([]string, 0, len(v.units))
	for _, u := range v.units {
		out = append(out, u)
	}
	return out
}

// Locations lista los departamentos configurados.
func (v Vocabulary) Locations() []string {
	out := make([]string, 0, len(v.locations))
	for _, l := range v.locations {
		out = append(out, l)
	}
	return out
}

// DeriveSKU genera el SKU a partir del ID asignado por el store (ej. "A" + 42 = "A42").
func DeriveSKU(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func foldKey(s string) string {
	return cases.Fold().String(s)
}
