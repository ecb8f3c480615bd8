package model

// Categoria classifies rental products. Stored as its lowercase code.
type Categoria string

const (
	CategoriaVajilla     Categoria = "vajilla"
	CategoriaSillas      Categoria = "sillas"
	CategoriaMesas       Categoria = "mesas"
	CategoriaManteles    Categoria = "manteles"
	CategoriaCubiertos   Categoria = "cubiertos"
	CategoriaCristaleria Categoria = "cristaleria"
	CategoriaDecoracion  Categoria = "decoracion"
	CategoriaOtros       Categoria = "otros"
)

// Categorias lists every category in display order.
var Categorias = []Categoria{
	CategoriaVajilla,
	CategoriaSillas,
	CategoriaMesas,
	CategoriaManteles,
	CategoriaCubiertos,
	CategoriaCristaleria,
	CategoriaDecoracion,
	CategoriaOtros,
}

var categoriaLabels = map[Categoria]string{
	CategoriaVajilla:     "Vajilla",
	CategoriaSillas:      "Sillas",
	CategoriaMesas:       "Mesas",
	CategoriaManteles:    "Manteles",
	CategoriaCubiertos:   "Cubiertos",
	CategoriaCristaleria: "Cristalería",
	CategoriaDecoracion:  "Decoración",
	CategoriaOtros:       "Otros",
}

// Label returns the human-readable name, or the raw code if unknown.
func (c Categoria) Label() string {
	if l, ok := categoriaLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Categoria) Valida() bool {
	_, ok := categoriaLabels[c]
	return ok
}
