package dto

// CategoriaResponse is one entry of the fixed product category catalog.
type CategoriaResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
