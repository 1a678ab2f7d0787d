// Package compare holds the pure logic behind the comparison page: row
// layout, selection, search, uncertainty scores, export and label lookup.
// Nothing here touches the network or the console session.
package compare

import "github.com/maltedev/product-compare/internal/models"

// State is the catalog snapshot the page renders from. It is loaded once.
type State struct {
	Momo      []models.Product
	Pchome    []models.Product
	MaxLength int
}

func NewState(momo, pchome []models.Product) *State {
	if momo == nil {
		momo = []models.Product{}
	}
	if pchome == nil {
		pchome = []models.Product{}
	}
	return &State{
		Momo:      momo,
		Pchome:    pchome,
		MaxLength: len(pchome),
	}
}

func (s *State) FindMomo(id models.ProductID) (*models.Product, bool) {
	return find(s.Momo, id)
}

func (s *State) FindPchome(id models.ProductID) (*models.Product, bool) {
	return find(s.Pchome, id)
}

func (s *State) FindMomoBySKU(sku string) (*models.Product, bool) {
	for i := range s.Momo {
		if s.Momo[i].SKU == sku {
			return &s.Momo[i], true
		}
	}
	return nil, false
}

func find(products []models.Product, id models.ProductID) (*models.Product, bool) {
	for i := range products {
		if products[i].ID == id {
			return &products[i], true
		}
	}
	return nil, false
}
