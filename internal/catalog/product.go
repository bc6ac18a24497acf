package catalog

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gt=0"`
	Category    string  `json:"category" validate:"required"`
	InStock     bool    `json:"inStock"`
}

// Draft is a validated create payload with defaults applied. It has no id:
// ids are only ever assigned by the store.
type Draft struct {
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

func (d Draft) product(id string) Product {
	return Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		InStock:     d.InStock,
	}
}

// Patch is a validated update payload. Nil fields were not supplied.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Category == nil && p.InStock == nil
}

// Apply returns p merged over base. The id is never touched.
func (p Patch) Apply(base Product) Product {
	out := base
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.InStock != nil {
		out.InStock = *p.InStock
	}
	return out
}

func SeedProducts() []Product {
	return []Product{
		{ID: "1", Name: "Laptop Pro", Description: "High-performance laptop for professionals", Price: 1200, Category: "Electronics", InStock: true},
		{ID: "2", Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with long battery life", Price: 25, Category: "Accessories", InStock: true},
		{ID: "3", Name: "Mechanical Keyboard", Description: "Durable mechanical keyboard with RGB backlighting", Price: 90, Category: "Accessories", InStock: false},
		{ID: "4", Name: "Smartphone X", Description: "Latest generation smartphone with advanced camera", Price: 999, Category: "Electronics", InStock: true},
		{ID: "5", Name: "Desk Lamp", Description: "Adjustable LED desk lamp with multiple brightness settings", Price: 45, Category: "Home & Office", InStock: true},
		{ID: "6", Name: "External SSD", Description: "Fast and portable solid-state drive for data storage", Price: 150, Category: "Storage", InStock: true},
	}
}
