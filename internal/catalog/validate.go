package catalog

import "strings"

// Payload is a decoded JSON object as received from the client. Values keep
// their JSON types: string, float64, bool, nil, []any, map[string]any.
type Payload map[string]any

const (
	fieldName        = "name"
	fieldPrice       = "price"
	fieldCategory    = "category"
	fieldDescription = "description"
	fieldInStock     = "inStock"
)

const (
	msgCreateName        = "Product name is required and must be a non-empty string."
	msgCreatePrice       = "Product price is required and must be a positive number."
	msgCreateCategory    = "Product category is required and must be a non-empty string."
	msgCreateDescription = "Product description must be a string."
	msgCreateInStock     = "Product inStock must be a boolean."

	msgUpdateName        = "Product name must be a non-empty string if provided."
	msgUpdatePrice       = "Product price must be a positive number if provided."
	msgUpdateCategory    = "Product category must be a non-empty string if provided."
	msgUpdateDescription = "Product description must be a string if provided."
	msgUpdateInStock     = "Product inStock must be a boolean if provided."
	msgUpdateNoFields    = "No valid fields provided for update."
	msgUpdateEmpty       = "Request body cannot be empty for update."
)

// ValidateCreate checks a create payload field by field (name, price,
// category, description, inStock) and stops at the first violation.
// inStock defaults to true.
func ValidateCreate(p Payload) (Draft, error) {
	d := Draft{InStock: true}

	name, ok := nonBlankString(p[fieldName])
	if !ok {
		return Draft{}, Validation(msgCreateName)
	}
	d.Name = name

	price, ok := positiveNumber(p[fieldPrice])
	if !ok {
		return Draft{}, Validation(msgCreatePrice)
	}
	d.Price = price

	category, ok := nonBlankString(p[fieldCategory])
	if !ok {
		return Draft{}, Validation(msgCreateCategory)
	}
	d.Category = category

	if v, present := p[fieldDescription]; present {
		s, ok := v.(string)
		if !ok {
			return Draft{}, Validation(msgCreateDescription)
		}
		d.Description = s
	}

	if v, present := p[fieldInStock]; present {
		b, ok := v.(bool)
		if !ok {
			return Draft{}, Validation(msgCreateInStock)
		}
		d.InStock = b
	}

	return d, nil
}

// ValidateUpdate applies the create rules to whichever fields are present.
// Keys it does not know are ignored, but a body made only of such keys is
// rejected, and so is an empty body.
func ValidateUpdate(p Payload) (Patch, error) {
	var patch Patch

	if v, present := p[fieldName]; present {
		s, ok := nonBlankString(v)
		if !ok {
			return Patch{}, Validation(msgUpdateName)
		}
		patch.Name = &s
	}

	if v, present := p[fieldPrice]; present {
		f, ok := positiveNumber(v)
		if !ok {
			return Patch{}, Validation(msgUpdatePrice)
		}
		patch.Price = &f
	}

	if v, present := p[fieldCategory]; present {
		s, ok := nonBlankString(v)
		if !ok {
			return Patch{}, Validation(msgUpdateCategory)
		}
		patch.Category = &s
	}

	if v, present := p[fieldDescription]; present {
		s, ok := v.(string)
		if !ok {
			return Patch{}, Validation(msgUpdateDescription)
		}
		patch.Description = &s
	}

	if v, present := p[fieldInStock]; present {
		b, ok := v.(bool)
		if !ok {
			return Patch{}, Validation(msgUpdateInStock)
		}
		patch.InStock = &b
	}

	if patch.Empty() && len(p) > 0 {
		return Patch{}, Validation(msgUpdateNoFields)
	}
	if len(p) == 0 {
		return Patch{}, Validation(msgUpdateEmpty)
	}

	return patch, nil
}

func nonBlankString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func positiveNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}
