package collection

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vbonduro/pingallery/internal/domain"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// Input is the body accepted when creating a collection.
type Input struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Photos      []domain.Photo `json:"photos"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Photos      *[]domain.Photo `json:"photos"`
}

// ValidateInput trims the name and description and checks them. The returned
// Input is the normalized copy that should be handed to the store.
func ValidateInput(in Input) (Input, error) {
	var fields []FieldError

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	fields = append(fields, checkName(in.Name)...)
	fields = append(fields, checkDescription(in.Description)...)
	fields = append(fields, checkPhotos(in.Photos)...)

	if len(fields) > 0 {
		return Input{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

// ValidatePatch applies the same rules as ValidateInput to the fields present
// in p.
func ValidatePatch(p Patch) (Patch, error) {
	var fields []FieldError

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
		fields = append(fields, checkName(name)...)
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
		fields = append(fields, checkDescription(desc)...)
	}
	if p.Photos != nil {
		fields = append(fields, checkPhotos(*p.Photos)...)
	}

	if len(fields) > 0 {
		return Patch{}, &ValidationError{Fields: fields}
	}
	return p, nil
}

func checkName(name string) []FieldError {
	switch {
	case name == "":
		return []FieldError{{Field: "name", Message: "name is required"}}
	case utf8.RuneCountInString(name) > MaxNameLength:
		return []FieldError{{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}}
	}
	return nil
}

func checkDescription(desc string) []FieldError {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return []FieldError{{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)}}
	}
	return nil
}

func checkPhotos(photos []domain.Photo) []FieldError {
	var fields []FieldError
	for i := range photos {
		if strings.TrimSpace(photos[i].ID) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("photos[%d].id", i), Message: "photo id is required"})
		}
	}
	return fields
}
