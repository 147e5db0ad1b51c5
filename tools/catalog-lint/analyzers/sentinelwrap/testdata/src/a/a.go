package a

import (
	"fmt"

	"entities"
)

func bad(field string) error {
	return fmt.Errorf("%v: unknown field %q", entities.ErrValidation, field) // want "entities.ErrValidation formatted without %w"
}

func good(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", entities.ErrValidation)
	}
	return fmt.Errorf("record %s: %w", id, entities.ErrNotFound)
}

func unrelated(err error) error {
	return fmt.Errorf("saving: %v", err)
}
