package backend

import "github.com/pathwayhq/pathway/pkg/proto"

// invalid reports a failed input check on field as a validation error.
func invalid(field string, err error) error {
	if err == nil {
		return nil
	}
	return proto.NewValidationError(field, "%v", err)
}
