package elements

import "github.com/buildstation/voidmap/pkg/errors"

var (
	errEmptyGlobalID   = errors.NewValidationError("global_id", "", "must not be empty")
	errInvalidType     = errors.NewValidationError("type", nil, "must be a supported element type")
	errInvalidStatus   = errors.NewValidationError("status", nil, "must be new, active, or deleted")
	errInvalidApproval = errors.NewValidationError("approval", nil, "must be pending, approved, or rejected")
)
