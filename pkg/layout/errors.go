package layout

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// error kinds returned by the planner, check them with errors.Is
var (
	ErrSchema     = errors.New("schema error")
	ErrStructural = errors.New("structural error")
	ErrDuplicate  = errors.New("duplicate error")
	ErrNotFound   = errors.New("not found error")
	ErrOrdering   = errors.New("ordering error")
	ErrCapacity   = errors.New("capacity error")
	ErrConflict   = errors.New("conflict error")
	ErrMismatch   = errors.New("mismatch error")
)

var kindNames = map[error]string{
	ErrSchema:     "SchemaError",
	ErrStructural: "StructuralError",
	ErrDuplicate:  "DuplicateError",
	ErrNotFound:   "NotFoundError",
	ErrOrdering:   "OrderingError",
	ErrCapacity:   "CapacityError",
	ErrConflict:   "ConflictError",
	ErrMismatch:   "MismatchError",
}

// PlanError is a planning failure of a given kind. Key identifies the entity
// the failure is attributed to: a disk device, a partition path, a volume or
// a group name.
type PlanError struct {
	Kind    error
	Key     string
	Message string
}

func (e *PlanError) Error() string {
	return e.Message
}

func (e *PlanError) Unwrap() error {
	return e.Kind
}

func newError(kind error, key string, format string, args ...interface{}) *PlanError {
	return &PlanError{
		Kind:    kind,
		Key:     key,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindName returns the taxonomy name of err, e.g. "CapacityError", or
// "InternalError" when err is not a planner error.
func KindName(err error) string {
	var pe *PlanError
	if errors.As(err, &pe) {
		if name, ok := kindNames[pe.Kind]; ok {
			return name
		}
	}
	for kind, name := range kindNames {
		if errors.Is(err, kind) {
			return name
		}
	}
	return "InternalError"
}

// fieldError turns the first field violation into a PlanError attributed to key
func fieldError(key string, errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}

	kind := ErrSchema
	if errs[0].Type == field.ErrorTypeDuplicate {
		kind = ErrDuplicate
	}
	return newError(kind, key, "%s", errs[0].Error())
}
