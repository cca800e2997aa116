package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Rakhulsr/go-tours/app/apperrors"
)

// mergePatch applies a partial JSON document onto a loaded record. Every top-level field named
// in the patch is replaced as a whole, so nested objects and arrays never keep stale values.
// Keys the record does not expose through JSON (ids, hashes, hidden flags) are ignored.
func mergePatch(dst any, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	resetPatchedFields(dst, patch)

	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperrors.NewValidationError(apperrors.FieldError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("invalid %s: expected %s", typeErr.Field, typeErr.Type),
			})
		}
		return &apperrors.BadRequestError{Message: "invalid input data. " + err.Error()}
	}
	return nil
}

// resetPatchedFields zeroes the struct fields of dst whose JSON names appear in patch.
func resetPatchedFields(dst any, patch map[string]any) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if _, ok := patch[name]; ok && v.Field(i).CanSet() {
			v.Field(i).Set(reflect.Zero(t.Field(i).Type))
		}
	}
}

// pick keeps only the allowed keys of a patch.
func pick(patch map[string]any, allowed ...string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, k := range allowed {
		if v, ok := patch[k]; ok {
			out[k] = v
		}
	}
	return out
}
