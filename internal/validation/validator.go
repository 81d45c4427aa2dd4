// Package validation checks request bodies against JSON schemas before
// they are decoded into service inputs.
package validation

import (
	"fmt"
	"strings"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names accepted by Validator.Validate.
const (
	Login                = "login"
	CreateUser           = "create_user"
	CreateMedicalRequest = "create_medical_request"
	AdminTransition      = "admin_transition"
	LecturerTransition   = "lecturer_transition"
	Enrollments          = "enrollments"
)

var objectID = map[string]interface{}{"type": "string", "pattern": "^[0-9a-fA-F]{24}$"}

var statuses = []interface{}{"pending", "approved_by_officer", "forwarded_to_dept", "approved_by_dept", "rejected"}

func definitions() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		Login: {
			"type":     "object",
			"required": []interface{}{"email", "password"},
			"properties": map[string]interface{}{
				"email":    map[string]interface{}{"type": "string", "minLength": 1},
				"password": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
		CreateUser: {
			"type":     "object",
			"required": []interface{}{"name", "email", "password", "role"},
			"properties": map[string]interface{}{
				"name":      map[string]interface{}{"type": "string", "minLength": 1},
				"email":     map[string]interface{}{"type": "string", "minLength": 3},
				"password":  map[string]interface{}{"type": "string", "minLength": 8},
				"role":      map[string]interface{}{"enum": []interface{}{"student", "lecturer", "admin"}},
				"adminType": map[string]interface{}{"enum": []interface{}{"", "medical_officer", "registrar"}},
			},
		},
		CreateMedicalRequest: {
			"type":     "object",
			"required": []interface{}{"reason", "startDate", "endDate"},
			"properties": map[string]interface{}{
				"reason":         map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 2000},
				"startDate":      map[string]interface{}{"type": "string", "minLength": 10},
				"endDate":        map[string]interface{}{"type": "string", "minLength": 10},
				"certificateRef": map[string]interface{}{"type": "string"},
			},
		},
		AdminTransition: {
			"type":     "object",
			"required": []interface{}{"status"},
			"properties": map[string]interface{}{
				"status":        map[string]interface{}{"enum": statuses},
				"adminComments": map[string]interface{}{"type": "string", "maxLength": 2000},
				"forwardedTo":   objectID,
			},
		},
		LecturerTransition: {
			"type":     "object",
			"required": []interface{}{"id", "status"},
			"properties": map[string]interface{}{
				"id":            objectID,
				"status":        map[string]interface{}{"enum": statuses},
				"adminComments": map[string]interface{}{"type": "string", "maxLength": 2000},
			},
		},
		Enrollments: {
			"type":     "object",
			"required": []interface{}{"modules"},
			"properties": map[string]interface{}{
				"modules": map[string]interface{}{"type": "array", "items": objectID},
			},
		},
	}
}

// Validator holds the compiled request schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every request schema.
func New() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for name, def := range definitions() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// Validate checks body against the named schema. Malformed JSON and schema
// violations are both reported as validation errors.
func (v *Validator) Validate(name string, body []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed JSON body: %w", apperrors.ErrValidation)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%s: %w", strings.Join(errs, "; "), apperrors.ErrValidation)
	}
	return nil
}
