package config

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// Validation error codes (E100-E199)
const (
	ErrSchemaViolation = "E101" // value does not match the schema
	ErrUnknownMeasure  = "E102" // interest measure is not registered
	ErrInvalidNumber   = "E103" // NaN or infinite parameter
	ErrSchemaLoad      = "E104" // embedded schema failed to compile
)

//go:embed schema.cue
var schemaSource string

// ValidationError describes one problem with a config.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks c against the #Config schema and the measure registry.
// All problems are returned; an empty result means c is usable.
func Validate(c *Config) []ValidationError {
	var errs []ValidationError

	for field, v := range map[string]float64{
		KeyMinimalImprovement: c.MinimalImprovement,
		KeyRelevanceRange:     c.RelevanceRange,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "must be a finite number",
				Code:    ErrInvalidNumber,
			})
		}
	}
	if len(errs) > 0 {
		// CUE cannot encode non-finite floats.
		sortErrors(errs)
		return errs
	}

	errs = append(errs, schemaErrors(c)...)
	if len(errs) > 0 {
		return errs
	}

	reg, err := c.Registry()
	if err != nil {
		return []ValidationError{{Field: KeyMeasures, Message: err.Error(), Code: ErrSchemaViolation}}
	}
	if _, ok := reg.Lookup(c.Measure); !ok {
		errs = append(errs, ValidationError{
			Field:   KeyMeasure,
			Message: fmt.Sprintf("unknown measure %q: register it under %s or use one of %s", c.Measure, KeyMeasures, strings.Join(reg.Names(), ", ")),
			Code:    ErrUnknownMeasure,
		})
	}
	return errs
}

func schemaErrors(c *Config) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrSchemaLoad}}
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return []ValidationError{{Field: "config", Message: err.Error(), Code: ErrSchemaViolation}}
	}

	err := def.Unify(value).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		errs = append(errs, ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrSchemaViolation,
		})
	}
	sortErrors(errs)
	return errs
}

func sortErrors(errs []ValidationError) {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Field < errs[j].Field
	})
}
