package meaning

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a client request is malformed
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "invalid request: " + joinFieldErrors(e.Errors)
}

// ShapeError is returned when an assembled response does not satisfy its schema.
// It signals a server side defect, not a client error.
type ShapeError struct {
	Errors []FieldError
}

func (e *ShapeError) Error() string {
	return "invalid response: " + joinFieldErrors(e.Errors)
}

func joinFieldErrors(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	maxWords int
}

func NewValidator(maxWords int) (*Validator, error) {
	if maxWords < 1 {
		return nil, fmt.Errorf("max words must be positive, got %d", maxWords)
	}
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v := &Validator{
		validate: validate,
		trans:    trans,
		maxWords: maxWords,
	}
	validate.RegisterStructValidation(v.validateWordsCount, Request{})
	return v, nil
}

func (v *Validator) validateWordsCount(sl validator.StructLevel) {
	req := sl.Current().Interface().(Request)
	if len(req.Words) > v.maxWords {
		sl.ReportError(req.Words, "words", "Words", "max", strconv.Itoa(v.maxWords))
	}
}

// MaxWords returns upper bound on number of words in request
func (v *Validator) MaxWords() int {
	return v.maxWords
}

// Request checks req syntactically. Password value isn't inspected here.
func (v *Validator) Request(req *Request) error {
	if req == nil {
		return &ValidationError{Errors: []FieldError{{Field: "body", Message: "body is required"}}}
	}
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	fieldErrors, err := v.translate(err, "")
	if err != nil {
		return err
	}
	return &ValidationError{Errors: fieldErrors}
}

// Response checks that every result satisfies response schema
func (v *Validator) Response(resp Response) error {
	var fieldErrors []FieldError
	for i := range resp {
		err := v.validate.Struct(&resp[i])
		if err == nil {
			continue
		}
		translated, err := v.translate(err, fmt.Sprintf("[%d].", i))
		if err != nil {
			return err
		}
		fieldErrors = append(fieldErrors, translated...)
	}
	if len(fieldErrors) > 0 {
		return &ShapeError{Errors: fieldErrors}
	}
	return nil
}

func (v *Validator) translate(err error, prefix string) ([]FieldError, error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	result := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		result = append(result, FieldError{
			Field:   prefix + fieldPath(fe.Namespace()),
			Message: fe.Translate(v.trans),
		})
	}
	return result, nil
}

// fieldPath strips the root struct name from namespace
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
