package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"campusmart/internal/domain"
)

// CheckoutForm is the shipping/pickup data posted at checkout.
type CheckoutForm struct {
	Fullname       string `form:"fullname" json:"fullname" validate:"required,max=80"`
	Phone          string `form:"phone" json:"phone" validate:"required,phone"`
	PickupLocation string `form:"pickup_location" json:"pickup_location" validate:"required,ident"`
	Notes          string `form:"notes" json:"notes" validate:"max=500"`
	TermsAgreed    string `form:"terms_agreed" json:"terms_agreed"`
}

// ProductForm is the admin "add product" form.
type ProductForm struct {
	Name  string `form:"name" json:"name" validate:"required,max=80"`
	Price int64  `form:"price" json:"price" validate:"gte=0,lte=1000000000000"`
	Stock int    `form:"stock" json:"stock" validate:"gte=0,lte=1000000000"`
	Image string `form:"image" json:"image" validate:"max=255"`
	Phone string `form:"phone" json:"phone" validate:"omitempty,phone"`
}

type LocationForm struct {
	ID             string `form:"id" json:"id" validate:"required,ident"`
	Name           string `form:"name" json:"name" validate:"required,max=80"`
	Address        string `form:"address" json:"address" validate:"required,max=200"`
	OperatingHours string `form:"operating_hours" json:"operating_hours" validate:"required,max=40"`
	Phone          string `form:"phone" json:"phone" validate:"required,phone"`
	Description    string `form:"description" json:"description" validate:"max=300"`
}

// LocationPatch carries optional updates; empty fields are left unchanged.
type LocationPatch struct {
	Name           string `form:"name" json:"name" validate:"max=80"`
	Address        string `form:"address" json:"address" validate:"max=200"`
	OperatingHours string `form:"operating_hours" json:"operating_hours" validate:"max=40"`
	Phone          string `form:"phone" json:"phone" validate:"omitempty,phone"`
	Description    string `form:"description" json:"description" validate:"max=300"`
}

var structs = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// report fields by their form names
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, ok := Phone(fl.Field().String())
		return ok
	})
	val.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		_, ok := ID(fl.Field().String())
		return ok
	})
	return val
}

// Struct trims string fields in place and validates s, returning one
// ValidationError per failing field.
func Struct(s any) []*domain.ValidationError {
	trimStrings(s)
	err := structs.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*domain.ValidationError{domain.Invalid("form", err.Error())}
	}
	out := make([]*domain.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.Invalid(fe.Field(), reason(fe)))
	}
	return out
}

// First is Struct reduced to the first failure, or nil.
func First(s any) error {
	if errs := Struct(s); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must not be negative"
	case "lte":
		return "must be at most " + fe.Param()
	case "phone":
		return "must be a valid phone number"
	case "ident":
		return "must contain only letters, digits, '-' or '_'"
	}
	return "is invalid"
}

func trimStrings(s any) {
	rv := reflect.ValueOf(s)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
