package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jafarshop/storefront/internal/domain"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	postalPattern = regexp.MustCompile(`^\d{6}$`)
)

// messages maps json field -> failing tag -> user-facing text
var messages = map[string]map[string]string{
	"name": {
		"notblank": "Name is required",
	},
	"email": {
		"notblank":     "Email is required",
		"contactemail": "Invalid email format",
	},
	"phone": {
		"notblank": "Phone number is required",
		"phone10":  "Phone number must be 10 digits",
	},
	"addressLine1": {
		"notblank": "Address is required",
	},
	"city": {
		"notblank": "City is required",
	},
	"postalCode": {
		"notblank": "Postal code is required",
		"postal6":  "Postal code must be 6 digits",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone10", func(fl validator.FieldLevel) bool {
		return len(digitsOnly(fl.Field().String())) == 10
	})
	mustRegister(v, "postal6", func(fl validator.FieldLevel) bool {
		return postalPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// FieldErrors maps a json field name to its message. Empty means valid.
type FieldErrors map[string]string

// Validate runs every rule against form and returns one message per failing
// field. A non-nil error means the rules could not run at all.
func Validate(form domain.CheckoutForm) (FieldErrors, error) {
	return fieldErrors(validate.Struct(form))
}

func fieldErrors(err error) (FieldErrors, error) {
	errs := FieldErrors{}
	if err == nil {
		return errs, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to validate checkout form: %w", err)
	}
	for _, fe := range fieldErrs {
		msg, found := messages[fe.Field()][fe.Tag()]
		if !found {
			msg = "is invalid"
		}
		errs[fe.Field()] = msg
	}
	return errs, nil
}

// Canonicalize renders the validated form into the two strings the backend
// stores. A blank second address line is omitted.
func Canonicalize(form domain.CheckoutForm) (shippingAddress, contactInfo string) {
	address := []string{form.AddressLine1}
	if strings.TrimSpace(form.AddressLine2) != "" {
		address = append(address, form.AddressLine2)
	}
	address = append(address, form.City, form.PostalCode)

	shippingAddress = strings.Join(address, ", ")
	contactInfo = strings.Join([]string{form.Name, form.Email, form.Phone}, ", ")
	return shippingAddress, contactInfo
}

// FormFromProfile pre-fills contact fields from a saved profile
func FormFromProfile(profile domain.Option[domain.UserProfile]) domain.CheckoutForm {
	return domain.Match(profile,
		func(p domain.UserProfile) domain.CheckoutForm {
			return domain.CheckoutForm{Name: p.Name, Email: p.Email, Phone: p.Phone}
		},
		func() domain.CheckoutForm {
			return domain.CheckoutForm{}
		},
	)
}
