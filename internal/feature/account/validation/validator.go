// Package validation holds the input rules of the account feature.
//
// Each exported function validates one input shape and returns nil or a
// *domain.Error of KindValidation whose message names the first violated rule.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"

	"account_backend/internal/feature/account/domain"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
	// MaxPasswordLength is the maximum accepted password length.
	MaxPasswordLength = 30
	// MinNameLength is the minimum accepted name length.
	MinNameLength = 3
	// MaxNameLength is the maximum accepted name length.
	MaxNameLength = 30
)

// LoginInput is the shape checked by ValidateLoginInput.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=30,alphanum"`
}

// RegisterInput is the shape checked by ValidateRegisterInput.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=30,alphanum"`
}

// ComparePasswordInput is the shape checked by ValidateComparePassword.
type ComparePasswordInput struct {
	Password       string `json:"password" validate:"required,min=8,max=30,alphanum"`
	HashedPassword string `json:"hashedPassword" validate:"required"`
}

// fieldMessages maps a json field name to the message reported when any of its rules fail.
var fieldMessages = map[string]string{
	"name":           domain.MsgInvalidName,
	"email":          domain.MsgInvalidEmail,
	"password":       domain.MsgInvalidPassword,
	"hashedPassword": domain.MsgHashedPasswordNeeded,
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateLoginInput checks email format and the password policy.
func ValidateLoginInput(in LoginInput) error {
	return check(in)
}

// ValidateRegisterInput checks name length, email format and the password policy.
func ValidateRegisterInput(in RegisterInput) error {
	return check(in)
}

// ValidateComparePassword checks the candidate password and that a stored hash is present.
func ValidateComparePassword(in ComparePasswordInput) error {
	return check(in)
}

// ValidateUserID checks that id is a 24-character hex ObjectID.
func ValidateUserID(id string) error {
	if !IsObjectID(id) {
		return &domain.Error{
			Kind:    domain.KindValidation,
			Message: domain.MsgUserIDRequired,
			Fields:  map[string]string{"userId": "objectid"},
		}
	}
	return nil
}

// IsObjectID reports whether id parses as an ObjectID hex string.
func IsObjectID(id string) bool {
	if id == "" {
		return false
	}
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

func check(in interface{}) error {
	err := engine().Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Wrap(domain.KindValidation, err.Error(), err)
	}

	// ValidationErrors preserves struct field order, so the first entry is the first violated rule.
	out := &domain.Error{
		Kind:    domain.KindValidation,
		Message: messageFor(verrs[0].Field()),
		Fields:  make(map[string]string, len(verrs)),
	}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}

func messageFor(field string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return "Invalid " + field
}
