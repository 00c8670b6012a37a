package dto

import (
	"bytes"
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
)

const (
	maxEmailLen    = 255
	maxFullNameLen = 255
	maxPasswordLen = 72 // bcrypt ignores the rest
)

// strongPassword rejects passwords below minEntropy bits. A nil pointer
// passes so that optional fields can reuse the rule.
func strongPassword(minEntropy float64) validation.RuleFunc {
	return func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return errors.New("must be a string")
		}
		if len(s) > maxPasswordLen {
			return errors.New("is too long")
		}
		return passwordvalidator.Validate(s, minEntropy) //nolint: wrapcheck // message goes to the client
	}
}

type UserCreate struct {
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	IsSuperuser bool    `json:"is_superuser"`
}

func (r *UserCreate) Validate(minEntropy float64) error {
	return validation.ValidateStruct(r, //nolint: wrapcheck // validation.Errors is rendered as is
		validation.Field(&r.Email, validation.Required, validation.Length(0, maxEmailLen), is.Email),
		validation.Field(&r.Password, validation.Required, validation.By(strongPassword(minEntropy))),
		validation.Field(&r.FullName, validation.Length(0, maxFullNameLen)),
	)
}

// ToUser builds the row to insert; the caller supplies the hash.
func (r *UserCreate) ToUser(hashedPassword string) *user.User {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	return &user.User{
		Email:          r.Email,
		HashedPassword: hashedPassword,
		FullName:       r.FullName,
		IsActive:       isActive,
		IsSuperuser:    r.IsSuperuser,
	}
}

// UserOpen is the body of the self-registration endpoint. It is validated
// as the UserCreate it converts to.
type UserOpen struct {
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
}

func (r *UserOpen) ToCreate() *UserCreate {
	return &UserCreate{
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
	}
}

type UserUpdate struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`

	clearFullName bool
}

// explicitNull reports whether the JSON object in data has key set to null.
func explicitNull(data []byte, key string) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, err //nolint: wrapcheck // decoder error
	}
	raw, ok := fields[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")), nil
}

// UnmarshalJSON tells an absent full_name from an explicit null, which
// clears the name.
func (r *UserUpdate) UnmarshalJSON(data []byte) error {
	type plain UserUpdate
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err //nolint: wrapcheck // decoder error
	}
	var err error
	r.clearFullName, err = explicitNull(data, "full_name")
	return err
}

func (r *UserUpdate) Validate(minEntropy float64) error {
	return validation.ValidateStruct(r, //nolint: wrapcheck // validation.Errors is rendered as is
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(0, maxEmailLen), is.Email),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.By(strongPassword(minEntropy))),
		validation.Field(&r.FullName, validation.Length(0, maxFullNameLen)),
	)
}

// ToUpdate maps the request onto a storage update; hashedPassword is used
// only when a new password was sent.
func (r *UserUpdate) ToUpdate(hashedPassword string) *user.Update {
	upd := &user.Update{
		Email:         r.Email,
		FullName:      r.FullName,
		IsActive:      r.IsActive,
		IsSuperuser:   r.IsSuperuser,
		ClearFullName: r.clearFullName,
	}
	if r.Password != nil {
		upd.HashedPassword = &hashedPassword
	}
	return upd
}

// UserUpdateMe is what a user may change about themselves.
type UserUpdateMe struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`

	clearFullName bool
}

func (r *UserUpdateMe) UnmarshalJSON(data []byte) error {
	type plain UserUpdateMe
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err //nolint: wrapcheck // decoder error
	}
	var err error
	r.clearFullName, err = explicitNull(data, "full_name")
	return err
}

func (r *UserUpdateMe) ToUserUpdate() *UserUpdate {
	return &UserUpdate{
		Email:         r.Email,
		Password:      r.Password,
		FullName:      r.FullName,
		clearFullName: r.clearFullName,
	}
}

type ResetPassword struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *ResetPassword) Validate(minEntropy float64) error {
	return validation.ValidateStruct(r, //nolint: wrapcheck // validation.Errors is rendered as is
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.By(strongPassword(minEntropy))),
	)
}

// LoginForm is the OAuth2 password grant form.
type LoginForm struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Scopes   []string `json:"scope"`
}

func (f *LoginForm) Validate() error {
	return validation.ValidateStruct(f, //nolint: wrapcheck // validation.Errors is rendered as is
		validation.Field(&f.Username, validation.Required),
		validation.Field(&f.Password, validation.Required),
	)
}

// GrantedScopes drops scopes a client may not request for itself.
func (f *LoginForm) GrantedScopes() []string {
	scopes := make([]string, 0, len(f.Scopes))
	for _, s := range f.Scopes {
		if s == model.ScopeResetPassword {
			continue
		}
		scopes = append(scopes, s)
	}
	return scopes
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewBearerToken(token string) Token {
	return Token{
		AccessToken: token,
		TokenType:   model.TokenTypeBearer,
	}
}

type Msg struct {
	Msg string `json:"msg"`
}

// ErrorResponse.Detail is either a message or a field-to-error map.
type ErrorResponse struct {
	Detail any `json:"detail"`
}
