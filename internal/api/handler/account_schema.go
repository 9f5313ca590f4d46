package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/myapp/account-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username string      `json:"username" validate:"required"`
	Email    string      `json:"email"    validate:"required"`
	Password string      `json:"password" validate:"required"`
	PhoneNo  phoneNumber `json:"phoneNo"  validate:"required" swaggertype:"string"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateUserRequest has no validation: missing fields are written as empty.
type updateUserRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	PhoneNo  phoneNumber `json:"phoneNo" swaggertype:"string"`
}

type userListResponse struct {
	Users []domain.UserSummary `json:"users"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// phoneNumber is stored as text but clients may send it as a JSON number.
type phoneNumber string

func (p *phoneNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = phoneNumber(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("phoneNo must be a string or a number: %w", err)
	}
	*p = phoneNumber(n.String())
	return nil
}
