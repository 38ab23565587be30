package models

import (
	"errors"
	"strings"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r CreateCustomerRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if !validEmail(email) {
		errs = append(errs, "email must be a valid address")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type CustomerResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func validEmail(email string) bool {
	if strings.Count(email, "@") != 1 || strings.ContainsAny(email, " \t") {
		return false
	}
	local, domain, _ := strings.Cut(email, "@")
	return local != "" && domain != ""
}
