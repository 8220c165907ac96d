package models

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

// Employee is the profile of a staff member who signs in. Its document id is
// the account uid.
type Employee struct {
	Base
	UID        string     `json:"uid"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Dob        string     `json:"dob"`
	Permission Permission `json:"permission"`
	CreatedBy  string     `json:"createdBy"`
}

type NewEmployee struct {
	Name       string
	Email      string
	Dob        string
	Password   string
	Permission Permission
}

// ProfileWriteError reports an account that was created without its profile.
// The account is kept; the admin can retry the profile write for UID.
type ProfileWriteError struct {
	UID string
	Err error
}

func (e *ProfileWriteError) Error() string {
	return fmt.Sprintf("account %s created but profile write failed: %v", e.UID, e.Err)
}

func (e *ProfileWriteError) Unwrap() error {
	return e.Err
}

type EmployeeService struct {
	*Repository[Employee]
	accounts *AccountService
}

func NewEmployeeService(store docstore.Store, accounts *AccountService) *EmployeeService {
	return &EmployeeService{
		Repository: NewRepository[Employee](store, EmployeeCollection),
		accounts:   accounts,
	}
}

// CreatedBy scopes the employee list to the admin who created them.
func (s *EmployeeService) CreatedBy(adminUID string) *Repository[Employee] {
	return s.Where("createdBy", adminUID)
}

// CreateEmployee signs the employee up, then writes the profile. There is no
// rollback of the account when the profile write fails.
func (s *EmployeeService) CreateEmployee(ctx context.Context, adminUID string, input NewEmployee) (*Employee, error) {
	if _, ok := ParsePermission(string(input.Permission)); !ok {
		input.Permission = PermissionRead
	}
	account, err := s.accounts.SignUp(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return nil, err
	}
	profile := docstore.Data{
		"uid":        account.ID,
		"name":       input.Name,
		"email":      account.Email,
		"dob":        input.Dob,
		"permission": string(input.Permission),
		"createdBy":  adminUID,
	}
	if err := s.store.Set(ctx, EmployeeCollection, account.ID, profile); err != nil {
		return nil, &ProfileWriteError{UID: account.ID, Err: err}
	}
	return s.Get(ctx, account.ID)
}

// Update edits the profile of an employee created by adminUID. It refuses to
// move the profile to another account or creator.
func (s *EmployeeService) Update(ctx context.Context, adminUID, id string, partial docstore.Data) error {
	data := sanitizeFields[Employee](partial)
	delete(data, "uid")
	delete(data, "createdBy")
	delete(data, "email")
	if p, ok := data["permission"].(string); ok {
		if _, valid := ParsePermission(p); !valid {
			return fmt.Errorf("%w: permission %q", docstore.ErrInvalidArgument, p)
		}
	}
	return s.CreatedBy(adminUID).Update(ctx, id, data)
}

// Remove deletes the profile and the account of an employee created by
// adminUID. Any other id, the admin's own included, is left alone.
func (s *EmployeeService) Remove(ctx context.Context, adminUID, id string) error {
	staff := s.CreatedBy(adminUID)
	if _, err := staff.Get(ctx, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := staff.Remove(ctx, id); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, id)
}

// PermissionOf returns the permission of the employee with uid, read when
// the profile is missing.
func (s *EmployeeService) PermissionOf(ctx context.Context, uid string) (Permission, error) {
	emp, err := s.Get(ctx, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return PermissionRead, nil
	}
	if err != nil {
		return "", err
	}
	if p, ok := ParsePermission(string(emp.Permission)); ok {
		return p, nil
	}
	return PermissionRead, nil
}
