package staff

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// errors
	ErrNotFound       = errors.New("staff member not found")
	ErrEmailExists    = errors.New("a staff member with this email already exists")
	ErrUsernameExists = errors.New("a staff member with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excluded ...Staff) error
		CreateStaff(stf Staff) (Staff, error)
		QueryAllStaff() ([]Staff, error)
		GetStaffByID(id string) (Staff, error)
		GetStaffByUsername(username string) (Staff, error)
		GetStaffByEmail(email string) (Staff, error)
		GetStaffByUsernameOrEmail(username string) (Staff, error)
		// FilterStaff applies AND operation on available QueryFilter fields.
		FilterStaff(filter QueryFilter) ([]Staff, error)
		UpdateStaff(stf Staff, isActive *bool) (Staff, error)
		DeleteStaffByID(ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CheckUniqueness(uname, email string, excluded ...Staff) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, excluded...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ns NewStaff) (Staff, error) {
	now := time.Now().UTC()
	stf := Staff{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Username:  ns.Username,
		Email:     ns.Email,
		IsActive:  true,
		Roles:     ns.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := stf.SetPassword(ns.Password); err != nil {
		return Staff{}, err
	}
	return svc.repo.CreateStaff(stf)
}

func (svc *Service) QueryAll() ([]Staff, error) {
	return svc.repo.QueryAllStaff()
}

func (svc *Service) GetByID(id string) (Staff, error) {
	return svc.repo.GetStaffByID(id)
}

func (svc *Service) GetByUsername(uname string) (Staff, error) {
	return svc.repo.GetStaffByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(email string) (Staff, error) {
	return svc.repo.GetStaffByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(uname string) (Staff, error) {
	return svc.repo.GetStaffByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *Service) Filter(filter QueryFilter) ([]Staff, error) {
	return svc.repo.FilterStaff(filter)
}

func (svc *Service) Update(id string, us UpdateStaff) (Staff, error) {
	stf := Staff{
		ID:        id,
		Name:      us.Name,
		Username:  us.Username,
		Email:     us.Email,
		Roles:     us.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if us.Password != "" {
		if err := stf.SetPassword(us.Password); err != nil {
			return Staff{}, err
		}
	}
	return svc.repo.UpdateStaff(stf, us.IsActive)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteStaffByID(ids...)
}

func (svc *Service) SetLastLogin(stf Staff) (Staff, error) {
	stf.LastLogin = time.Now().UTC()
	return svc.repo.UpdateStaff(stf, nil)
}

// RequestPasswordReset emails a reset link to the account's address.
func (svc *Service) RequestPasswordReset(email string) error {
	stf, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	return svc.sendPasswordResetMail(stf)
}

func (svc *Service) sendPasswordResetMail(stf Staff) error {
	token, err := MakeToken(stf)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: stf.Name, Address: stf.Email}},
		Subject: "Password Reset",
		BodyStr: fmt.Sprintf(
			"Follow this link to reset your password: %s/password-reset/%s/%s",
			svc.conf.FrontendBaseURL, EncodeUID(stf), token,
		),
	})
	return nil
}

// ConfirmPasswordReset verifies the reset token and sets the new password.
func (svc *Service) ConfirmPasswordReset(rp ResetPassword) (Staff, error) {
	id, err := DecodeUID(rp.UID)
	if err != nil {
		return Staff{}, core.NewValidationError(err, core.FieldError{Field: "uid", Error: "invalid uid"})
	}
	stf, err := svc.GetByID(id)
	if err != nil {
		return Staff{}, err
	}
	if err = VerifyToken(stf, rp.Token); err != nil {
		return Staff{}, core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err = stf.SetPassword(rp.Password); err != nil {
		return Staff{}, err
	}
	stf.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStaff(stf, nil)
}
