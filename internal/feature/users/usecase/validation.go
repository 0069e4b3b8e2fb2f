package usecase

import (
	"fmt"
	"strings"

	"user_service/internal/feature/users/domain"
	"user_service/internal/feature/users/domain/entity"
)

// validateID はストアが採番し得ない ID を拒否します。
func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id must be a positive number", domain.ErrValidation)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be blank", domain.ErrValidation)
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email must not be blank", domain.ErrValidation)
	}
	return nil
}

func validateAge(age *int) error {
	if age == nil {
		return fmt.Errorf("%w: age is required", domain.ErrValidation)
	}
	if *age < entity.MinAge || *age > entity.MaxAge {
		return fmt.Errorf("%w: age must be between %d and %d", domain.ErrValidation, entity.MinAge, entity.MaxAge)
	}
	return nil
}

// validateCreate は nil、名前、メールアドレス、年齢の順に検証し、最初の違反で止まります。
func validateCreate(in *CreateUserInput) error {
	if in == nil {
		return fmt.Errorf("%w: user must not be nil", domain.ErrValidation)
	}
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	return validateAge(in.Age)
}

// supplied は s が空白以外の値を持つ場合、前後の空白を除いた値と true を返します。
// nil と空白のみはどちらも「変更しない」を意味します。
func supplied(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}
