package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Ошибки доменного ядра. Сервисы оборачивают их через %w, вызывающий код
// сравнивает через errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidTemporalRange = errors.New("invalid temporal range")
	ErrInactive             = errors.New("flight search is inactive")
	ErrReferentialViolation = errors.New("referential violation")
	ErrUniquenessViolation  = errors.New("uniqueness violation")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// storeError переводит ошибки GORM/драйвера в доменные.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), hasConstraintText(err, "unique constraint", "duplicate key"):
		return fmt.Errorf("%s: %w: %v", op, ErrUniquenessViolation, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), hasConstraintText(err, "foreign key"):
		return fmt.Errorf("%s: %w: %v", op, ErrReferentialViolation, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// hasConstraintText: запасной путь для драйверов, которые не переводят ошибки.
func hasConstraintText(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

// datesError: любая ошибка дат поездки, включая отсутствующий вылет
// (нулевое время раньше now), это ErrInvalidTemporalRange.
func datesError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidTemporalRange, err)
}

func fieldError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func invalidArgument(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidArgument, fmt.Sprintf(format, args...))
}
