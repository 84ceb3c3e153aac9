package validator // import "github.com/Xunop/e-library/internal/validator"

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

func ValidateBookCreate(opts *config.Options, book *model.BookCreate) error {
	if book == nil {
		return errors.WithMessage(model.ErrInvalidInput, "book is nil")
	}
	if book.Filename == "" {
		return errors.WithMessage(model.ErrInvalidInput, "no file selected")
	}
	if ext := util.FileExt(book.Filename); !opts.IsSupportedType(ext) {
		return errors.WithMessagef(model.ErrInvalidFileType, "only %s are allowed, got %q",
			strings.ToUpper(strings.Join(opts.SupportedTypes, ", ")), ext)
	}
	if strings.TrimSpace(book.Title) == "" || strings.TrimSpace(book.Author) == "" {
		return errors.WithMessage(model.ErrInvalidInput, "title and author are required")
	}
	return validateField(book.Field)
}

func ValidateBookPatch(patch *model.BookPatch) error {
	if patch == nil {
		return errors.WithMessage(model.ErrInvalidInput, "patch is nil")
	}
	if v := patch.Title; v != nil && strings.TrimSpace(*v) == "" {
		return errors.WithMessage(model.ErrInvalidInput, "title cannot be empty")
	}
	if v := patch.Author; v != nil && strings.TrimSpace(*v) == "" {
		return errors.WithMessage(model.ErrInvalidInput, "author cannot be empty")
	}
	if v := patch.Field; v != nil {
		if strings.TrimSpace(*v) == "" {
			return errors.WithMessage(model.ErrInvalidInput, "field cannot be empty")
		}
		return validateField(*v)
	}
	return nil
}

// validateField rejects fields that can't be used as a single directory name.
func validateField(field string) error {
	field = strings.TrimSpace(field)
	if strings.ContainsAny(field, `/\`) || field == "." || field == ".." {
		return errors.WithMessagef(model.ErrInvalidInput, "field %q is not a valid directory name", field)
	}
	return nil
}
