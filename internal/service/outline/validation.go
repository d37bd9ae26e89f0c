package outline

import (
	"fmt"

	"seriatim/internal/config"
	"seriatim/internal/domain"
	outlineSvc "seriatim/internal/domain/services/outline"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func validateRenameRequest(req *outlineSvc.RenameDocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxDocumentNameLength),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateEditTextRequest(req *outlineSvc.EditTextRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Items,
			validation.Required,
			validation.Length(1, config.MaxEditTextItems),
			validation.Each(validation.RuneLength(0, config.MaxItemTextLength)),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateCategoryRequest(req *outlineSvc.CategoryRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
