package validations

import (
	"context"

	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateInboundEnvelope(ctx context.Context, request domainMessage.InboundEnvelope) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.From, validation.Required),
		validation.Field(&request.To, validation.Required),
		validation.Field(&request.Source, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
