package app

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/go-arrower/todo/ctx"
)

const CtxValidated ctx.CTXKey = "todo.validated"

// PassedValidation reports whether the input of a use case passed the validation decorator.
// Use it to safeguard business logic against a wrong setup of dependencies.
func PassedValidation(ctx context.Context) bool {
	if v, ok := ctx.Value(CtxValidated).(bool); ok {
		return v
	}

	return false
}

// NewValidatedRequest validates req with the struct tags of Req.
// If validate is nil, a default validator is used.
func NewValidatedRequest[Req any, Res any](validate *validator.Validate, req Request[Req, Res]) Request[Req, Res] {
	return validated[Req, Res](validate, req.H)
}

func NewValidatedCommand[C any](validate *validator.Validate, cmd Command[C]) Command[C] {
	return toCommand(validated[C, struct{}](validate, fromCommand(cmd)))
}

func NewValidatedQuery[Q any, Res any](validate *validator.Validate, query Query[Q, Res]) Query[Q, Res] {
	return validated[Q, Res](validate, query.H)
}

func validated[In any, Out any](validate *validator.Validate, next handlerFunc[In, Out]) handlerFunc[In, Out] {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	return func(ctx context.Context, in In) (Out, error) {
		if err := validate.StructCtx(ctx, in); err != nil {
			return *new(Out), err //nolint:wrapcheck // validation error is returned on purpose
		}

		return next(context.WithValue(ctx, CtxValidated, true), in)
	}
}
