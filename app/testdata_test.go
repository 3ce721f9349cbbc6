package app_test

import (
	"context"
	"errors"
)

var (
	ctx              = context.Background()
	errUseCaseFailed = errors.New("some-error")
)

type (
	request  struct{}
	response struct{ Value string }
)

func successfulRequest(context.Context, request) (response, error) {
	return response{Value: "ok"}, nil
}

func failingRequest(context.Context, request) (response, error) {
	return response{}, errUseCaseFailed
}

func successfulCommand(context.Context, request) error {
	return nil
}

func failingCommand(context.Context, request) error {
	return errUseCaseFailed
}

type structWithValidationTags struct {
	Val0 string `validate:"required"`
	Val1 string `validate:"min=2"`
}

var passingValidationValue = structWithValidationTags{
	Val0: "testValue",
	Val1: "testValue",
}
