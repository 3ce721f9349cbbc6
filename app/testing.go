package app

import (
	"context"
	"errors"
)

//
// This file contains helpers to test code calling use cases,
// without setting up the real dependencies of a use case.
//

var ErrUseCaseFailed = errors.New("usecase failed")

// TestRequestHandler turns fn into a Request, e.g. to assert on the context a decorator passes on.
func TestRequestHandler[Req any, Res any](fn func(ctx context.Context, req Req) (Res, error)) Request[Req, Res] {
	return handlerFunc[Req, Res](fn)
}

func TestCommandHandler[C any](fn func(ctx context.Context, cmd C) error) Command[C] {
	return commandFunc[C](fn)
}

func TestQueryHandler[Q any, Res any](fn func(ctx context.Context, query Q) (Res, error)) Query[Q, Res] {
	return handlerFunc[Q, Res](fn)
}

func TestSuccessRequestHandler[Req any, Res any]() Request[Req, Res] {
	return TestRequestHandler(func(context.Context, Req) (Res, error) { return *new(Res), nil })
}

func TestFailureRequestHandler[Req any, Res any]() Request[Req, Res] {
	return TestRequestHandler(func(context.Context, Req) (Res, error) { return *new(Res), ErrUseCaseFailed })
}

func TestSuccessCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(context.Context, C) error { return nil })
}

func TestFailureCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(context.Context, C) error { return ErrUseCaseFailed })
}

func TestSuccessQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestQueryHandler(func(context.Context, Q) (Res, error) { return *new(Res), nil })
}

func TestFailureQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestQueryHandler(func(context.Context, Q) (Res, error) { return *new(Res), ErrUseCaseFailed })
}
