package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

type mockScreener struct {
	mock.Mock
}

func (m *mockScreener) Schema(ctx context.Context) (api.SchemaResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.SchemaResponse), args.Error(1)
}

func (m *mockScreener) Range(ctx context.Context, name string) (domain.ColumnRange, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.ColumnRange), args.Error(1)
}

func (m *mockScreener) Screen(ctx context.Context, params domain.ScreenParams) (domain.ScreenResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.ScreenResult), args.Error(1)
}

func (m *mockScreener) Export(ctx context.Context, params domain.ScreenParams, format string, w io.Writer) (domain.ScreenResult, error) {
	args := m.Called(ctx, params, format, w)
	if fn, ok := args.Get(2).(func(io.Writer)); ok && fn != nil {
		fn(w)
	}
	return args.Get(0).(domain.ScreenResult), args.Error(1)
}

func (m *mockScreener) Reload(ctx context.Context) (api.ReloadResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.ReloadResponse), args.Error(1)
}

func (m *mockScreener) Defaults() domain.ScreenParams {
	return domain.DefaultScreenParams()
}
