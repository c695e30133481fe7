package http

import (
	"context"
	"io"

	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// ScreenerService is what the screen and dashboard handlers need from the
// service layer.
type ScreenerService interface {
	Schema(ctx context.Context) (api.SchemaResponse, error)
	Range(ctx context.Context, name string) (domain.ColumnRange, error)
	Screen(ctx context.Context, params domain.ScreenParams) (domain.ScreenResult, error)
	Export(ctx context.Context, params domain.ScreenParams, format string, w io.Writer) (domain.ScreenResult, error)
	Reload(ctx context.Context) (api.ReloadResponse, error)
	Defaults() domain.ScreenParams
}
