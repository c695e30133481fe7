// Package shared holds helpers used by more than one package. Its testutil
// subpackage provides the sample 52-week-high workbook and a slog capture
// for asserting on log output.
package shared
