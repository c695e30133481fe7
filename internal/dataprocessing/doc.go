// Package dataprocessing turns a 52-week-high workbook into a screened table.
//
// # Architecture
//
// The package is organized into four parts:
//
// 1. Loader: reads an XLSX sheet or CSV file into a domain.Table of raw cells
// 2. Resolver: binds logical fields (price, EPS, PER...) to whichever header
// alias the file uses
// 3. Filters: category and inclusive range specs folded over the table
// 4. Pipeline: the fixed screen order, growth derivation and step reports
//
// # Usage
//
//	table, err := dataprocessing.LoadFile("52주 신고가.xlsx", dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	bindings := dataprocessing.ResolveTable(table)
//	result := dataprocessing.Screen(table, bindings, domain.DefaultScreenParams())
//	fmt.Println(result.OriginalRows, result.FilteredRows)
//
// # Data Flow
//
//	File → Loader → Table → Resolver → Bindings → Screen → ScreenResult
//
// # Missing Values
//
// Cells are stored as raw strings. Every numeric operation coerces on read and
// treats a value that does not parse as missing. Range filters drop missing
// values, category filters never match them, and growth columns propagate
// them.
package dataprocessing
