// Package exporter writes screened tables to CSV and XLSX.
//
// CSVWriter produces UTF-8 CSV with a BOM so Excel keeps Korean headers
// intact. XLSXWriter streams a workbook through excelize, writing numeric
// columns as numbers under a bold, frozen header row. ExportFile picks the
// writer from the file extension.
//
// Example usage:
//
//	res := dataprocessing.Screen(table, bindings, params)
//	if err := exporter.ExportFile("exports/filtered.xlsx", res.Table); err != nil {
//	    return err
//	}
package exporter
