// Package files locates data files on disk.
//
// A configured data source may be a single workbook or a directory of daily
// exports. Discovery.ResolveSource picks the newest loadable file of a
// directory, so a reload after a new export lands serves the fresh data.
//
//	d := files.NewDiscovery("")
//	path, err := d.ResolveSource("data/highs", "52week_high_*.xlsx")
package files
