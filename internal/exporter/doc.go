// Package exporter writes the explorer's output files.
//
// ArtifactWriter saves rendered charts under their fixed filenames in the
// output directory. ReportWriter produces the optional summary workbook,
// Markdown report and CSV tables. WritePapers streams filtered papers as CSV
// for the dashboard's export endpoint.
//
// Example usage:
//
//	artifacts := exporter.NewArtifactWriter("outputs", logger)
//	path, err := artifacts.WriteChart(charts.NameYears, png)
//
//	reports := exporter.NewReportWriter("outputs", logger)
//	files, err := reports.WriteAll(report)
package exporter
