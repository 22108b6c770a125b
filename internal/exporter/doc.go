// Package exporter serializes the derived datasets and reporting artifacts.
//
// Three output families exist:
//
// CSVWriter and DatasetExporter write the derived CSV files under the
// datastore's derived directory. Every dataset carries a fixed column order
// and a UTF-8 BOM so spreadsheet tools pick up the encoding.
//
// LaTeXWriter renders summary tables as tabular fragments meant to be
// \input into a paper.
//
// PlotWriter and WorkbookWriter render SVG figures and the Excel summary
// workbook.
package exporter
