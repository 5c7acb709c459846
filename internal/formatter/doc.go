// Package formatter renders trips and weather for terminals and files.
//
// Exporters ([ExportToCSV], [ExportToMarkdown], [ExportToText], [ExportToJSON], [ExportToXLSX]) turn a
// trip collection into bytes; [WriteExport] picks one by format name and writes it to disk.
//
// Display helpers format weather cards, daily forecast tables and the destinations-per-trip bar chart.
// [TripWriter] prints the trip collection whenever the synchronizer renders it.
package formatter
