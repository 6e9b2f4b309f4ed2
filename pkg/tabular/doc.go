// Package tabular moves field values between records and delimited text: Parse and Plan
// read pasted spreadsheet rows, Execute feeds the cells to records, Extract renders
// records back to a table.
package tabular
