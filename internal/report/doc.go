// Package report renders the inspection outcome for people: an XLSX workbook
// with Summary, Findings, Ignored and Deductions sheets, and a plain-text
// summary. Both state whether the settlement is precise, approximate or
// pending.
package report
