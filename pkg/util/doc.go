// Package util provides shared helpers for resource-name validation and
// log-body truncation.
//
// SafeFilePath and SafeFilePathAllowAbsolute reject names that climb out of a
// classpath or document root. TruncateBody caps envelopes before they are logged.
package util
