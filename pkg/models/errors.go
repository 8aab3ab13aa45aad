package models

import "fmt"

/*
Returned when an optional backend was left unconfigured. Callers show a
message instead of failing hard.
*/
var (
	ErrStorageNotConfigured = fmt.Errorf("object storage is not configured")
	ErrEmailNotConfigured   = fmt.Errorf("email delivery is not configured")
)
