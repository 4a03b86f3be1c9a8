package handler_test

import "fmt"

func pathf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
