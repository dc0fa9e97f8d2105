package errors

import "errors"

// Dumped is a flattened view of an error chain used for structured logging.
type Dumped struct {
	TopMessage string
	Code       string
	Chain      []string
}

// Dump walks the error chain and collects every message for log output.
func Dump(err error) Dumped {
	if err == nil {
		return Dumped{}
	}

	dump := Dumped{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		dump.Code = string(typed.Code())
	}

	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		dump.Chain = append(dump.Chain, cur.Error())
	}
	return dump
}
