package error

import "net/http"

type NotifierError string

func (err NotifierError) Error() string {
	return string(err)
}

func (err NotifierError) ErrCode() string {
	return "NOTIFIER_ERROR"
}

func (err NotifierError) StatusCode() int {
	return http.StatusBadGateway
}
