package notifygateway

import "errors"

var (
	// ErrSendFailed возвращается при неуспешной попытке доставки
	ErrSendFailed = errors.New("notifygateway: send failed")

	// ErrInternal возвращается при внутренней ошибке клиента
	ErrInternal = errors.New("notifygateway: internal error")
)
