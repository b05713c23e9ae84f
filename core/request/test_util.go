package request

import (
	"time"

	"github.com/ahmedtelkodsh/geniussmart/core"
)

// NewServiceMock returns a Service reading the time from nowFunc.
func NewServiceMock(repo Repository, mailSvc core.EmailService, nowFunc func() time.Time) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		nowFunc: nowFunc,
	}
}
