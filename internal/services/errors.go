package services

import "errors"

var ErrInvalidSourceURL = errors.New("invalid source url")
