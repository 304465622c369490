package redis

import "errors"

var errAlreadyActive = errors.New("transaction already active")
